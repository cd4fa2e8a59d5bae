package handler

import (
	"encoding/json"
	"net/http"

	"github.com/denkfield/msl-calllog-go/internal/domain"
	"github.com/denkfield/msl-calllog-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Calls — /v1/calls, /v1/msls/{mslId}/calls
// ============================================================

func logCallHandler(callSvc *service.CallService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/calls")
		defer span.End()

		var call domain.Call
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		// Callers log calls in their own name regardless of the payload.
		call.MSLID = MSLIDFromContext(ctx)
		span.SetAttributes(attribute.String("msl.id", call.MSLID))

		if err := callSvc.LogCall(ctx, &call); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, call)
	}
}

func listAllCallsHandler(callSvc *service.CallService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/calls")
		defer span.End()

		calls, err := callSvc.ListAll(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"calls": calls})
	}
}

func listMSLCallsHandler(callSvc *service.CallService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/msls/{mslId}/calls")
		defer span.End()

		mslID := chi.URLParam(r, "mslId")
		if mslID == "" {
			writeError(w, http.StatusBadRequest, "mslId is required")
			return
		}
		if !canAccessMSL(ctx, mslID) {
			writeError(w, http.StatusForbidden, "cannot read another representative's calls")
			return
		}
		span.SetAttributes(attribute.String("msl.id", mslID))

		calls, err := callSvc.ListByMSL(ctx, mslID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"calls": calls})
	}
}

// callHistoryHandler answers "was this exact message already delivered
// to this contact for this product by this MSL".
func callHistoryHandler(callSvc *service.CallService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/calls/history")
		defer span.End()

		q := r.URL.Query()
		medRep := q.Get("med_rep")
		productID := q.Get("product_id")
		message := q.Get("message")
		if medRep == "" || productID == "" || message == "" {
			writeError(w, http.StatusBadRequest, "med_rep, product_id and message are required")
			return
		}

		mslID := q.Get("msl_id")
		if mslID == "" {
			mslID = MSLIDFromContext(ctx)
		}
		if !canAccessMSL(ctx, mslID) {
			writeError(w, http.StatusForbidden, "cannot read another representative's history")
			return
		}

		used := callSvc.WasMessageUsed(ctx, medRep, productID, message, mslID)
		writeJSON(w, http.StatusOK, map[string]any{"used": used})
	}
}
