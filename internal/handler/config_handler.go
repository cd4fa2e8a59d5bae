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
// Shared configuration — /v1/config
// ============================================================

func getConfigHandler(cfgSvc *service.ConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/config")
		defer span.End()

		writeJSON(w, http.StatusOK, cfgSvc.Get(ctx))
	}
}

// refreshConfigHandler drops the cached document and repopulates it off
// the request path. The reload initializes the document when absent, so
// this is also the recovery path after a config-missing conflict.
func refreshConfigHandler(cfgSvc *service.ConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /v1/config/refresh")
		defer span.End()

		cfgSvc.RefreshInBackground()
		writeJSON(w, http.StatusAccepted, domain.SuccessResponse{Message: "refresh started"})
	}
}

// ============================================================
// Contacts — /v1/config/contacts
// ============================================================

func addContactHandler(cfgSvc *service.ConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/config/contacts")
		defer span.End()

		var req struct {
			Name string `json:"name"`
			Zone string `json:"zone"`
			Line string `json:"line"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		medReps, err := cfgSvc.AddOrUpdateContact(ctx, req.Name, req.Zone, req.Line)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"medReps": medReps})
	}
}

func removeContactHandler(cfgSvc *service.ConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/config/contacts/{name}")
		defer span.End()

		name := chi.URLParam(r, "name")
		if name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		span.SetAttributes(attribute.String("medrep.name", name))

		medReps, err := cfgSvc.RemoveContact(ctx, name)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"medReps": medReps})
	}
}

// ============================================================
// Products — /v1/config/products
// ============================================================

func createProductHandler(cfgSvc *service.ConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/config/products")
		defer span.End()

		var req struct {
			Name     string   `json:"name"`
			Messages []string `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		product, err := cfgSvc.CreateProduct(ctx, req.Name, req.Messages)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, product)
	}
}

func deleteProductHandler(cfgSvc *service.ConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/config/products/{productId}")
		defer span.End()

		productID := chi.URLParam(r, "productId")
		if productID == "" {
			writeError(w, http.StatusBadRequest, "productId is required")
			return
		}
		span.SetAttributes(attribute.String("product.id", productID))

		if err := cfgSvc.DeleteProduct(ctx, productID); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
