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
// Per-MSL messages — /v1/msls/{mslId}/products/{productId}/messages
// ============================================================

// resolveProduct looks the product up in the shared configuration so
// message endpoints can 404 on unknown products and hand the product
// defaults to the message service.
func resolveProduct(w http.ResponseWriter, r *http.Request, cfgSvc *service.ConfigService) (mslID string, product *domain.Product, ok bool) {
	mslID = chi.URLParam(r, "mslId")
	productID := chi.URLParam(r, "productId")
	if mslID == "" || productID == "" {
		writeError(w, http.StatusBadRequest, "mslId and productId are required")
		return "", nil, false
	}

	cfg := cfgSvc.Get(r.Context())
	product = cfg.ProductByID(productID)
	if product == nil {
		writeError(w, http.StatusNotFound, "product not found: "+productID)
		return "", nil, false
	}
	return mslID, product, true
}

func getMessagesHandler(msgSvc *service.MessageService, cfgSvc *service.ConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/msls/{mslId}/products/{productId}/messages")
		defer span.End()

		mslID, product, ok := resolveProduct(w, r.WithContext(ctx), cfgSvc)
		if !ok {
			return
		}
		span.SetAttributes(
			attribute.String("msl.id", mslID),
			attribute.String("product.id", product.ID),
		)

		messages := msgSvc.GetEffective(ctx, mslID, product.ID, product.Messages)
		writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
	}
}

func setMessagesHandler(msgSvc *service.MessageService, cfgSvc *service.ConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/msls/{mslId}/products/{productId}/messages")
		defer span.End()

		mslID, product, ok := resolveProduct(w, r.WithContext(ctx), cfgSvc)
		if !ok {
			return
		}

		var req struct {
			Messages []string `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := msgSvc.Set(ctx, mslID, product.ID, req.Messages); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"messages": req.Messages})
	}
}

func appendMessageHandler(msgSvc *service.MessageService, cfgSvc *service.ConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/msls/{mslId}/products/{productId}/messages")
		defer span.End()

		mslID, product, ok := resolveProduct(w, r.WithContext(ctx), cfgSvc)
		if !ok {
			return
		}

		var req struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		messages, err := msgSvc.Append(ctx, mslID, product.ID, req.Message, product.Messages)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{"messages": messages})
	}
}
