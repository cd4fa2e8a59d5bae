package handler

import (
	"net/http"

	"github.com/denkfield/msl-calllog-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Reports — /v1/reports
// ============================================================

func mslReportHandler(reportSvc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports/msls/{mslId}")
		defer span.End()

		mslID := chi.URLParam(r, "mslId")
		if mslID == "" {
			writeError(w, http.StatusBadRequest, "mslId is required")
			return
		}
		if !canAccessMSL(ctx, mslID) {
			writeError(w, http.StatusForbidden, "cannot read another representative's report")
			return
		}
		span.SetAttributes(attribute.String("msl.id", mslID))

		report, err := reportSvc.MSLReport(ctx, mslID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

func teamReportHandler(reportSvc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports/team")
		defer span.End()

		report, err := reportSvc.TeamReport(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}
