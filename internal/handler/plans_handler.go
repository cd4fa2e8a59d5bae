package handler

import (
	"encoding/json"
	"net/http"

	"github.com/denkfield/msl-calllog-go/internal/domain"
	"github.com/denkfield/msl-calllog-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Plans — /v1/plans
// ============================================================

func logPlanHandler(planSvc *service.PlanService, cfgSvc *service.ConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/plans")
		defer span.End()

		var plan domain.Plan
		if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		plan.MSLID = MSLIDFromContext(ctx)
		span.SetAttributes(attribute.String("msl.id", plan.MSLID))

		// Denormalize the display name so the team view needs no joins.
		if msl := cfgSvc.Get(ctx).MSLByID(plan.MSLID); msl != nil {
			plan.MSLName = msl.Name
		}

		if err := planSvc.LogPlan(ctx, &plan); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, plan)
	}
}

func listAllPlansHandler(planSvc *service.PlanService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/plans")
		defer span.End()

		plans, err := planSvc.ListAll(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
	}
}
