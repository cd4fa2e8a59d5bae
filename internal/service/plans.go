package service

import (
	"context"
	"sort"
	"time"

	"github.com/denkfield/msl-calllog-go/internal/domain"
	"github.com/denkfield/msl-calllog-go/internal/infra/observability"
	"github.com/denkfield/msl-calllog-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var planTracer = otel.Tracer("service/plans")

// PlanService appends and reads the append-only plan collection.
type PlanService struct {
	store   port.PlanStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewPlanService creates the plan service.
func NewPlanService(store port.PlanStore, metrics *observability.Metrics, logger *zap.Logger) *PlanService {
	return &PlanService{store: store, metrics: metrics, logger: logger}
}

// LogPlan validates and appends one planned call. Messages are optional
// for plans; everything else mirrors LogCall.
func (s *PlanService) LogPlan(ctx context.Context, plan *domain.Plan) error {
	ctx, span := planTracer.Start(ctx, "PlanService.LogPlan")
	defer span.End()

	if plan.MSLID == "" {
		return &domain.ErrValidation{Field: "msl_id", Message: "msl_id is required"}
	}
	if plan.Date == "" {
		return &domain.ErrValidation{Field: "date", Message: "date is required"}
	}
	if plan.MedRep == "" {
		return &domain.ErrValidation{Field: "med_rep", Message: "med rep is required"}
	}
	if plan.ProductID == "" {
		return &domain.ErrValidation{Field: "product_id", Message: "product is required"}
	}

	plan.ID = uuid.NewString()
	plan.CreatedAt = time.Now().UTC()

	if err := s.store.InsertPlan(ctx, plan); err != nil {
		s.metrics.IncrStoreError("plans")
		return err
	}

	s.metrics.IncrRecordLogged("plan")
	s.logger.Info("plan logged",
		zap.String("plan_id", plan.ID),
		zap.String("msl_id", plan.MSLID),
		zap.String("date", plan.Date),
	)
	return nil
}

// ListAll returns every plan, store order.
func (s *PlanService) ListAll(ctx context.Context) ([]domain.Plan, error) {
	ctx, span := planTracer.Start(ctx, "PlanService.ListAll")
	defer span.End()

	return s.store.ListAllPlans(ctx)
}

// GroupPlansByDate partitions plans into per-date buckets, dates sorted
// descending so the newest day leads the team view.
func GroupPlansByDate(plans []domain.Plan) []domain.PlanBucket {
	byDate := make(map[string][]domain.Plan)
	for _, p := range plans {
		byDate[p.Date] = append(byDate[p.Date], p)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	buckets := make([]domain.PlanBucket, 0, len(dates))
	for _, d := range dates {
		buckets = append(buckets, domain.PlanBucket{Date: d, Plans: byDate[d]})
	}
	return buckets
}
