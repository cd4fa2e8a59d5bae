package service

import (
	"context"
	"time"

	"github.com/denkfield/msl-calllog-go/internal/domain"
	"github.com/denkfield/msl-calllog-go/internal/infra/observability"
	"github.com/denkfield/msl-calllog-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var callTracer = otel.Tracer("service/calls")

// CallService appends and reads the append-only call log. Calls are
// immutable once stored; there is no update or delete.
type CallService struct {
	store   port.CallStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCallService creates the call service.
func NewCallService(store port.CallStore, metrics *observability.Metrics, logger *zap.Logger) *CallService {
	return &CallService{store: store, metrics: metrics, logger: logger}
}

// LogCall validates and appends one call record. Validation runs before
// any store call so a rejected submission leaves no partial write. The
// store applies no uniqueness constraint: duplicate submissions create
// duplicate records.
func (s *CallService) LogCall(ctx context.Context, call *domain.Call) error {
	ctx, span := callTracer.Start(ctx, "CallService.LogCall")
	defer span.End()
	span.SetAttributes(
		attribute.String("msl.id", call.MSLID),
		attribute.String("product.id", call.ProductID),
	)

	if call.MSLID == "" {
		return &domain.ErrValidation{Field: "msl_id", Message: "msl_id is required"}
	}
	if call.MedRep == "" {
		return &domain.ErrValidation{Field: "med_rep", Message: "med rep is required"}
	}
	if call.ProductID == "" {
		return &domain.ErrValidation{Field: "product_id", Message: "product is required"}
	}
	if len(call.Messages) == 0 {
		return &domain.ErrValidation{Field: "messages", Message: "select at least one message"}
	}
	if call.Score < 0 || call.Score > 10 {
		return &domain.ErrValidation{Field: "score", Message: "score must be between 0 and 10"}
	}

	call.ID = uuid.NewString()
	call.CreatedAt = time.Now().UTC()
	if call.Date == "" {
		call.Date = call.CreatedAt.Format("2006-01-02")
	}

	if err := s.store.InsertCall(ctx, call); err != nil {
		s.metrics.IncrStoreError("calls")
		return err
	}

	s.metrics.IncrRecordLogged("call")
	s.logger.Info("call logged",
		zap.String("call_id", call.ID),
		zap.String("msl_id", call.MSLID),
		zap.String("med_rep", call.MedRep),
		zap.Int("score", call.Score),
	)
	return nil
}

// ListByMSL returns one MSL's calls. Store order is unspecified.
func (s *CallService) ListByMSL(ctx context.Context, mslID string) ([]domain.Call, error) {
	ctx, span := callTracer.Start(ctx, "CallService.ListByMSL")
	defer span.End()
	span.SetAttributes(attribute.String("msl.id", mslID))

	return s.store.ListCallsByMSL(ctx, mslID)
}

// ListAll returns every call (manager views).
func (s *CallService) ListAll(ctx context.Context) ([]domain.Call, error) {
	ctx, span := callTracer.Start(ctx, "CallService.ListAll")
	defer span.End()

	return s.store.ListAllCalls(ctx)
}

// WasMessageUsed reports whether the MSL has already used the exact
// message with this med rep and product. The store filters the three
// scalar fields; message membership is checked here. A store failure
// degrades to false: the badge is advisory and must not break the form.
func (s *CallService) WasMessageUsed(ctx context.Context, medRep, productID, message, mslID string) bool {
	ctx, span := callTracer.Start(ctx, "CallService.WasMessageUsed")
	defer span.End()

	history, err := s.store.ListCallHistory(ctx, mslID, medRep, productID)
	if err != nil {
		s.metrics.IncrStoreError("calls")
		s.logger.Warn("calls: history lookup failed", zap.Error(err))
		return false
	}

	for _, call := range history {
		for _, m := range call.Messages {
			if m == message {
				return true
			}
		}
	}
	return false
}
