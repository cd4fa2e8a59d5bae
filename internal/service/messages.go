package service

import (
	"context"

	"github.com/denkfield/msl-calllog-go/internal/domain"
	"github.com/denkfield/msl-calllog-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var msgTracer = otel.Tracer("service/messages")

// MessageService manages per-(MSL, product) message overrides. An
// absent override means the product defaults apply; overrides are
// whole-list replacements, never partial patches.
type MessageService struct {
	store  port.MessageOverrideStore
	logger *zap.Logger
}

// NewMessageService creates the message override service.
func NewMessageService(store port.MessageOverrideStore, logger *zap.Logger) *MessageService {
	return &MessageService{store: store, logger: logger}
}

// GetEffective returns the MSL's customized list for the product, or
// defaults unchanged when no override exists. A store failure degrades
// to defaults: this is a read path and the authoring UI must survive it.
func (s *MessageService) GetEffective(ctx context.Context, mslID, productID string, defaults []string) []string {
	ctx, span := msgTracer.Start(ctx, "MessageService.GetEffective")
	defer span.End()
	span.SetAttributes(
		attribute.String("msl.id", mslID),
		attribute.String("product.id", productID),
	)

	ov, err := s.store.GetOverride(ctx, mslID, productID)
	if err != nil {
		s.logger.Warn("messages: override read failed, serving defaults",
			zap.String("msl_id", mslID),
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return defaults
	}
	if ov == nil {
		return defaults
	}
	return ov.Messages
}

// Set replaces the MSL's whole message list for the product, creating
// the override record if absent.
func (s *MessageService) Set(ctx context.Context, mslID, productID string, messages []string) error {
	ctx, span := msgTracer.Start(ctx, "MessageService.Set")
	defer span.End()

	if mslID == "" {
		return &domain.ErrValidation{Field: "msl_id", Message: "msl_id is required"}
	}
	if productID == "" {
		return &domain.ErrValidation{Field: "product_id", Message: "product_id is required"}
	}

	return s.store.PutOverride(ctx, &domain.MessageOverride{
		MSLID:     mslID,
		ProductID: productID,
		Messages:  messages,
	})
}

// Append computes the current effective list, appends the new message
// and writes the result back as the new override, returning it.
//
// Two concurrent appends for the same (msl, product) both read the same
// base list and the later write clobbers the earlier one; one message is
// lost. Last-write-wins is inherent to the whole-list-replace design
// and is covered by a test rather than fixed here.
func (s *MessageService) Append(ctx context.Context, mslID, productID, message string, defaults []string) ([]string, error) {
	ctx, span := msgTracer.Start(ctx, "MessageService.Append")
	defer span.End()

	if message == "" {
		return nil, &domain.ErrValidation{Field: "message", Message: "message is required"}
	}

	ov, err := s.store.GetOverride(ctx, mslID, productID)
	if err != nil {
		return nil, err
	}

	base := defaults
	if ov != nil {
		base = ov.Messages
	}

	messages := make([]string, 0, len(base)+1)
	messages = append(messages, base...)
	messages = append(messages, message)

	if err := s.store.PutOverride(ctx, &domain.MessageOverride{
		MSLID:     mslID,
		ProductID: productID,
		Messages:  messages,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("messages: appended",
		zap.String("msl_id", mslID),
		zap.String("product_id", productID),
		zap.Int("count", len(messages)),
	)
	return messages, nil
}
