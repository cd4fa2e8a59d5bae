// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from the concrete document store implementation.
package port

import (
	"context"

	"github.com/denkfield/msl-calllog-go/internal/domain"
)

// ConfigDocumentStore persists the single shared configuration document.
// The document is always fetched and written as a whole; the store offers
// no partial updates and no compare-and-swap.
type ConfigDocumentStore interface {
	// GetConfig returns the document, or nil if it was never created.
	GetConfig(ctx context.Context) (*domain.Config, error)
	// PutConfig unconditionally replaces the document (last write wins).
	PutConfig(ctx context.Context, cfg *domain.Config) error
	// CreateConfig writes the document only if absent. Safe to call
	// concurrently: the first writer wins, later calls are no-ops.
	CreateConfig(ctx context.Context, cfg *domain.Config) error
}

// MessageOverrideStore persists per-(MSL, product) message lists.
type MessageOverrideStore interface {
	// GetOverride returns the override for the key, or nil if absent.
	GetOverride(ctx context.Context, mslID, productID string) (*domain.MessageOverride, error)
	// PutOverride upserts the whole list for the key.
	PutOverride(ctx context.Context, ov *domain.MessageOverride) error
}

// CallStore is the append-only call collection. No ordering guarantee.
type CallStore interface {
	InsertCall(ctx context.Context, call *domain.Call) error
	ListCallsByMSL(ctx context.Context, mslID string) ([]domain.Call, error)
	ListAllCalls(ctx context.Context) ([]domain.Call, error)
	// ListCallHistory returns calls matching all three equality filters;
	// message membership is checked by the caller.
	ListCallHistory(ctx context.Context, mslID, medRep, productID string) ([]domain.Call, error)
}

// PlanStore is the append-only plan collection. No ordering guarantee.
type PlanStore interface {
	InsertPlan(ctx context.Context, plan *domain.Plan) error
	ListAllPlans(ctx context.Context) ([]domain.Plan, error)
}

// AuthStore looks up stored sign-in credentials.
type AuthStore interface {
	GetCredentialByEmail(ctx context.Context, email string) (*domain.MSLCredential, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
