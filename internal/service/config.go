// Package service provides the business logic layer (use cases):
// shared configuration, message overrides, call/plan logging and the
// report aggregations built on top of them.
package service

import (
	"context"

	"github.com/denkfield/msl-calllog-go/internal/domain"
	"github.com/denkfield/msl-calllog-go/internal/infra/observability"
	"github.com/denkfield/msl-calllog-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var configTracer = otel.Tracer("service/config")

const configCacheKey = "config:app"

// ConfigService owns the shared configuration document: the MSL roster,
// the med rep list and the product catalog. Reads go through a TTL
// cache and degrade to the fixed seed when the store is unreachable;
// mutations rewrite the whole document and invalidate the cache before
// returning.
type ConfigService struct {
	store   port.ConfigDocumentStore
	cache   port.Cache[*domain.Config]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewConfigService creates the config service.
func NewConfigService(store port.ConfigDocumentStore, cache port.Cache[*domain.Config], metrics *observability.Metrics, logger *zap.Logger) *ConfigService {
	return &ConfigService{store: store, cache: cache, metrics: metrics, logger: logger}
}

// Initialize creates the document from the fixed seed if it does not
// exist. Idempotent and safe to race: the store ignores the insert when
// a document is already present.
func (s *ConfigService) Initialize(ctx context.Context) error {
	ctx, span := configTracer.Start(ctx, "ConfigService.Initialize")
	defer span.End()

	return s.store.CreateConfig(ctx, domain.SeedConfig())
}

// Get returns the shared configuration. A missing document triggers
// initialize-then-retry exactly once; a persistent store failure falls
// back to the fixed seed so the UI stays usable. The seed fallback is
// never cached.
func (s *ConfigService) Get(ctx context.Context) *domain.Config {
	ctx, span := configTracer.Start(ctx, "ConfigService.Get")
	defer span.End()

	if cached, ok := s.cache.Get(configCacheKey); ok {
		s.metrics.IncrCacheHit("config")
		return cached
	}
	s.metrics.IncrCacheMiss("config")

	cfg, err := s.load(ctx)
	if err != nil {
		s.metrics.IncrSeedFallback()
		s.logger.Warn("config: store unreachable, serving seed fallback", zap.Error(err))
		return domain.SeedConfig()
	}

	s.cache.Set(configCacheKey, cfg)
	return cfg
}

// load fetches the document, initializing it on first read.
func (s *ConfigService) load(ctx context.Context) (*domain.Config, error) {
	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		return cfg, nil
	}

	s.logger.Info("config: document missing, initializing from seed")
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}

	cfg, err = s.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		// Initialize reported success but the read-after-write missed;
		// eventual consistency. Serve the seed this once.
		return domain.SeedConfig(), nil
	}
	return cfg, nil
}

// RefreshInBackground repopulates the cache without blocking the
// caller. Errors only log; the next foreground Get will retry.
func (s *ConfigService) RefreshInBackground() {
	go func() {
		ctx := context.Background()
		cfg, err := s.load(ctx)
		if err != nil {
			s.logger.Warn("config: background refresh failed", zap.Error(err))
			return
		}
		s.cache.Set(configCacheKey, cfg)
		s.logger.Debug("config: cache refreshed in background")
	}()
}

// mutate runs fn against the current document and writes the result
// back as a whole. Mutating paths never auto-initialize: a missing
// document is an ErrConfigMissing for the caller to resolve with a
// refresh, not an excuse to fabricate an empty document under a write
// the user did not request. The cache is invalidated before returning.
func (s *ConfigService) mutate(ctx context.Context, fn func(cfg *domain.Config)) (*domain.Config, error) {
	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, &domain.ErrConfigMissing{}
	}

	fn(cfg)

	if err := s.store.PutConfig(ctx, cfg); err != nil {
		return nil, err
	}
	s.cache.Delete(configCacheKey)
	return cfg, nil
}

// AddOrUpdateContact inserts a med rep or, when the exact name already
// exists, overwrites its zone and line in place. Returns the full
// updated contact list.
func (s *ConfigService) AddOrUpdateContact(ctx context.Context, name, zone, line string) ([]domain.MedRep, error) {
	ctx, span := configTracer.Start(ctx, "ConfigService.AddOrUpdateContact")
	defer span.End()
	span.SetAttributes(attribute.String("medrep.name", name))

	if name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}

	cfg, err := s.mutate(ctx, func(cfg *domain.Config) {
		rep := domain.MedRep{Name: name, Zone: zone, Line: line}
		for i := range cfg.MedReps {
			if cfg.MedReps[i].Name == name {
				cfg.MedReps[i] = rep
				return
			}
		}
		cfg.MedReps = append(cfg.MedReps, rep)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("config: med rep saved", zap.String("name", name), zap.String("zone", zone))
	return cfg.MedReps, nil
}

// RemoveContact filters out the exact name. Removing a name that does
// not exist is an idempotent no-op, not an error.
func (s *ConfigService) RemoveContact(ctx context.Context, name string) ([]domain.MedRep, error) {
	ctx, span := configTracer.Start(ctx, "ConfigService.RemoveContact")
	defer span.End()

	cfg, err := s.mutate(ctx, func(cfg *domain.Config) {
		kept := cfg.MedReps[:0]
		for _, rep := range cfg.MedReps {
			if rep.Name != name {
				kept = append(kept, rep)
			}
		}
		cfg.MedReps = kept
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("config: med rep removed", zap.String("name", name))
	return cfg.MedReps, nil
}

// CreateProduct appends a product to the catalog. The id derives from
// the name; a collision with an existing id is a silent no-op that
// returns the existing record (first writer wins). Empty message lists
// get the fixed placeholders.
func (s *ConfigService) CreateProduct(ctx context.Context, name string, messages []string) (*domain.Product, error) {
	ctx, span := configTracer.Start(ctx, "ConfigService.CreateProduct")
	defer span.End()

	if name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}

	id := domain.ProductID(name)
	span.SetAttributes(attribute.String("product.id", id))

	cleaned := make([]string, 0, len(messages))
	for _, m := range messages {
		if m != "" {
			cleaned = append(cleaned, m)
		}
	}
	if len(cleaned) == 0 {
		cleaned = domain.PlaceholderMessages()
	}

	var result domain.Product
	if _, err := s.mutate(ctx, func(cfg *domain.Config) {
		if existing := cfg.ProductByID(id); existing != nil {
			result = *existing
			return
		}
		result = domain.Product{ID: id, Name: name, Messages: cleaned}
		cfg.Products = append(cfg.Products, result)
	}); err != nil {
		return nil, err
	}

	s.logger.Info("config: product saved", zap.String("product_id", id))
	return &result, nil
}

// DeleteProduct removes the product by id. Dependent calls, plans and
// message overrides are left in place (orphan policy: display falls
// back to the raw id).
func (s *ConfigService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := configTracer.Start(ctx, "ConfigService.DeleteProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	_, err := s.mutate(ctx, func(cfg *domain.Config) {
		kept := cfg.Products[:0]
		for _, p := range cfg.Products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		cfg.Products = kept
	})
	if err != nil {
		return err
	}

	s.logger.Info("config: product deleted", zap.String("product_id", id))
	return nil
}
