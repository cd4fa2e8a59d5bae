package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/denkfield/msl-calllog-go/internal/domain"
	"github.com/denkfield/msl-calllog-go/internal/infra/resilience"
)

// ============================================================
// ConfigDocumentStore implementation — the shared configuration
// lives in a single jsonb row: app_config(key='app', data).
// ============================================================

const configKey = "app"

// configRow maps the app_config table.
type configRow struct {
	Key       string        `json:"key"`
	Data      domain.Config `json:"data"`
	UpdatedAt string        `json:"updated_at,omitempty"`
}

// GetConfig fetches the shared configuration document. A missing row is
// reported as (nil, nil); transient failures are retried behind the
// circuit breaker before surfacing.
func (c *Client) GetConfig(ctx context.Context) (*domain.Config, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetConfig")
	defer span.End()

	var cfg *domain.Config

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("app_config?key=eq.%s&limit=1", configKey)
			body, err := c.doGet(ctx, path)
			if err != nil {
				return err
			}
			if body == nil || string(body) == "[]" {
				cfg = nil // never initialized
				return nil
			}

			var rows []configRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode app_config: %w", err)
			}
			if len(rows) == 0 {
				cfg = nil
				return nil
			}
			data := rows[0].Data
			cfg = &data
			return nil
		})
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/config", Err: err}
	}
	return cfg, nil
}

// PutConfig replaces the whole document unconditionally. Two concurrent
// writers race and one update is lost; that is the documented contract.
func (c *Client) PutConfig(ctx context.Context, cfg *domain.Config) error {
	ctx, span := tracer.Start(ctx, "Supabase.PutConfig")
	defer span.End()

	row := configRow{
		Key:       configKey,
		Data:      *cfg,
		UpdatedAt: time.Now().Format(time.RFC3339),
	}
	_, err := c.doPost(ctx, "app_config?on_conflict=key", row,
		"resolution=merge-duplicates,return=minimal")
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/config", Err: err}
	}
	return nil
}

// CreateConfig writes the document only if the row does not exist yet.
// PostgREST's ignore-duplicates resolution makes the racy
// check-then-write safe: the first writer wins, later calls are no-ops.
func (c *Client) CreateConfig(ctx context.Context, cfg *domain.Config) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateConfig")
	defer span.End()

	row := configRow{
		Key:       configKey,
		Data:      *cfg,
		UpdatedAt: time.Now().Format(time.RFC3339),
	}
	_, err := c.doPost(ctx, "app_config?on_conflict=key", row,
		"resolution=ignore-duplicates,return=minimal")
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/config", Err: err}
	}
	return nil
}

// Ping is a cheap reachability probe used by the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doGet(ctx, fmt.Sprintf("app_config?key=eq.%s&select=key&limit=1", configKey))
	return err
}
