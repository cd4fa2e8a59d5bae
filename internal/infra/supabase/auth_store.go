package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/denkfield/msl-calllog-go/internal/domain"
)

// ============================================================
// AuthStore implementation — msl_credentials table
// ============================================================

// GetCredentialByEmail looks up the stored credential for a roster
// member. A missing row is (nil, nil): not found is not an error for
// an auth lookup.
func (c *Client) GetCredentialByEmail(ctx context.Context, email string) (*domain.MSLCredential, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCredentialByEmail")
	defer span.End()

	path := fmt.Sprintf("msl_credentials?email=eq.%s&limit=1", url.QueryEscape(email))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []domain.MSLCredential
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode msl_credentials: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
