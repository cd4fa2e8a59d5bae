package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/denkfield/msl-calllog-go/internal/domain"
)

// ============================================================
// MessageOverrideStore implementation — msl_messages table,
// unique on (msl_id, product_id)
// ============================================================

type overrideRow struct {
	MSLID     string   `json:"msl_id"`
	ProductID string   `json:"product_id"`
	Messages  []string `json:"messages"`
	UpdatedAt string   `json:"updated_at"`
}

// GetOverride returns the customized list for (mslID, productID), or
// nil when the MSL still uses the product defaults.
func (c *Client) GetOverride(ctx context.Context, mslID, productID string) (*domain.MessageOverride, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetOverride")
	defer span.End()

	path := fmt.Sprintf("msl_messages?msl_id=eq.%s&product_id=eq.%s&limit=1",
		url.QueryEscape(mslID), url.QueryEscape(productID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/messages", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []overrideRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode msl_messages: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	r := rows[0]
	updated, _ := time.Parse(time.RFC3339, r.UpdatedAt)
	return &domain.MessageOverride{
		MSLID:     r.MSLID,
		ProductID: r.ProductID,
		Messages:  r.Messages,
		UpdatedAt: updated,
	}, nil
}

// PutOverride upserts the whole message list. Two concurrent writers for
// the same key clobber each other (last write wins); AppendMessage's
// documented lost-update race lives here.
func (c *Client) PutOverride(ctx context.Context, ov *domain.MessageOverride) error {
	ctx, span := tracer.Start(ctx, "Supabase.PutOverride")
	defer span.End()

	row := overrideRow{
		MSLID:     ov.MSLID,
		ProductID: ov.ProductID,
		Messages:  ov.Messages,
		UpdatedAt: time.Now().Format(time.RFC3339),
	}
	_, err := c.doPost(ctx, "msl_messages?on_conflict=msl_id,product_id", row,
		"resolution=merge-duplicates,return=minimal")
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/messages", Err: err}
	}
	return nil
}
