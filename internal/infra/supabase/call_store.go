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
// CallStore implementation — append-only calls table
// ============================================================

// callRow maps the calls table columns. Messages is a jsonb array.
type callRow struct {
	ID        string   `json:"id"`
	Date      string   `json:"date"`
	MSLID     string   `json:"msl_id"`
	MedRep    string   `json:"med_rep"`
	ProductID string   `json:"product_id"`
	Messages  []string `json:"messages"`
	Score     int      `json:"score"`
	Note      string   `json:"note"`
	CreatedAt string   `json:"created_at"`
}

func callFromRow(r callRow) domain.Call {
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return domain.Call{
		ID:        r.ID,
		Date:      r.Date,
		MSLID:     r.MSLID,
		MedRep:    r.MedRep,
		ProductID: r.ProductID,
		Messages:  r.Messages,
		Score:     r.Score,
		Note:      r.Note,
		CreatedAt: created,
	}
}

// InsertCall appends one call record. No uniqueness constraint applies;
// duplicate submissions create duplicate rows.
func (c *Client) InsertCall(ctx context.Context, call *domain.Call) error {
	ctx, span := tracer.Start(ctx, "Supabase.InsertCall")
	defer span.End()

	row := callRow{
		ID:        call.ID,
		Date:      call.Date,
		MSLID:     call.MSLID,
		MedRep:    call.MedRep,
		ProductID: call.ProductID,
		Messages:  call.Messages,
		Score:     call.Score,
		Note:      call.Note,
		CreatedAt: call.CreatedAt.Format(time.RFC3339),
	}
	_, err := c.doPost(ctx, "calls", row, "return=minimal")
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/calls", Err: err}
	}
	return nil
}

// ListCallsByMSL returns the MSL's calls in store order. Callers must
// not assume chronological ordering.
func (c *Client) ListCallsByMSL(ctx context.Context, mslID string) ([]domain.Call, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCallsByMSL")
	defer span.End()

	path := fmt.Sprintf("calls?msl_id=eq.%s", url.QueryEscape(mslID))
	return c.listCalls(ctx, path)
}

// ListAllCalls returns the whole collection (manager views).
func (c *Client) ListAllCalls(ctx context.Context) ([]domain.Call, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAllCalls")
	defer span.End()

	return c.listCalls(ctx, "calls?select=*")
}

// ListCallHistory filters on the three scalar fields; message membership
// is the caller's job (jsonb containment is a store-specific feature the
// port deliberately does not assume).
func (c *Client) ListCallHistory(ctx context.Context, mslID, medRep, productID string) ([]domain.Call, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCallHistory")
	defer span.End()

	path := fmt.Sprintf("calls?msl_id=eq.%s&med_rep=eq.%s&product_id=eq.%s",
		url.QueryEscape(mslID), url.QueryEscape(medRep), url.QueryEscape(productID))
	return c.listCalls(ctx, path)
}

func (c *Client) listCalls(ctx context.Context, path string) ([]domain.Call, error) {
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/calls", Err: err}
	}
	if body == nil {
		return []domain.Call{}, nil
	}

	var rows []callRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode calls: %w", err)
	}

	calls := make([]domain.Call, 0, len(rows))
	for _, r := range rows {
		calls = append(calls, callFromRow(r))
	}
	return calls, nil
}
