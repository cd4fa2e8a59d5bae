package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/denkfield/msl-calllog-go/internal/domain"
)

// ============================================================
// PlanStore implementation — append-only plans table
// ============================================================

type planRow struct {
	ID        string   `json:"id"`
	Date      string   `json:"date"`
	MSLID     string   `json:"msl_id"`
	MSLName   string   `json:"msl_name"`
	MedRep    string   `json:"med_rep"`
	ProductID string   `json:"product_id"`
	Messages  []string `json:"messages"`
	CreatedAt string   `json:"created_at"`
}

// InsertPlan appends one planned-call record.
func (c *Client) InsertPlan(ctx context.Context, plan *domain.Plan) error {
	ctx, span := tracer.Start(ctx, "Supabase.InsertPlan")
	defer span.End()

	row := planRow{
		ID:        plan.ID,
		Date:      plan.Date,
		MSLID:     plan.MSLID,
		MSLName:   plan.MSLName,
		MedRep:    plan.MedRep,
		ProductID: plan.ProductID,
		Messages:  plan.Messages,
		CreatedAt: plan.CreatedAt.Format(time.RFC3339),
	}
	_, err := c.doPost(ctx, "plans", row, "return=minimal")
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/plans", Err: err}
	}
	return nil
}

// ListAllPlans returns the whole plans collection, store order.
func (c *Client) ListAllPlans(ctx context.Context) ([]domain.Plan, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAllPlans")
	defer span.End()

	body, err := c.doGet(ctx, "plans?select=*")
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/plans", Err: err}
	}
	if body == nil {
		return []domain.Plan{}, nil
	}

	var rows []planRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode plans: %w", err)
	}

	plans := make([]domain.Plan, 0, len(rows))
	for _, r := range rows {
		created, _ := time.Parse(time.RFC3339, r.CreatedAt)
		plans = append(plans, domain.Plan{
			ID:        r.ID,
			Date:      r.Date,
			MSLID:     r.MSLID,
			MSLName:   r.MSLName,
			MedRep:    r.MedRep,
			ProductID: r.ProductID,
			Messages:  r.Messages,
			CreatedAt: created,
		})
	}
	return plans, nil
}
