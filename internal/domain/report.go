package domain

// Report shapes derived from call and plan snapshots. All grouping is
// pure and order-independent; slices are sorted for stable output.

// KnowledgeGap is one low-scoring call surfaced for manager review.
type KnowledgeGap struct {
	CallID   string `json:"call_id"`
	Date     string `json:"date"`
	MedRep   string `json:"med_rep"`
	Product  string `json:"product"`
	Messages string `json:"messages"`
	Score    int    `json:"score"`
}

// CallEntry is one call inside the detailed report, kept at per-call
// granularity so every note/date survives even when the same message
// was used twice.
type CallEntry struct {
	Date     string   `json:"date"`
	Messages []string `json:"messages"`
	Note     string   `json:"note,omitempty"`
	Score    int      `json:"score"`
}

// ProductDetail groups a contact's calls for one product.
type ProductDetail struct {
	ProductID string      `json:"product_id"`
	Product   string      `json:"product"`
	Entries   []CallEntry `json:"entries"`
}

// ContactDetail groups one contact's calls by product.
type ContactDetail struct {
	MedRep   string          `json:"med_rep"`
	Products []ProductDetail `json:"products"`
}

// MSLReport is the per-representative report view.
type MSLReport struct {
	MSLID          string            `json:"msl_id"`
	MSLName        string            `json:"msl_name"`
	TotalCalls     int               `json:"total_calls"`
	ScoreByContact map[string]string `json:"score_by_contact"`
	KnowledgeGaps  []KnowledgeGap    `json:"knowledge_gaps"`
	Details        []ContactDetail   `json:"details"`
}

// TeamBucket is one roster member's slice of the team report. MSLs with
// zero calls still get a bucket with an empty call list, because the
// partition is seeded from the roster, not from the data.
type TeamBucket struct {
	MSLID   string `json:"msl_id"`
	MSLName string `json:"msl_name"`
	Calls   []Call `json:"calls"`
}

// PlanBucket groups the team's plans for a single date.
type PlanBucket struct {
	Date  string `json:"date"`
	Plans []Plan `json:"plans"`
}

// TeamPlanBucket is one roster member's slice of the team plan view,
// seeded from the roster like TeamBucket.
type TeamPlanBucket struct {
	MSLID   string `json:"msl_id"`
	MSLName string `json:"msl_name"`
	Plans   []Plan `json:"plans"`
}

// TeamReport is the combined manager view: calls partitioned across the
// roster, plans grouped by date for the daily view and by representative.
type TeamReport struct {
	Calls      []TeamBucket     `json:"calls"`
	Plans      []PlanBucket     `json:"plans"`
	PlansByMSL []TeamPlanBucket `json:"plans_by_msl"`
}
