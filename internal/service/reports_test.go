package service_test

import (
	"context"
	"testing"

	"github.com/denkfield/msl-calllog-go/internal/domain"
	"github.com/denkfield/msl-calllog-go/internal/service"

	"go.uber.org/zap"
)

// --- Tests for the pure aggregation functions ---

func TestScoreByContact_FormatsOneDecimalMean(t *testing.T) {
	calls := []domain.Call{
		{MedRep: "Yaman Ali", Score: 8},
		{MedRep: "Yaman Ali", Score: 4},
		{MedRep: "Sabreen Majid", Score: 7},
	}

	got := service.ScoreByContact(calls)
	if got["Yaman Ali"] != "6.0" {
		t.Errorf("mean for Yaman Ali = %q, want 6.0", got["Yaman Ali"])
	}
	if got["Sabreen Majid"] != "7.0" {
		t.Errorf("mean for Sabreen Majid = %q, want 7.0", got["Sabreen Majid"])
	}
}

func TestScoreByContact_EmptyInput(t *testing.T) {
	got := service.ScoreByContact(nil)
	if len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}

func TestKnowledgeGaps_ThresholdBoundary(t *testing.T) {
	cfg := domain.SeedConfig()
	calls := []domain.Call{
		{ID: "c1", Date: "2026-08-01", MedRep: "Yaman Ali", ProductID: "panto", Messages: []string{"A"}, Score: 4},
		{ID: "c2", Date: "2026-08-02", MedRep: "Yaman Ali", ProductID: "panto", Messages: []string{"B"}, Score: 5},
		{ID: "c3", Date: "2026-08-03", MedRep: "Sabreen Majid", ProductID: "panto", Messages: []string{"C"}, Score: 0},
	}

	gaps := service.KnowledgeGaps(calls, cfg)
	if len(gaps) != 2 {
		t.Fatalf("gaps = %d, want 2 (score 4 in, score 5 out)", len(gaps))
	}
	for _, g := range gaps {
		if g.Score > 4 {
			t.Errorf("gap with score %d leaked through threshold", g.Score)
		}
		if g.Product != "PantoDenk" {
			t.Errorf("product = %q, want resolved display name", g.Product)
		}
	}
	if gaps[0].Date != "2026-08-03" {
		t.Errorf("first gap date = %q, want newest first", gaps[0].Date)
	}
}

func TestKnowledgeGaps_OrphanedProductKeepsRawID(t *testing.T) {
	cfg := domain.SeedConfig()
	calls := []domain.Call{
		{ID: "c1", Date: "2026-08-01", MedRep: "Yaman Ali", ProductID: "deleted_product", Messages: []string{"A"}, Score: 2},
	}

	gaps := service.KnowledgeGaps(calls, cfg)
	if len(gaps) != 1 {
		t.Fatalf("gaps = %d, want 1", len(gaps))
	}
	if gaps[0].Product != "deleted_product" {
		t.Errorf("product = %q, want raw id fallback", gaps[0].Product)
	}
}

func TestDetailedReport_KeepsPerCallGranularity(t *testing.T) {
	cfg := domain.SeedConfig()
	// Same message delivered to the same contact on two dates: both
	// entries must survive.
	calls := []domain.Call{
		{Date: "2026-08-01", MedRep: "Yaman Ali", ProductID: "panto", Messages: []string{"A"}, Score: 6, Note: "first visit"},
		{Date: "2026-08-10", MedRep: "Yaman Ali", ProductID: "panto", Messages: []string{"A"}, Score: 8},
	}

	details := service.DetailedReport(calls, cfg)
	if len(details) != 1 {
		t.Fatalf("contacts = %d, want 1", len(details))
	}
	entries := details[0].Products[0].Entries
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (no dedup by message)", len(entries))
	}
	if entries[0].Date != "2026-08-10" {
		t.Errorf("entries not sorted newest first: %v", entries)
	}
	if entries[1].Note != "first visit" {
		t.Errorf("note lost in grouping: %+v", entries[1])
	}
}

func TestDetailedReport_GroupsByContactThenProduct(t *testing.T) {
	cfg := domain.SeedConfig()
	calls := []domain.Call{
		{Date: "2026-08-01", MedRep: "Yaman Ali", ProductID: "panto", Messages: []string{"A"}},
		{Date: "2026-08-02", MedRep: "Yaman Ali", ProductID: "other", Messages: []string{"B"}},
		{Date: "2026-08-03", MedRep: "Sabreen Majid", ProductID: "panto", Messages: []string{"C"}},
	}

	details := service.DetailedReport(calls, cfg)
	if len(details) != 2 {
		t.Fatalf("contacts = %d, want 2", len(details))
	}
	// Sorted by contact name.
	if details[0].MedRep != "Sabreen Majid" || details[1].MedRep != "Yaman Ali" {
		t.Errorf("contact order = %s, %s", details[0].MedRep, details[1].MedRep)
	}
	if len(details[1].Products) != 2 {
		t.Errorf("products for Yaman Ali = %d, want 2", len(details[1].Products))
	}
}

func TestTeamBuckets_IncludesInactiveRosterMembers(t *testing.T) {
	roster := domain.SeedConfig().MSLs
	calls := []domain.Call{
		{ID: "c1", MSLID: "msl2"},
		{ID: "c2", MSLID: "msl2"},
		{ID: "c3", MSLID: "msl4"},
	}

	buckets := service.TeamBuckets(roster, calls)
	if len(buckets) != 4 {
		t.Fatalf("buckets = %d, want 4 (full roster)", len(buckets))
	}

	byID := make(map[string]domain.TeamBucket)
	for _, b := range buckets {
		byID[b.MSLID] = b
	}
	if len(byID["msl2"].Calls) != 2 {
		t.Errorf("msl2 calls = %d, want 2", len(byID["msl2"].Calls))
	}
	if byID["msl1"].Calls == nil || len(byID["msl1"].Calls) != 0 {
		t.Errorf("inactive msl1 must get an empty, non-nil bucket: %v", byID["msl1"].Calls)
	}
	if byID["msl1"].MSLName != "Khaldoon Sattar" {
		t.Errorf("bucket name = %q", byID["msl1"].MSLName)
	}
}

func TestTeamBuckets_DropsOffRosterCalls(t *testing.T) {
	roster := domain.SeedConfig().MSLs
	calls := []domain.Call{{ID: "c1", MSLID: "ghost"}}

	buckets := service.TeamBuckets(roster, calls)
	for _, b := range buckets {
		if len(b.Calls) != 0 {
			t.Errorf("off-roster call leaked into bucket %s", b.MSLID)
		}
	}
}

func TestGroupPlansByDate_NewestFirst(t *testing.T) {
	plans := []domain.Plan{
		{ID: "p1", Date: "2026-08-01"},
		{ID: "p2", Date: "2026-08-15"},
		{ID: "p3", Date: "2026-08-01"},
	}

	buckets := service.GroupPlansByDate(plans)
	if len(buckets) != 2 {
		t.Fatalf("buckets = %d, want 2", len(buckets))
	}
	if buckets[0].Date != "2026-08-15" || buckets[1].Date != "2026-08-01" {
		t.Errorf("dates = %s, %s, want descending", buckets[0].Date, buckets[1].Date)
	}
	if len(buckets[1].Plans) != 2 {
		t.Errorf("plans on 2026-08-01 = %d, want 2", len(buckets[1].Plans))
	}
}

// --- Report service wiring ---

type mockPlanStore struct {
	plans []domain.Plan
}

func (m *mockPlanStore) InsertPlan(_ context.Context, plan *domain.Plan) error {
	m.plans = append(m.plans, *plan)
	return nil
}

func (m *mockPlanStore) ListAllPlans(_ context.Context) ([]domain.Plan, error) {
	return m.plans, nil
}

func TestMSLReport_UnknownMSL(t *testing.T) {
	cfgSvc := newConfigService(&mockConfigStore{doc: domain.SeedConfig()})
	svc := service.NewReportService(&mockCallStore{}, &mockPlanStore{}, cfgSvc, zap.NewNop())

	_, err := svc.MSLReport(context.Background(), "msl99")
	if err == nil {
		t.Fatal("expected not-found error for unknown msl")
	}
}

func TestMSLReport_AggregatesOwnCallsOnly(t *testing.T) {
	cfgSvc := newConfigService(&mockConfigStore{doc: domain.SeedConfig()})
	calls := &mockCallStore{calls: []domain.Call{
		{MSLID: "msl2", MedRep: "Yaman Ali", ProductID: "panto", Messages: []string{"A"}, Score: 3, Date: "2026-08-01"},
		{MSLID: "msl3", MedRep: "Yaman Ali", ProductID: "panto", Messages: []string{"A"}, Score: 9, Date: "2026-08-01"},
	}}
	svc := service.NewReportService(calls, &mockPlanStore{}, cfgSvc, zap.NewNop())

	report, err := svc.MSLReport(context.Background(), "msl2")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.TotalCalls != 1 {
		t.Errorf("total calls = %d, want 1", report.TotalCalls)
	}
	if report.MSLName != "Ahmed AbdulKareem" {
		t.Errorf("msl name = %q", report.MSLName)
	}
	if len(report.KnowledgeGaps) != 1 {
		t.Errorf("gaps = %d, want 1", len(report.KnowledgeGaps))
	}
	if report.ScoreByContact["Yaman Ali"] != "3.0" {
		t.Errorf("score = %q, want 3.0", report.ScoreByContact["Yaman Ali"])
	}
}

func TestTeamReport_PartitionsCallsAndPlans(t *testing.T) {
	cfgSvc := newConfigService(&mockConfigStore{doc: domain.SeedConfig()})
	calls := &mockCallStore{calls: []domain.Call{{ID: "c1", MSLID: "msl2"}}}
	plans := &mockPlanStore{plans: []domain.Plan{{ID: "p1", MSLID: "msl3", Date: "2026-09-01"}}}
	svc := service.NewReportService(calls, plans, cfgSvc, zap.NewNop())

	report, err := svc.TeamReport(context.Background())
	if err != nil {
		t.Fatalf("team report: %v", err)
	}
	if len(report.Calls) != 4 {
		t.Errorf("call buckets = %d, want full roster of 4", len(report.Calls))
	}
	if len(report.Plans) != 1 || report.Plans[0].Date != "2026-09-01" {
		t.Errorf("plan buckets = %v", report.Plans)
	}
	if len(report.PlansByMSL) != 4 {
		t.Fatalf("per-msl plan buckets = %d, want full roster of 4", len(report.PlansByMSL))
	}
}

func TestTeamPlans_IncludesInactiveRosterMembers(t *testing.T) {
	roster := domain.SeedConfig().MSLs
	plans := []domain.Plan{
		{ID: "p1", MSLID: "msl3", Date: "2026-09-01"},
		{ID: "p2", MSLID: "msl3", Date: "2026-09-15"},
		{ID: "p3", MSLID: "ghost", Date: "2026-09-01"},
	}

	buckets := service.TeamPlans(roster, plans)
	if len(buckets) != 4 {
		t.Fatalf("buckets = %d, want 4 (full roster)", len(buckets))
	}

	byID := make(map[string]domain.TeamPlanBucket)
	for _, b := range buckets {
		byID[b.MSLID] = b
	}
	if got := byID["msl3"].Plans; len(got) != 2 || got[0].Date != "2026-09-15" {
		t.Errorf("msl3 plans = %v, want 2 newest first", got)
	}
	if byID["msl1"].Plans == nil || len(byID["msl1"].Plans) != 0 {
		t.Errorf("inactive msl1 must get an empty, non-nil bucket: %v", byID["msl1"].Plans)
	}
	for _, b := range buckets {
		for _, p := range b.Plans {
			if p.MSLID == "ghost" {
				t.Errorf("off-roster plan leaked into bucket %s", b.MSLID)
			}
		}
	}
}
