package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/denkfield/msl-calllog-go/internal/domain"
	"github.com/denkfield/msl-calllog-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var reportTracer = otel.Tracer("service/reports")

// knowledgeGapThreshold marks a call as a coaching opportunity.
const knowledgeGapThreshold = 4

// ReportService derives report views from the call and plan collections.
// All aggregation is done in memory over full snapshots; the collections
// are small enough that server-side aggregation is not worth the coupling.
type ReportService struct {
	calls  port.CallStore
	plans  port.PlanStore
	config *ConfigService
	logger *zap.Logger
}

// NewReportService creates the report service.
func NewReportService(calls port.CallStore, plans port.PlanStore, config *ConfigService, logger *zap.Logger) *ReportService {
	return &ReportService{calls: calls, plans: plans, config: config, logger: logger}
}

// MSLReport builds the per-representative report from that MSL's calls.
func (s *ReportService) MSLReport(ctx context.Context, mslID string) (*domain.MSLReport, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.MSLReport")
	defer span.End()

	cfg := s.config.Get(ctx)
	msl := cfg.MSLByID(mslID)
	if msl == nil {
		return nil, &domain.ErrNotFound{Resource: "msl", ID: mslID}
	}

	calls, err := s.calls.ListCallsByMSL(ctx, mslID)
	if err != nil {
		return nil, err
	}

	return &domain.MSLReport{
		MSLID:          mslID,
		MSLName:        msl.Name,
		TotalCalls:     len(calls),
		ScoreByContact: ScoreByContact(calls),
		KnowledgeGaps:  KnowledgeGaps(calls, cfg),
		Details:        DetailedReport(calls, cfg),
	}, nil
}

// TeamReport fetches all calls and plans concurrently and partitions them
// across the full roster. Manager-only at the handler layer.
func (s *ReportService) TeamReport(ctx context.Context) (*domain.TeamReport, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.TeamReport")
	defer span.End()

	cfg := s.config.Get(ctx)

	var (
		calls []domain.Call
		plans []domain.Plan
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		calls, err = s.calls.ListAllCalls(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		plans, err = s.plans.ListAllPlans(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.TeamReport{
		Calls:      TeamBuckets(cfg.MSLs, calls),
		Plans:      GroupPlansByDate(plans),
		PlansByMSL: TeamPlans(cfg.MSLs, plans),
	}, nil
}

// ScoreByContact computes the mean score per contact, formatted with one
// decimal place ("6.0") so the value renders the same everywhere.
func ScoreByContact(calls []domain.Call) map[string]string {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, c := range calls {
		sums[c.MedRep] += c.Score
		counts[c.MedRep]++
	}

	means := make(map[string]string, len(sums))
	for rep, sum := range sums {
		means[rep] = fmt.Sprintf("%.1f", float64(sum)/float64(counts[rep]))
	}
	return means
}

// KnowledgeGaps returns the calls at or below the gap threshold, newest
// date first. Product ids that no longer resolve in the catalog fall back
// to the raw id so orphaned calls stay visible.
func KnowledgeGaps(calls []domain.Call, cfg *domain.Config) []domain.KnowledgeGap {
	gaps := make([]domain.KnowledgeGap, 0)
	for _, c := range calls {
		if c.Score > knowledgeGapThreshold {
			continue
		}
		gaps = append(gaps, domain.KnowledgeGap{
			CallID:   c.ID,
			Date:     c.Date,
			MedRep:   c.MedRep,
			Product:  productName(cfg, c.ProductID),
			Messages: strings.Join(c.Messages, ", "),
			Score:    c.Score,
		})
	}
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].Date > gaps[j].Date })
	return gaps
}

// DetailedReport groups calls by contact, then by product, keeping one
// entry per call so repeated messages on different dates are not merged.
// Contacts and products are sorted by name; entries newest first.
func DetailedReport(calls []domain.Call, cfg *domain.Config) []domain.ContactDetail {
	type productKey struct {
		medRep    string
		productID string
	}
	byProduct := make(map[productKey][]domain.CallEntry)
	repSet := make(map[string][]string)

	for _, c := range calls {
		key := productKey{medRep: c.MedRep, productID: c.ProductID}
		if _, seen := byProduct[key]; !seen {
			repSet[c.MedRep] = append(repSet[c.MedRep], c.ProductID)
		}
		byProduct[key] = append(byProduct[key], domain.CallEntry{
			Date:     c.Date,
			Messages: c.Messages,
			Note:     c.Note,
			Score:    c.Score,
		})
	}

	reps := make([]string, 0, len(repSet))
	for rep := range repSet {
		reps = append(reps, rep)
	}
	sort.Strings(reps)

	details := make([]domain.ContactDetail, 0, len(reps))
	for _, rep := range reps {
		productIDs := repSet[rep]
		products := make([]domain.ProductDetail, 0, len(productIDs))
		for _, pid := range productIDs {
			entries := byProduct[productKey{medRep: rep, productID: pid}]
			sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })
			products = append(products, domain.ProductDetail{
				ProductID: pid,
				Product:   productName(cfg, pid),
				Entries:   entries,
			})
		}
		sort.Slice(products, func(i, j int) bool { return products[i].Product < products[j].Product })
		details = append(details, domain.ContactDetail{MedRep: rep, Products: products})
	}
	return details
}

// TeamBuckets partitions calls across the roster. Every roster member
// gets a bucket, empty or not, so the team view shows inactivity too.
// Calls for ids no longer on the roster are dropped.
func TeamBuckets(roster []domain.MSL, calls []domain.Call) []domain.TeamBucket {
	index := make(map[string]int, len(roster))
	buckets := make([]domain.TeamBucket, 0, len(roster))
	for _, m := range roster {
		index[m.ID] = len(buckets)
		buckets = append(buckets, domain.TeamBucket{
			MSLID:   m.ID,
			MSLName: m.Name,
			Calls:   []domain.Call{},
		})
	}
	for _, c := range calls {
		i, ok := index[c.MSLID]
		if !ok {
			continue
		}
		buckets[i].Calls = append(buckets[i].Calls, c)
	}
	return buckets
}

// TeamPlans partitions plans across the roster the same way TeamBuckets
// partitions calls. Plans within a bucket stay newest date first.
func TeamPlans(roster []domain.MSL, plans []domain.Plan) []domain.TeamPlanBucket {
	index := make(map[string]int, len(roster))
	buckets := make([]domain.TeamPlanBucket, 0, len(roster))
	for _, m := range roster {
		index[m.ID] = len(buckets)
		buckets = append(buckets, domain.TeamPlanBucket{
			MSLID:   m.ID,
			MSLName: m.Name,
			Plans:   []domain.Plan{},
		})
	}
	for _, p := range plans {
		i, ok := index[p.MSLID]
		if !ok {
			continue
		}
		buckets[i].Plans = append(buckets[i].Plans, p)
	}
	for i := range buckets {
		sort.SliceStable(buckets[i].Plans, func(a, b int) bool {
			return buckets[i].Plans[a].Date > buckets[i].Plans[b].Date
		})
	}
	return buckets
}

func productName(cfg *domain.Config, productID string) string {
	if p := cfg.ProductByID(productID); p != nil {
		return p.Name
	}
	return productID
}
