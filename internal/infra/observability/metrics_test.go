package observability_test

import (
	"testing"

	"github.com/denkfield/msl-calllog-go/internal/infra/observability"
)

func TestGetUsageSnapshot_Empty(t *testing.T) {
	m := observability.NewMetrics()

	snap := m.GetUsageSnapshot()
	if snap.TotalRequests != 0 {
		t.Errorf("expected 0 requests, got %d", snap.TotalRequests)
	}
	if snap.ErrorRate != 0 {
		t.Errorf("expected 0 error rate, got %f", snap.ErrorRate)
	}
	if snap.CacheHitRate != 0 {
		t.Errorf("expected 0 cache hit rate, got %f", snap.CacheHitRate)
	}
}

func TestGetUsageSnapshot_CountsStatusClasses(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrRequest("2xx")
	m.IncrRequest("2xx")
	m.IncrRequest("4xx")
	m.IncrRequest("5xx")

	snap := m.GetUsageSnapshot()
	if snap.TotalRequests != 4 {
		t.Errorf("expected 4 requests, got %d", snap.TotalRequests)
	}
	if snap.ErrorRate != 0.5 {
		t.Errorf("expected error rate 0.5, got %f", snap.ErrorRate)
	}
}

func TestGetUsageSnapshot_Counters(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrRecordLogged("call")
	m.IncrRecordLogged("call")
	m.IncrRecordLogged("plan")
	m.IncrCacheHit("config")
	m.IncrCacheHit("config")
	m.IncrCacheHit("config")
	m.IncrCacheMiss("config")
	m.IncrSeedFallback()

	snap := m.GetUsageSnapshot()
	if snap.CallsLogged != 2 {
		t.Errorf("expected 2 calls logged, got %d", snap.CallsLogged)
	}
	if snap.PlansLogged != 1 {
		t.Errorf("expected 1 plan logged, got %d", snap.PlansLogged)
	}
	if snap.CacheHitRate != 0.75 {
		t.Errorf("expected cache hit rate 0.75, got %f", snap.CacheHitRate)
	}
	if snap.SeedFallbacks != 1 {
		t.Errorf("expected 1 seed fallback, got %d", snap.SeedFallbacks)
	}
}
