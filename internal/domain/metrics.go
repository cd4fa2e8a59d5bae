package domain

// UsageMetrics is the counter snapshot served by GET /v1/metrics/usage.
type UsageMetrics struct {
	TotalRequests int64   `json:"total_requests"`
	ErrorRate     float64 `json:"error_rate"`
	CallsLogged   int64   `json:"calls_logged"`
	PlansLogged   int64   `json:"plans_logged"`
	CacheHitRate  float64 `json:"cache_hit_rate"`
	SeedFallbacks int64   `json:"seed_fallbacks"`
	Period        string  `json:"period"`
}
