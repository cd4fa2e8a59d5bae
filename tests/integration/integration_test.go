package integration_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/denkfield/msl-calllog-go/internal/domain"
	"github.com/denkfield/msl-calllog-go/internal/handler"
	"github.com/denkfield/msl-calllog-go/internal/infra/cache"
	"github.com/denkfield/msl-calllog-go/internal/infra/observability"
	"github.com/denkfield/msl-calllog-go/internal/infra/resilience"
	"github.com/denkfield/msl-calllog-go/internal/infra/supabase"
	"github.com/denkfield/msl-calllog-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// postgrestStub emulates the slice of PostgREST the document store
// uses: per-table row lists, eq. filters, and upsert-by-conflict-key.
type postgrestStub struct {
	mu     sync.Mutex
	tables map[string][]map[string]any
}

func newPostgrestStub(t *testing.T) *postgrestStub {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &postgrestStub{tables: map[string][]map[string]any{
		"msl_credentials": {
			{"msl_id": "msl1", "email": "khaldoon@denk.local", "password_hash": string(hash)},
			{"msl_id": "msl2", "email": "ahmed@denk.local", "password_hash": string(hash)},
		},
	}}
}

func (s *postgrestStub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
		q := r.URL.Query()

		switch r.Method {
		case http.MethodGet:
			var out []map[string]any
			for _, row := range s.tables[table] {
				if matchesFilters(row, q) {
					out = append(out, row)
				}
			}
			if out == nil {
				out = []map[string]any{}
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(out)

		case http.MethodPost:
			var row map[string]any
			if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			conflictKeys := strings.Split(q.Get("on_conflict"), ",")
			prefer := r.Header.Get("Prefer")
			if q.Get("on_conflict") != "" {
				for i, existing := range s.tables[table] {
					if sameKeys(existing, row, conflictKeys) {
						if strings.Contains(prefer, "merge-duplicates") {
							s.tables[table][i] = row
						}
						// ignore-duplicates: first writer wins
						w.WriteHeader(http.StatusCreated)
						return
					}
				}
			}
			s.tables[table] = append(s.tables[table], row)
			w.WriteHeader(http.StatusCreated)

		case http.MethodDelete:
			var kept []map[string]any
			for _, row := range s.tables[table] {
				if !matchesFilters(row, q) {
					kept = append(kept, row)
				}
			}
			s.tables[table] = kept
			w.WriteHeader(http.StatusNoContent)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func matchesFilters(row map[string]any, q map[string][]string) bool {
	for key, vals := range q {
		if key == "select" || key == "limit" || key == "on_conflict" {
			continue
		}
		want, ok := strings.CutPrefix(vals[0], "eq.")
		if !ok {
			continue
		}
		got, _ := row[key].(string)
		if got != want {
			return false
		}
	}
	return true
}

func sameKeys(a, b map[string]any, keys []string) bool {
	for _, k := range keys {
		av, _ := a[k].(string)
		bv, _ := b[k].(string)
		if av != bv {
			return false
		}
	}
	return true
}

func newStack(t *testing.T, stub *postgrestStub) http.Handler {
	t.Helper()
	backend := httptest.NewServer(stub.handler())
	t.Cleanup(backend.Close)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("integration")
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 10}
	httpClient := &http.Client{Timeout: 5 * time.Second}

	store := supabase.NewClient(httpClient, backend.URL, "anon", "service", cb, cfg, logger)

	configSvc := service.NewConfigService(store, cache.New[*domain.Config](time.Minute), metrics, logger)
	authSvc := service.NewAuthService(store, configSvc, []byte("integration-secret"), time.Hour, logger)

	return handler.NewRouter(handler.Services{
		Auth:     authSvc,
		Config:   configSvc,
		Messages: service.NewMessageService(store, logger),
		Calls:    service.NewCallService(store, metrics, logger),
		Plans:    service.NewPlanService(store, metrics, logger),
		Reports:  service.NewReportService(store, store, configSvc, logger),
	}, store, metrics, logger)
}

func request(router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// TestIntegration_FullFlow signs in, reads the auto-initialized shared
// configuration, logs a call and checks it shows up in the report.
func TestIntegration_FullFlow(t *testing.T) {
	stub := newPostgrestStub(t)
	router := newStack(t, stub)

	// --- Login ---
	rec := request(router, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{
		Email:    "ahmed@denk.local",
		Password: "s3cret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var loginResp domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&loginResp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	token := loginResp.AccessToken

	// --- First config read initializes the document in the backend ---
	rec = request(router, http.MethodGet, "/v1/config", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get config: expected 200, got %d", rec.Code)
	}
	var cfg domain.Config
	if err := json.NewDecoder(rec.Body).Decode(&cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if len(cfg.MSLs) != 4 || cfg.ProductByID("panto") == nil {
		t.Fatalf("unexpected seeded config: %+v", cfg)
	}
	if len(stub.tables["app_config"]) != 1 {
		t.Fatalf("app_config rows = %d, want 1", len(stub.tables["app_config"]))
	}

	// --- Log a call ---
	rec = request(router, http.MethodPost, "/v1/calls", token, map[string]any{
		"med_rep":    "Yaman Ali",
		"product_id": "panto",
		"messages":   []string{"A. message"},
		"score":      3,
		"note":       "needs follow-up",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("log call: expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	// --- Own report reflects the call ---
	rec = request(router, http.MethodGet, "/v1/reports/msls/msl2", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var report domain.MSLReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.TotalCalls != 1 {
		t.Errorf("total calls = %d, want 1", report.TotalCalls)
	}
	if report.ScoreByContact["Yaman Ali"] != "3.0" {
		t.Errorf("score = %q, want 3.0", report.ScoreByContact["Yaman Ali"])
	}
	if len(report.KnowledgeGaps) != 1 {
		t.Errorf("gaps = %d, want 1 for a score of 3", len(report.KnowledgeGaps))
	}
}

// TestIntegration_TeamReport verifies the manager view partitions calls
// and plans fetched from the backend.
func TestIntegration_TeamReport(t *testing.T) {
	stub := newPostgrestStub(t)
	router := newStack(t, stub)

	rec := request(router, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{
		Email:    "khaldoon@denk.local",
		Password: "s3cret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
	var loginResp domain.LoginResponse
	json.NewDecoder(rec.Body).Decode(&loginResp)
	token := loginResp.AccessToken

	request(router, http.MethodPost, "/v1/calls", token, map[string]any{
		"med_rep":    "Yaman Ali",
		"product_id": "panto",
		"messages":   []string{"A. message"},
		"score":      8,
	})
	request(router, http.MethodPost, "/v1/plans", token, map[string]any{
		"date":       "2026-09-10",
		"med_rep":    "Sabreen Majid",
		"product_id": "panto",
	})

	rec = request(router, http.MethodGet, "/v1/reports/team", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("team report: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var resp domain.TeamReport
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode team report: %v", err)
	}
	if len(resp.Calls) != 4 {
		t.Errorf("call buckets = %d, want full roster of 4", len(resp.Calls))
	}
	if len(resp.Plans) != 1 || len(resp.Plans[0].Plans) != 1 {
		t.Errorf("plan buckets = %+v", resp.Plans)
	}
	if resp.Plans[0].Plans[0].MSLName != "Khaldoon Sattar" {
		t.Errorf("plan msl name = %q, want denormalized display name", resp.Plans[0].Plans[0].MSLName)
	}
	if len(resp.PlansByMSL) != 4 {
		t.Fatalf("per-msl plan buckets = %d, want full roster of 4", len(resp.PlansByMSL))
	}
	for _, b := range resp.PlansByMSL {
		if b.MSLID == "msl1" && len(b.Plans) != 1 {
			t.Errorf("msl1 plan bucket = %+v, want the logged plan", b.Plans)
		}
	}
}

// TestIntegration_MessageOverrideUpsert checks the per-MSL override
// round-trip against the conflict-key upsert.
func TestIntegration_MessageOverrideUpsert(t *testing.T) {
	stub := newPostgrestStub(t)
	router := newStack(t, stub)

	rec := request(router, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{
		Email:    "ahmed@denk.local",
		Password: "s3cret",
	})
	var loginResp domain.LoginResponse
	json.NewDecoder(rec.Body).Decode(&loginResp)
	token := loginResp.AccessToken

	for _, msgs := range [][]string{{"v1"}, {"v2a", "v2b"}} {
		rec = request(router, http.MethodPut, "/v1/msls/msl2/products/panto/messages", token, map[string]any{
			"messages": msgs,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("set override: expected 200, got %d", rec.Code)
		}
	}

	if rows := len(stub.tables["msl_messages"]); rows != 1 {
		t.Errorf("msl_messages rows = %d, want 1 (upsert, not append)", rows)
	}

	rec = request(router, http.MethodGet, "/v1/msls/msl2/products/panto/messages", token, nil)
	var resp struct {
		Messages []string `json:"messages"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Messages) != 2 || resp.Messages[0] != "v2a" {
		t.Errorf("effective = %v, want last write [v2a v2b]", resp.Messages)
	}
}
