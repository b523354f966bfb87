package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ium-app/ium-server/internal/ai"
	"github.com/ium-app/ium-server/internal/enrich"
	"github.com/ium-app/ium-server/internal/listing"
	"github.com/ium-app/ium-server/internal/match"
	"github.com/ium-app/ium-server/internal/store"
	"github.com/ium-app/ium-server/internal/vocab"
	"go.uber.org/zap"
)

type stubProber struct {
	err error
}

func (p *stubProber) Ping(context.Context) error { return p.err }
func (p *stubProber) Model() string              { return "stub-model" }

type testEnv struct {
	handler    http.Handler
	corpusPath string
}

func newTestEnv(t *testing.T, prober *stubProber) *testEnv {
	t.Helper()
	dir := t.TempDir()

	index := &vocab.Index{
		Categories:       []string{"전체", "안전"},
		EnrichCategories: []string{"안전"},
		Tags:             []string{"water", "cleaning"},
		Skills:           []string{"Water Cleaning"},
	}

	// A nil *stubProber must stay a nil interface value.
	var p ai.Prober
	if prober != nil {
		p = prober
	}

	corpusPath := filepath.Join(dir, "data.json")
	h := NewHandler(
		match.New(nil, zap.NewNop()),
		enrich.NewEngine(nil, index, zap.NewNop()),
		store.NewFileStore(filepath.Join(dir, "matches.json")),
		p,
		corpusPath,
		nil,
		zap.NewNop(),
	)
	return &testEnv{handler: h.Router(), corpusPath: corpusPath}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v\n%s", err, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	decodeInto(t, rec, &body)
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestLLMHealthUnconfigured(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/llm/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body llmHealthStatus
	decodeInto(t, rec, &body)
	if body.Configured || body.Ready {
		t.Fatalf("expected unconfigured status, got %+v", body)
	}
}

func TestLLMHealthConfiguredWithoutCall(t *testing.T) {
	env := newTestEnv(t, &stubProber{})

	rec := env.do(t, http.MethodGet, "/llm/health", nil)

	var body llmHealthStatus
	decodeInto(t, rec, &body)
	if !body.Configured || !body.Ready || body.Model != "stub-model" {
		t.Fatalf("expected ready without a probe call, got %+v", body)
	}
}

func TestLLMHealthProbeFailure(t *testing.T) {
	env := newTestEnv(t, &stubProber{err: errors.New("backend unreachable")})

	rec := env.do(t, http.MethodGet, "/llm/health?performCall=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("probe failures still report 200, got %d", rec.Code)
	}

	var body llmHealthStatus
	decodeInto(t, rec, &body)
	if body.Ready || body.Error == "" {
		t.Fatalf("expected failed probe status, got %+v", body)
	}
}

func TestCategoriesMissingCorpus(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/categories", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing corpus, got %d", rec.Code)
	}
}

func TestCategoriesDeduplicated(t *testing.T) {
	env := newTestEnv(t, nil)

	corpus := `{"needs": [], "gives": [], "categories": {
		"needsCategories": ["전체", "안전", "안전"],
		"givesCategories": ["전체"]
	}}`
	if err := os.WriteFile(env.corpusPath, []byte(corpus), 0o644); err != nil {
		t.Fatalf("writing corpus: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body categoriesResponse
	decodeInto(t, rec, &body)
	if len(body.NeedsCategories) != 2 || body.NeedsCategories[1] != "안전" {
		t.Fatalf("expected deduplicated needs categories, got %+v", body)
	}
}

func TestCategoriesUnreadableCorpus(t *testing.T) {
	env := newTestEnv(t, nil)

	if err := os.WriteFile(env.corpusPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing corpus: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/categories", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for broken corpus, got %d", rec.Code)
	}
}

func TestMatchEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	req := listing.MatchRequest{
		Needs: []listing.Listing{{ID: "n1", Title: "need", Tags: []string{"water", "clean"}}},
		Gives: []listing.Listing{
			{ID: "g1", Title: "give", Tags: []string{"water", "solar"}},
			{ID: "g2", Title: "give", Tags: []string{"wood"}},
		},
		TopK: 1,
	}

	rec := env.do(t, http.MethodPost, "/match", req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var res listing.MatchResponse
	decodeInto(t, rec, &res)

	got := res.NeedMatches["n1"]
	if len(got) != 1 || got[0].ID != "g1" || got[0].Score != 0.3333 {
		t.Fatalf("unexpected need matches: %+v", res.NeedMatches)
	}
	if _, ok := res.GiveMatches["g2"]; !ok {
		t.Fatalf("expected every give in giveMatches, got %+v", res.GiveMatches)
	}
	if len(res.CategorySuggestions) != 3 {
		t.Fatalf("expected a suggestion per listing, got %+v", res.CategorySuggestions)
	}
}

func TestMatchRejectsDuplicateIDs(t *testing.T) {
	env := newTestEnv(t, nil)

	req := listing.MatchRequest{
		Needs: []listing.Listing{{ID: "x1"}},
		Gives: []listing.Listing{{ID: "x1"}},
	}

	rec := env.do(t, http.MethodPost, "/match", req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate ids, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "duplicate") {
		t.Fatalf("expected duplicate id error, got %s", rec.Body.String())
	}
}

func TestMatchRejectsEmptyID(t *testing.T) {
	env := newTestEnv(t, nil)

	req := listing.MatchRequest{Needs: []listing.Listing{{ID: "  "}}}

	rec := env.do(t, http.MethodPost, "/match", req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty id, got %d", rec.Code)
	}
}

func TestMatchRejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/match", "{broken")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestSaveAndLoadMatches(t *testing.T) {
	env := newTestEnv(t, nil)

	res := listing.MatchResponse{
		NeedMatches: map[string][]listing.MatchResult{
			"n1": {{ID: "g1", Score: 0.8}},
		},
		GiveMatches: map[string][]listing.MatchResult{
			"g1": {{ID: "n1", Score: 0.8}},
		},
		CategorySuggestions: []listing.CategorySuggestion{},
	}

	rec := env.do(t, http.MethodPost, "/save", res)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var echoed listing.MatchResponse
	decodeInto(t, rec, &echoed)
	if len(echoed.NeedMatches["n1"]) != 1 {
		t.Fatalf("save should echo the payload, got %+v", echoed)
	}

	rec = env.do(t, http.MethodGet, "/matches", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var loaded listing.MatchResponse
	decodeInto(t, rec, &loaded)
	if loaded.NeedMatches["n1"][0].ID != "g1" {
		t.Fatalf("stored matches mismatch: %+v", loaded)
	}
}

func TestStoredMatchesNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/matches", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any save, got %d", rec.Code)
	}
}

func TestEnrichEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/enrich", listing.EnrichInput{
		Title: "water cleaning help",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var res listing.EnrichResult
	decodeInto(t, rec, &res)
	if res.SuggestedCategory == "" {
		t.Fatalf("expected a suggested category, got %+v", res)
	}
	if len(res.Tags) == 0 || res.Tags[0] != "water" {
		t.Fatalf("expected snapped tags, got %+v", res)
	}
	if res.Confidence <= 0 {
		t.Fatalf("expected positive confidence, got %v", res.Confidence)
	}
}
