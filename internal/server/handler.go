package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ium-app/ium-server/internal/ai"
	"github.com/ium-app/ium-server/internal/enrich"
	"github.com/ium-app/ium-server/internal/listing"
	"github.com/ium-app/ium-server/internal/match"
	"github.com/ium-app/ium-server/internal/store"
	"github.com/ium-app/ium-server/internal/vocab"
	"go.uber.org/zap"
)

// llmProbeTimeout bounds the /llm/health connectivity probe. Scoring and
// enrichment calls are not bounded here; they rely on the client transport.
const llmProbeTimeout = 8 * time.Second

// Handler holds dependencies for the HTTP handlers.
type Handler struct {
	matcher    *match.Matcher
	enricher   *enrich.Engine
	matchStore *store.FileStore
	prober     ai.Prober
	corpusPath string
	cors       []string
	logger     *zap.Logger
}

// NewHandler creates the API handler. The prober may be nil when no model is
// configured.
func NewHandler(
	matcher *match.Matcher,
	enricher *enrich.Engine,
	matchStore *store.FileStore,
	prober ai.Prober,
	corpusPath string,
	corsOrigins []string,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		matcher:    matcher,
		enricher:   enricher,
		matchStore: matchStore,
		prober:     prober,
		corpusPath: corpusPath,
		cors:       corsOrigins,
		logger:     logger,
	}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", h.health)
	r.Get("/llm/health", h.llmHealth)
	r.Get("/categories", h.categories)
	r.Get("/matches", h.storedMatches)
	r.Post("/match", h.match)
	r.Post("/save", h.saveMatches)
	r.Post("/enrich", h.enrich)

	return r
}

// allowedOrigins resolves the CORS list; empty or wildcard configuration
// allows any origin.
func (h *Handler) allowedOrigins() []string {
	if len(h.cors) == 0 {
		return []string{"*"}
	}
	for _, o := range h.cors {
		if strings.TrimSpace(o) == "*" {
			return []string{"*"}
		}
	}
	return h.cors
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type llmHealthStatus struct {
	Configured bool   `json:"configured"`
	Model      string `json:"model,omitempty"`
	Ready      bool   `json:"ready"`
	Error      string `json:"error,omitempty"`
}

// llmHealth reports model availability. With performCall=true a tiny
// completion is issued under a fixed timeout; otherwise a configured backend
// is assumed ready without spending tokens.
func (h *Handler) llmHealth(w http.ResponseWriter, r *http.Request) {
	status := llmHealthStatus{Configured: h.prober != nil}
	if h.prober == nil {
		writeJSON(w, http.StatusOK, status)
		return
	}

	status.Model = h.prober.Model()
	if !strings.EqualFold(r.URL.Query().Get("performCall"), "true") {
		status.Ready = true
		writeJSON(w, http.StatusOK, status)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), llmProbeTimeout)
	defer cancel()

	if err := h.prober.Ping(ctx); err != nil {
		status.Error = err.Error()
	} else {
		status.Ready = true
	}
	writeJSON(w, http.StatusOK, status)
}

type categoriesResponse struct {
	NeedsCategories []string `json:"needsCategories"`
	GivesCategories []string `json:"givesCategories"`
}

// categories reads the corpus file fresh on every call so a corpus update is
// visible without a restart.
func (h *Handler) categories(w http.ResponseWriter, _ *http.Request) {
	corpus, err := vocab.LoadCorpus(h.corpusPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "corpus file not found")
			return
		}
		h.logger.Error("loading corpus", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "corpus file is unreadable")
		return
	}

	writeJSON(w, http.StatusOK, categoriesResponse{
		NeedsCategories: dedupe(corpus.Categories.NeedsCategories),
		GivesCategories: dedupe(corpus.Categories.GivesCategories),
	})
}

func (h *Handler) match(w http.ResponseWriter, r *http.Request) {
	var req listing.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid match request: "+err.Error())
		return
	}
	if err := validateRequest(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := h.matcher.Match(r.Context(), &req)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) saveMatches(w http.ResponseWriter, r *http.Request) {
	var res listing.MatchResponse
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		writeError(w, http.StatusBadRequest, "invalid match response: "+err.Error())
		return
	}

	rec, err := h.matchStore.Save(&res)
	if err != nil {
		h.logger.Error("saving matches", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "saving matches failed")
		return
	}

	h.logger.Info("saved match response",
		zap.String("record_id", rec.ID),
		zap.Int("needs", len(res.NeedMatches)),
		zap.Int("gives", len(res.GiveMatches)),
	)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) storedMatches(w http.ResponseWriter, _ *http.Request) {
	rec, err := h.matchStore.Load()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no stored matches")
			return
		}
		h.logger.Error("loading matches", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "loading matches failed")
		return
	}
	writeJSON(w, http.StatusOK, rec.Response)
}

func (h *Handler) enrich(w http.ResponseWriter, r *http.Request) {
	var input listing.EnrichInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid enrich input: "+err.Error())
		return
	}

	res := h.enricher.Enrich(r.Context(), &input)
	writeJSON(w, http.StatusOK, res)
}

// validateRequest rejects listings with missing or duplicate ids before any
// scoring work begins.
func validateRequest(req *listing.MatchRequest) error {
	seen := make(map[string]struct{}, len(req.Needs)+len(req.Gives))
	for _, coll := range [][]listing.Listing{req.Needs, req.Gives} {
		for i := range coll {
			id := coll[i].ID
			if strings.TrimSpace(id) == "" {
				return errors.New("every listing needs a non-empty id")
			}
			if _, ok := seen[id]; ok {
				return errors.New("duplicate listing id: " + id)
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
