// Package match shortlists, scores and ranks need/give pairs.
package match

import (
	"context"
	"math"
	"sort"

	"github.com/ium-app/ium-server/internal/ai"
	"github.com/ium-app/ium-server/internal/listing"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultTopK is the result breadth used when a request does not specify one.
const DefaultTopK = 5

// shortlistFactor widens the prefilter shortlist beyond topK so the scorer
// can re-rank a broader candidate set.
const shortlistFactor = 3

// Matcher runs the prefilter/score/rank pipeline for a match request. A nil
// scorer means every pair is scored by the tag-overlap heuristic.
type Matcher struct {
	scorer ai.PairScorer
	log    *zap.Logger
}

// New creates a Matcher. The scorer may be nil when no model is configured.
func New(scorer ai.PairScorer, log *zap.Logger) *Matcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Matcher{scorer: scorer, log: log}
}

type candidate struct {
	give  *listing.Listing
	score float64
}

// Match computes ranked matches both directions plus naive category
// suggestions for every listing in the request. Needs are processed
// sequentially; pairs within one need are scored concurrently. A failed model
// call degrades that single pair to the heuristic score.
func (m *Matcher) Match(ctx context.Context, req *listing.MatchRequest) *listing.MatchResponse {
	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	needMatches := make(map[string][]listing.MatchResult, len(req.Needs))
	giveMatches := make(map[string][]listing.MatchResult, len(req.Gives))
	for i := range req.Gives {
		giveMatches[req.Gives[i].ID] = []listing.MatchResult{}
	}

	for i := range req.Needs {
		need := &req.Needs[i]
		shortlist := m.prefilter(need, req.Gives, topK)

		scores := make([]float64, len(shortlist))
		g, gctx := errgroup.WithContext(ctx)
		for j := range shortlist {
			j := j
			g.Go(func() error {
				scores[j] = m.scorePair(gctx, need, shortlist[j].give)
				return nil
			})
		}
		// Workers never return errors; degraded pairs fall back silently.
		_ = g.Wait()

		ranked := make([]listing.MatchResult, 0, len(shortlist))
		for j, c := range shortlist {
			ranked = append(ranked, listing.MatchResult{ID: c.give.ID, Score: scores[j]})
			giveMatches[c.give.ID] = append(giveMatches[c.give.ID], listing.MatchResult{ID: need.ID, Score: scores[j]})
		}
		sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Score > ranked[b].Score })
		if len(ranked) > topK {
			ranked = ranked[:topK]
		}
		needMatches[need.ID] = ranked
	}

	return &listing.MatchResponse{
		NeedMatches:         needMatches,
		GiveMatches:         giveMatches,
		CategorySuggestions: suggestCategories(req),
	}
}

// prefilter scores every give by gathered-tag overlap and keeps the top
// max(1, 3*topK) candidates. Ties retain the original give order.
func (m *Matcher) prefilter(need *listing.Listing, gives []listing.Listing, topK int) []candidate {
	needTags := need.GatherTags()
	scored := make([]candidate, 0, len(gives))
	for i := range gives {
		g := &gives[i]
		scored = append(scored, candidate{give: g, score: Jaccard(needTags, g.GatherTags())})
	}
	sort.SliceStable(scored, func(a, b int) bool { return scored[a].score > scored[b].score })

	limit := topK * shortlistFactor
	if limit < 1 {
		limit = 1
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}

	m.log.Debug("prefilter shortlist",
		zap.String("need_id", need.ID),
		zap.Int("initial", len(gives)),
		zap.Int("left", len(scored)),
	)

	return scored
}

// scorePair returns the model's score for the pair, or the heuristic
// fallback when no scorer is configured or the call/parse fails.
func (m *Matcher) scorePair(ctx context.Context, need, give *listing.Listing) float64 {
	if m.scorer != nil {
		assessment, err := m.scorer.ScorePair(ctx, need, give)
		if err == nil {
			return ai.Clamp01(assessment.Score)
		}
		m.log.Debug("pair score degraded to heuristic",
			zap.String("need_id", need.ID),
			zap.String("give_id", give.ID),
			zap.Error(err),
		)
	}
	return FallbackScore(need, give)
}

// FallbackScore is the heuristic pair score: the broader gathered-tag overlap
// competes with the raw-tag overlap marked down by 0.8, whichever product is
// larger. Rounded to 4 decimals.
func FallbackScore(need, give *listing.Listing) float64 {
	score := math.Max(
		Jaccard(need.GatherTags(), give.GatherTags()),
		Jaccard(need.Tags, give.Tags)*0.8,
	)
	return round4(score)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
