// Package enrich produces normalized category/tag/skill metadata for a single
// raw listing, via the model when configured and a token-ranking heuristic
// otherwise.
package enrich

import (
	"context"

	"github.com/ium-app/ium-server/internal/ai"
	"github.com/ium-app/ium-server/internal/fuzzy"
	"github.com/ium-app/ium-server/internal/listing"
	"github.com/ium-app/ium-server/internal/vocab"
	"go.uber.org/zap"
)

const (
	maxTags         = 2
	maxSkills       = 2
	maxMatchingTags = 10

	// Enrichment snaps with laxer cutoffs than match flows: model output is
	// expected to be near the vocabulary already.
	tagCutoff      = 0.75
	matchingCutoff = 0.6
)

// Engine runs single-listing enrichment. A nil enricher means the heuristic
// pipeline handles every request.
type Engine struct {
	enricher ai.Enricher
	index    *vocab.Index
	log      *zap.Logger
}

// NewEngine creates an Engine around the vocabulary index. The enricher may
// be nil when no model is configured.
func NewEngine(enricher ai.Enricher, index *vocab.Index, log *zap.Logger) *Engine {
	if index == nil {
		index = &vocab.Index{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{enricher: enricher, index: index, log: log}
}

// Enrich tries the model path first and falls back to the heuristic pipeline
// on any model or parse failure. No partial model result is trusted.
func (e *Engine) Enrich(ctx context.Context, input *listing.EnrichInput) *listing.EnrichResult {
	if e.enricher != nil {
		enr, err := e.enricher.Enrich(ctx, input)
		if err == nil {
			return e.snapModelResult(enr)
		}
		e.log.Debug("enrichment degraded to heuristic", zap.Error(err))
	}
	return e.heuristic(input)
}

// snapModelResult forces the model's free-form output back onto the closed
// vocabularies. Values with no close pool match pass through unsnapped.
func (e *Engine) snapModelResult(enr *ai.Enrichment) *listing.EnrichResult {
	suggested := fuzzy.Snap(enr.SuggestedCategory, e.index.EnrichCategories, fuzzy.DefaultCutoff)
	tags := fuzzy.SnapList(enr.Tags, e.index.Tags, fuzzy.SnapOptions{
		Lower: true, Cutoff: tagCutoff, MaxItems: maxTags,
	})
	skills := fuzzy.SnapList(enr.Skills, e.index.Skills, fuzzy.SnapOptions{
		TitleCase: true, Cutoff: tagCutoff, MaxItems: maxSkills,
	})

	matchingSource := enr.MatchingTags
	if len(matchingSource) == 0 {
		matchingSource = tags
	}
	matching := fuzzy.SnapList(matchingSource, e.index.Tags, fuzzy.SnapOptions{
		Lower: true, Cutoff: tagCutoff, MaxItems: maxMatchingTags,
	})

	suggested = e.defaultCategory(suggested)

	return &listing.EnrichResult{
		SuggestedCategory: suggested,
		Tags:              tags,
		Skills:            skills,
		MatchingTags:      matching,
		Confidence:        ai.Clamp01(enr.Confidence),
	}
}

// defaultCategory guarantees a non-empty category whenever the
// enrich-eligible pool is non-empty.
func (e *Engine) defaultCategory(suggested string) string {
	if suggested == "" && len(e.index.EnrichCategories) > 0 {
		return e.index.EnrichCategories[0]
	}
	return suggested
}
