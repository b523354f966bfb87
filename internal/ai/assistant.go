// Package ai defines the model-assisted scoring and enrichment boundary. The
// model is treated as an untrusted text source: every response goes through
// JSON extraction and a weakly typed decode before anything downstream sees it.
package ai

import (
	"context"

	"github.com/ium-app/ium-server/internal/listing"
)

// PairAssessment is the model's judgement of a single (need, give) pair.
type PairAssessment struct {
	Score             float64
	SuggestedCategory string
	Confidence        float64
	Raw               string
}

// Enrichment is the model's normalized metadata for one raw listing. Values
// are snapped onto the vocabulary pools by the enrichment engine afterwards.
type Enrichment struct {
	SuggestedCategory string
	Tags              []string
	Skills            []string
	MatchingTags      []string
	Confidence        float64
	Raw               string
}

// PairScorer scores need/give pairs.
type PairScorer interface {
	ScorePair(ctx context.Context, need, give *listing.Listing) (*PairAssessment, error)
}

// Enricher produces normalized metadata for a raw listing.
type Enricher interface {
	Enrich(ctx context.Context, input *listing.EnrichInput) (*Enrichment, error)
}

// Prober answers whether the model backend is reachable. Probe calls must be
// bounded by the caller's context deadline.
type Prober interface {
	Ping(ctx context.Context) error
	Model() string
}
