package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/ium-app/ium-server/internal/ai"
	"github.com/ium-app/ium-server/internal/listing"
	"github.com/ium-app/ium-server/internal/logger"
	"github.com/ium-app/ium-server/internal/vocab"
	"go.uber.org/zap"
)

//go:embed prompt_enrich.md
var enrichPromptTemplate string

// vocabCap bounds how many tag/skill vocabulary entries are embedded into the
// enrichment prompt.
const vocabCap = 120

// Enricher asks the model for normalized listing metadata, with the closed
// category pool and capped tag/skill vocabularies baked into the prompt.
type Enricher struct {
	generator contentGenerator
	index     *vocab.Index
	log       *zap.Logger
	maxLogLen int
}

// NewEnricher builds an enricher around a content generator and a vocabulary
// index.
func NewEnricher(generator contentGenerator, index *vocab.Index, log *zap.Logger, maxLogLength int) *Enricher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Enricher{
		generator: generator,
		index:     index,
		log:       log,
		maxLogLen: maxLogLength,
	}
}

// Enrich implements ai.Enricher. Any parse or type failure is returned to the
// caller, which falls back to the heuristic pipeline entirely; no partial
// model result is trusted.
func (e *Enricher) Enrich(ctx context.Context, input *listing.EnrichInput) (*ai.Enrichment, error) {
	if input == nil {
		return nil, fmt.Errorf("enrich input is required")
	}

	prompt, err := e.buildPrompt(input)
	if err != nil {
		return nil, err
	}

	e.log.Debug("gemini enrich request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	e.log.Debug("gemini enrich response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
	)

	data, err := ai.ParseObject(raw)
	if err != nil {
		return nil, err
	}

	var payload struct {
		SuggestedCategory string   `json:"suggested_category"`
		Tags              []string `json:"tags"`
		Skills            []string `json:"skills"`
		MatchingTags      []string `json:"matching_tags"`
		Confidence        float64  `json:"confidence"`
	}
	if err := ai.DecodeLoose(data, &payload); err != nil {
		return nil, err
	}

	tags := ai.CleanStrings(payload.Tags)
	for i, t := range tags {
		tags[i] = strings.ToLower(t)
	}
	matching := ai.CleanStrings(payload.MatchingTags)
	for i, m := range matching {
		matching[i] = strings.ToLower(m)
	}

	return &ai.Enrichment{
		SuggestedCategory: strings.TrimSpace(payload.SuggestedCategory),
		Tags:              tags,
		Skills:            ai.CleanStrings(payload.Skills),
		MatchingTags:      matching,
		Confidence:        ai.Clamp01(payload.Confidence),
		Raw:               raw,
	}, nil
}

func (e *Enricher) buildPrompt(input *listing.EnrichInput) (string, error) {
	template := enrichPromptTemplate
	if strings.TrimSpace(template) == "" {
		return "", fmt.Errorf("enrich prompt template is empty")
	}

	idx := e.index
	if idx == nil {
		idx = &vocab.Index{}
	}

	catPool, err := marshalPool(idx.EnrichCategories)
	if err != nil {
		return "", err
	}
	tagVocab, err := marshalPool(capPool(idx.Tags, vocabCap))
	if err != nil {
		return "", err
	}
	skillVocab, err := marshalPool(capPool(idx.Skills, vocabCap))
	if err != nil {
		return "", err
	}

	replacer := strings.NewReplacer(
		"{{CATEGORY_POOL}}", catPool,
		"{{TAG_VOCAB}}", tagVocab,
		"{{SKILL_VOCAB}}", skillVocab,
		"{{TITLE}}", input.Title,
		"{{DESC}}", input.Description,
		"{{SKILLS}}", strings.Join(input.Skills, ", "),
		"{{TAGS}}", strings.Join(input.Tags, ", "),
		"{{CATEGORY}}", input.Category,
	)
	return replacer.Replace(template), nil
}

func capPool(pool []string, limit int) []string {
	if len(pool) <= limit {
		return pool
	}
	return pool[:limit]
}

func marshalPool(pool []string) (string, error) {
	if pool == nil {
		pool = []string{}
	}
	data, err := json.Marshal(pool)
	if err != nil {
		return "", fmt.Errorf("marshal vocabulary pool: %w", err)
	}
	return string(data), nil
}
