package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/ium-app/ium-server/internal/ai"
	"github.com/ium-app/ium-server/internal/listing"
	"github.com/ium-app/ium-server/internal/logger"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt_score.md
var scorePromptTemplate string

const defaultMaxLogLength = 200

// Scorer asks the model to judge a single (need, give) pair. Responses are
// free text; the score is pulled out of the first JSON object found.
type Scorer struct {
	generator contentGenerator
	log       *zap.Logger
	maxLogLen int
}

// NewScorer builds a pair scorer around a content generator.
func NewScorer(generator contentGenerator, log *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Scorer{
		generator: generator,
		log:       log,
		maxLogLen: maxLogLength,
	}
}

// ScorePair implements ai.PairScorer.
func (s *Scorer) ScorePair(ctx context.Context, need, give *listing.Listing) (*ai.PairAssessment, error) {
	if need == nil {
		return nil, fmt.Errorf("need listing is required")
	}
	if give == nil {
		return nil, fmt.Errorf("give listing is required")
	}

	prompt := buildScorePrompt(need, give)

	s.log.Debug("gemini pair score request",
		zap.String("need_id", need.ID),
		zap.String("give_id", give.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	s.log.Debug("gemini pair score response",
		zap.String("need_id", need.ID),
		zap.String("give_id", give.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, s.maxLogLen)),
	)

	data, err := ai.ParseObject(raw)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Score             float64 `json:"score"`
		SuggestedCategory string  `json:"suggested_category"`
		Confidence        float64 `json:"confidence"`
	}
	if err := ai.DecodeLoose(data, &payload); err != nil {
		return nil, err
	}

	return &ai.PairAssessment{
		Score:             ai.Clamp01(payload.Score),
		SuggestedCategory: strings.TrimSpace(payload.SuggestedCategory),
		Confidence:        ai.Clamp01(payload.Confidence),
		Raw:               raw,
	}, nil
}

func buildScorePrompt(need, give *listing.Listing) string {
	template := scorePromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "NEED: {{NEED_TITLE}}\nGIVE: {{GIVE_TITLE}}\n\nJSON Response:"
	}

	replacer := strings.NewReplacer(
		"{{NEED_TITLE}}", need.Title,
		"{{NEED_DESC}}", need.Description,
		"{{NEED_TAGS}}", strings.Join(need.Tags, ", "),
		"{{NEED_SKILLS}}", strings.Join(need.Skills, ", "),
		"{{GIVE_TITLE}}", give.Title,
		"{{GIVE_DESC}}", give.Description,
		"{{GIVE_TAGS}}", strings.Join(give.Tags, ", "),
		"{{GIVE_SKILLS}}", strings.Join(give.Skills, ", "),
	)
	return replacer.Replace(template)
}
