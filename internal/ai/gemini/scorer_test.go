package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	aipkg "github.com/ium-app/ium-server/internal/ai"
	"github.com/ium-app/ium-server/internal/listing"
	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testPair() (*listing.Listing, *listing.Listing) {
	need := &listing.Listing{
		ID:     "n1",
		Title:  "유기견 임시 보호처 찾기",
		Tags:   []string{"반려동물", "보호소"},
		Skills: []string{"돌봄"},
	}
	give := &listing.Listing{
		ID:     "g1",
		Title:  "주말 반려동물 돌봄",
		Tags:   []string{"반려동물", "산책"},
		Skills: []string{"돌봄", "훈련"},
	}
	return need, give
}

func TestScorerScorePair(t *testing.T) {
	stub := &stubGenerator{response: `{"score": 0.9, "suggested_category": "안전", "confidence": 0.8}`}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	need, give := testPair()
	assessment, err := scorer.ScorePair(context.Background(), need, give)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if assessment.Score != 0.9 {
		t.Fatalf("expected score 0.9, got %v", assessment.Score)
	}
	if assessment.SuggestedCategory != "안전" {
		t.Fatalf("unexpected category: %q", assessment.SuggestedCategory)
	}
	if assessment.Confidence != 0.8 {
		t.Fatalf("unexpected confidence: %v", assessment.Confidence)
	}

	if !strings.Contains(stub.lastPrompt, need.Title) || !strings.Contains(stub.lastPrompt, give.Title) {
		t.Fatalf("prompt should embed both titles: %s", stub.lastPrompt)
	}
}

func TestScorerClampsScore(t *testing.T) {
	stub := &stubGenerator{response: `{"score": 1.7, "confidence": -2}`}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	need, give := testPair()
	assessment, err := scorer.ScorePair(context.Background(), need, give)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assessment.Score != 1 {
		t.Fatalf("expected score clamped to 1, got %v", assessment.Score)
	}
	if assessment.Confidence != 0 {
		t.Fatalf("expected confidence clamped to 0, got %v", assessment.Confidence)
	}
}

func TestScorerJSONInProse(t *testing.T) {
	stub := &stubGenerator{response: "Here you go:\n{\"score\": 0.4}\nCheers!"}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	need, give := testPair()
	assessment, err := scorer.ScorePair(context.Background(), need, give)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assessment.Score != 0.4 {
		t.Fatalf("expected score 0.4, got %v", assessment.Score)
	}
}

func TestScorerUnparsableResponse(t *testing.T) {
	stub := &stubGenerator{response: "I cannot answer that."}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	need, give := testPair()
	if _, err := scorer.ScorePair(context.Background(), need, give); !errors.Is(err, aipkg.ErrUnparsable) {
		t.Fatalf("expected ErrUnparsable, got %v", err)
	}
}

func TestScorerGeneratorError(t *testing.T) {
	stub := &stubGenerator{err: errors.New("backend down")}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	need, give := testPair()
	if _, err := scorer.ScorePair(context.Background(), need, give); err == nil {
		t.Fatal("expected an error")
	}
}

func TestScorerNilListings(t *testing.T) {
	scorer := NewScorer(&stubGenerator{}, zap.NewNop(), 0)
	if _, err := scorer.ScorePair(context.Background(), nil, &listing.Listing{}); err == nil {
		t.Fatal("expected error for nil need")
	}
	if _, err := scorer.ScorePair(context.Background(), &listing.Listing{}, nil); err == nil {
		t.Fatal("expected error for nil give")
	}
}
