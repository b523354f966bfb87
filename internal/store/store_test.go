package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ium-app/ium-server/internal/listing"
)

func testResponse() *listing.MatchResponse {
	return &listing.MatchResponse{
		NeedMatches: map[string][]listing.MatchResult{
			"n1": {{ID: "g1", Score: 0.3333}},
		},
		GiveMatches: map[string][]listing.MatchResult{
			"g1": {{ID: "n1", Score: 0.3333}},
			"g2": {},
		},
		CategorySuggestions: []listing.CategorySuggestion{
			{ID: "n1", OriginalCategory: "전체", SuggestedCategory: "water", Confidence: 0.5},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "matches.json"))

	saved, err := s.Save(testResponse())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected a record id")
	}
	if saved.SavedAt.IsZero() {
		t.Fatal("expected a save timestamp")
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.ID != saved.ID {
		t.Fatalf("record id changed: %q vs %q", loaded.ID, saved.ID)
	}
	if !reflect.DeepEqual(loaded.Response, testResponse()) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", loaded.Response, testResponse())
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	if _, err := s.Load(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "matches.json"))

	first := testResponse()
	if _, err := s.Save(first); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	second := &listing.MatchResponse{
		NeedMatches:         map[string][]listing.MatchResult{},
		GiveMatches:         map[string][]listing.MatchResult{},
		CategorySuggestions: []listing.CategorySuggestion{},
	}
	if _, err := s.Save(second); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Response.NeedMatches) != 0 {
		t.Fatalf("expected the second record, got %+v", loaded.Response)
	}
}

func TestSaveNil(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "matches.json"))
	if _, err := s.Save(nil); err == nil {
		t.Fatal("expected an error for nil response")
	}
}
