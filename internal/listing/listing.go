// Package listing defines the need/give card model shared by the matching
// and enrichment pipelines.
package listing

// Listing is a single need or give card. IDs are caller-supplied and must be
// unique within a request. The llm* fields carry metadata produced by a
// previous enrichment pass and are optional.
type Listing struct {
	ID           string   `json:"id"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	Category     string   `json:"category,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Skills       []string `json:"skills"`
	Duration     string   `json:"duration,omitempty"`
	Contact      string   `json:"contact,omitempty"`
	Tags         []string `json:"tags"`
	MatchingTags []string `json:"matchingTags"`
	LLMCategory  string   `json:"llmCategory,omitempty"`
	LLMTags      []string `json:"llmTags,omitempty"`
}

// GatherTags combines all tag signals of a listing: heuristic matching tags,
// user tags and LLM-derived tags, deduplicated in first-seen order.
func (l *Listing) GatherTags() []string {
	out := make([]string, 0, len(l.MatchingTags)+len(l.Tags)+len(l.LLMTags))
	seen := make(map[string]struct{})
	for _, arr := range [][]string{l.MatchingTags, l.Tags, l.LLMTags} {
		for _, t := range arr {
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// MatchResult is a single scored counterpart for a listing.
type MatchResult struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// CategorySuggestion is the naive tag-frequency category guess computed for
// every listing of a match request.
type CategorySuggestion struct {
	ID                string  `json:"id"`
	OriginalCategory  string  `json:"originalCategory,omitempty"`
	SuggestedCategory string  `json:"suggestedCategory,omitempty"`
	Confidence        float64 `json:"confidence"`
}

// MatchRequest carries the two collections to match and the desired result
// breadth per need.
type MatchRequest struct {
	Needs []Listing `json:"needs"`
	Gives []Listing `json:"gives"`
	TopK  int       `json:"top_k"`
}

// MatchResponse maps each need to its ranked top-K gives, each give to the
// needs that matched it (unordered, not truncated), plus a category
// suggestion for every listing in the request.
type MatchResponse struct {
	NeedMatches         map[string][]MatchResult `json:"needMatches"`
	GiveMatches         map[string][]MatchResult `json:"giveMatches"`
	CategorySuggestions []CategorySuggestion     `json:"categorySuggestions"`
}

// EnrichInput is the raw free-text material for a single-listing enrichment.
type EnrichInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	Tags        []string `json:"tags"`
	Category    string   `json:"category,omitempty"`
}

// EnrichResult is the normalized metadata produced by the enrichment engine.
// The suggested category is constrained to the enrich-eligible pool whenever
// that pool is non-empty.
type EnrichResult struct {
	SuggestedCategory string   `json:"suggestedCategory,omitempty"`
	Tags              []string `json:"tags"`
	Skills            []string `json:"skills"`
	MatchingTags      []string `json:"matchingTags"`
	Confidence        float64  `json:"confidence"`
}
