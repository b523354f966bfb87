package match

import (
	"strings"

	"github.com/ium-app/ium-server/internal/listing"
)

// suggestCategories computes the naive tag-frequency category guess for every
// listing in the request, needs first. This runs regardless of whether a
// model scorer is configured.
func suggestCategories(req *listing.MatchRequest) []listing.CategorySuggestion {
	out := make([]listing.CategorySuggestion, 0, len(req.Needs)+len(req.Gives))
	for i := range req.Needs {
		out = append(out, suggestOne(&req.Needs[i]))
	}
	for i := range req.Gives {
		out = append(out, suggestOne(&req.Gives[i]))
	}
	return out
}

// suggestOne picks the most common lowercase tag as the suggested category,
// ties broken by first encounter. Confidence is the winner's share of the tag
// count.
func suggestOne(item *listing.Listing) listing.CategorySuggestion {
	counts := make(map[string]int, len(item.Tags))
	order := make([]string, 0, len(item.Tags))
	for _, t := range item.Tags {
		key := strings.ToLower(t)
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}

	suggestion := listing.CategorySuggestion{
		ID:               item.ID,
		OriginalCategory: item.Category,
	}

	best := 0
	for _, key := range order {
		if counts[key] > best {
			best = counts[key]
			suggestion.SuggestedCategory = key
		}
	}
	if best > 0 {
		total := len(item.Tags)
		if total < 1 {
			total = 1
		}
		conf := float64(best) / float64(total)
		if conf > 1 {
			conf = 1
		}
		suggestion.Confidence = conf
	}

	return suggestion
}
