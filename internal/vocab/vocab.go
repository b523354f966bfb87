// Package vocab builds the closed category/tag/skill vocabularies that the
// matching and enrichment pipelines snap free-form values onto.
package vocab

import (
	"strings"

	"github.com/ium-app/ium-server/internal/listing"
)

// catchAllNames are sentinel category spellings excluded from the
// enrich-eligible pool.
var catchAllNames = map[string]struct{}{
	"전체":  {},
	"all": {},
}

// Index is an immutable snapshot of the corpus vocabularies. Construct a new
// Index to pick up corpus changes; instances are never mutated in place.
type Index struct {
	// Categories preserves first-seen order across needs and gives.
	Categories []string
	// EnrichCategories excludes catch-all sentinels. Falls back to the full
	// category pool when filtering would empty it.
	EnrichCategories []string
	// Tags are lowercased, deduplicated, first-seen order.
	Tags []string
	// Skills keep their original casing, deduplicated case-insensitively.
	Skills []string
}

// NewIndex derives the vocabulary pools from a corpus. A nil corpus yields an
// empty index.
func NewIndex(c *Corpus) *Index {
	idx := &Index{}
	if c == nil {
		return idx
	}

	seenCats := make(map[string]struct{})
	for _, name := range append(append([]string{}, c.Categories.NeedsCategories...), c.Categories.GivesCategories...) {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, ok := seenCats[name]; ok {
			continue
		}
		seenCats[name] = struct{}{}
		idx.Categories = append(idx.Categories, name)
	}

	for _, name := range idx.Categories {
		if !IsCatchAll(name) {
			idx.EnrichCategories = append(idx.EnrichCategories, name)
		}
	}
	if len(idx.EnrichCategories) == 0 {
		idx.EnrichCategories = idx.Categories
	}

	seenTags := make(map[string]struct{})
	seenSkills := make(map[string]struct{})
	for _, coll := range [][]listing.Listing{c.Needs, c.Gives} {
		for _, item := range coll {
			for _, t := range item.Tags {
				tt := strings.ToLower(strings.TrimSpace(t))
				if tt == "" {
					continue
				}
				if _, ok := seenTags[tt]; ok {
					continue
				}
				seenTags[tt] = struct{}{}
				idx.Tags = append(idx.Tags, tt)
			}
			for _, s := range item.Skills {
				ss := strings.TrimSpace(s)
				if ss == "" {
					continue
				}
				key := strings.ToLower(ss)
				if _, ok := seenSkills[key]; ok {
					continue
				}
				seenSkills[key] = struct{}{}
				idx.Skills = append(idx.Skills, ss)
			}
		}
	}

	return idx
}

// IsCatchAll reports whether the category name is a catch-all sentinel.
func IsCatchAll(name string) bool {
	_, ok := catchAllNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}
