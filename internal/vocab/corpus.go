package vocab

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ium-app/ium-server/internal/listing"
)

// CategorySets mirrors the categories block of the aggregated corpus file.
type CategorySets struct {
	NeedsCategories []string `json:"needsCategories"`
	GivesCategories []string `json:"givesCategories"`
}

// Corpus is the read-only collection of existing listings the vocabulary is
// derived from.
type Corpus struct {
	Needs      []listing.Listing `json:"needs"`
	Gives      []listing.Listing `json:"gives"`
	Categories CategorySets      `json:"categories"`
}

// LoadCorpus reads the aggregated corpus JSON file. Callers are expected to
// degrade to an empty corpus when the file is missing or unparsable; the
// vocabulary then stays minimal instead of failing the process.
func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file %q: %w", path, err)
	}

	var c Corpus
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing corpus file %q: %w", path, err)
	}

	return &c, nil
}
