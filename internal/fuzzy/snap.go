package fuzzy

import "strings"

// DefaultCutoff is the similarity threshold used by match flows. Enrichment
// flows pass lower cutoffs for tag and matching-token fields.
const DefaultCutoff = 0.8

// Snap maps a candidate value onto the closest pool entry, compared
// case-insensitively. When no pool entry clears the cutoff the original value
// is returned unchanged, never emptied and never forced into the pool.
func Snap(value string, pool []string, cutoff float64) string {
	val := strings.TrimSpace(value)
	if val == "" || len(pool) == 0 {
		return value
	}

	// Lowercased key -> original pool casing; first entry wins.
	keys := make([]string, 0, len(pool))
	originals := make(map[string]string, len(pool))
	for _, p := range pool {
		k := strings.ToLower(p)
		if _, ok := originals[k]; ok {
			continue
		}
		originals[k] = p
		keys = append(keys, k)
	}

	best, score := Closest(strings.ToLower(val), keys)
	if score >= cutoff {
		return originals[best]
	}
	return value
}

// SnapOptions controls SnapList post-processing.
type SnapOptions struct {
	Lower     bool
	TitleCase bool
	Cutoff    float64
	MaxItems  int
}

// SnapList snaps each value in order, applies the requested casing,
// deduplicates case-insensitively and truncates to MaxItems.
func SnapList(values []string, pool []string, opts SnapOptions) []string {
	cutoff := opts.Cutoff
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, len(values))
	for _, v := range values {
		vv := strings.TrimSpace(v)
		if vv == "" {
			continue
		}
		res := Snap(vv, pool, cutoff)
		if res == "" {
			res = vv
		}
		if opts.Lower {
			res = strings.ToLower(res)
		}
		if opts.TitleCase {
			res = TitleCase(res)
		}
		key := strings.ToLower(res)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, res)
		if opts.MaxItems > 0 && len(out) >= opts.MaxItems {
			break
		}
	}
	return out
}

// TitleCase capitalizes the first letter of each space-separated word and
// lowercases the rest.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if len(runes) > 0 {
			runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
