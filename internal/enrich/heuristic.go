package enrich

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ium-app/ium-server/internal/fuzzy"
	"github.com/ium-app/ium-server/internal/listing"
	"github.com/ium-app/ium-server/internal/textnorm"
)

// Position bonuses added on top of raw token frequency. Title terms dominate
// the ranking.
const (
	titleBonus = 2.5
	descBonus  = 1.0
	skillBonus = 1.5
	tagBonus   = 1.5
)

// keywordCategories maps trigger tokens to category candidates used when no
// pool category overlaps the ranked tokens.
var keywordCategories = []struct {
	keys       []string
	candidates []string
}{
	{
		keys:       []string{"유기견", "반려", "동물", "보호소"},
		candidates: []string{"안전", "치안/범죄예방", "공공서비스"},
	},
	{
		keys:       []string{"cctv", "지오펜싱", "목격", "제보"},
		candidates: []string{"치안/범죄예방", "안전"},
	},
}

// heuristic is the model-free enrichment pipeline: tokenize, strip stopwords
// and suffixes, rank tokens by frequency plus position bonuses, derive
// category/skills/tags, then snap everything onto the vocabularies.
func (e *Engine) heuristic(input *listing.EnrichInput) *listing.EnrichResult {
	titleTokens := cleanTokens(textnorm.Tokenize(input.Title))
	descTokens := cleanTokens(textnorm.Tokenize(input.Description))
	skillTokens := cleanTokens(textnorm.TokenizeAll(input.Skills))
	tagTokens := cleanTokens(textnorm.TokenizeAll(input.Tags))

	var all []string
	all = append(all, titleTokens...)
	all = append(all, descTokens...)
	all = append(all, skillTokens...)
	all = append(all, tagTokens...)

	ranked := rankTokens(all, titleTokens, descTokens, skillTokens, tagTokens)

	suggested := e.suggestCategory(ranked)

	skillPhrases := topNgrams(append(append([]string{}, titleTokens...), descTokens...), 10)
	skillsRaw := make([]string, 0, len(skillPhrases))
	for _, p := range skillPhrases {
		skillsRaw = append(skillsRaw, fuzzy.TitleCase(p))
	}

	tagsRaw := longTokens(ranked, 10)
	matchingRaw := longTokens(ranked, 15)

	suggested = fuzzy.Snap(suggested, e.index.EnrichCategories, fuzzy.DefaultCutoff)
	tags := fuzzy.SnapList(tagsRaw, e.index.Tags, fuzzy.SnapOptions{
		Lower: true, Cutoff: tagCutoff, MaxItems: maxTags,
	})
	skills := fuzzy.SnapList(skillsRaw, e.index.Skills, fuzzy.SnapOptions{
		TitleCase: true, Cutoff: tagCutoff, MaxItems: maxSkills,
	})
	matching := fuzzy.SnapList(matchingRaw, e.index.Tags, fuzzy.SnapOptions{
		Lower: true, Cutoff: matchingCutoff, MaxItems: maxMatchingTags,
	})

	suggested = e.defaultCategory(suggested)

	conf := 0.0
	if suggested != "" {
		conf += 0.4
	}
	conf += 0.3 * math.Min(1, float64(len(tags))/float64(maxTags))
	conf += 0.2 * math.Min(1, float64(len(skills))/float64(maxSkills))
	conf += 0.1 * math.Min(1, float64(len(matching))/float64(maxMatchingTags))
	conf = math.Round(math.Min(1, math.Max(0, conf))*100) / 100

	return &listing.EnrichResult{
		SuggestedCategory: suggested,
		Tags:              tags,
		Skills:            skills,
		MatchingTags:      matching,
		Confidence:        conf,
	}
}

// cleanTokens drops stopwords and trims grammatical suffixes.
func cleanTokens(tokens []string) []string {
	return textnorm.SimplifyAll(textnorm.StripStopwords(tokens))
}

// rankTokens orders unique tokens by frequency plus position bonuses,
// descending. Ties keep first-seen order.
func rankTokens(all, titleTokens, descTokens, skillTokens, tagTokens []string) []string {
	counts := make(map[string]float64, len(all))
	order := make([]string, 0, len(all))
	for _, t := range all {
		if _, ok := counts[t]; !ok {
			order = append(order, t)
		}
		counts[t]++
	}

	inTitle := toSet(titleTokens)
	inDesc := toSet(descTokens)
	inSkill := toSet(skillTokens)
	inTag := toSet(tagTokens)

	weights := make(map[string]float64, len(counts))
	for t, c := range counts {
		w := c
		if _, ok := inTitle[t]; ok {
			w += titleBonus
		}
		if _, ok := inDesc[t]; ok {
			w += descBonus
		}
		if _, ok := inSkill[t]; ok {
			w += skillBonus
		}
		if _, ok := inTag[t]; ok {
			w += tagBonus
		}
		weights[t] = w
	}

	sort.SliceStable(order, func(a, b int) bool { return weights[order[a]] > weights[order[b]] })
	return order
}

// suggestCategory scores each enrich-eligible category by containment of
// ranked tokens in the category's own normalized token form; the keyword map
// is the fallback when nothing overlaps.
func (e *Engine) suggestCategory(ranked []string) string {
	bestScore := -1.0
	best := ""
	for _, c := range e.index.EnrichCategories {
		cNorm := strings.Join(textnorm.Tokenize(c), " ")
		if cNorm == "" {
			continue
		}
		score := 0.0
		for _, tk := range ranked {
			if strings.Contains(cNorm, tk) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if best != "" && bestScore > 0 {
		return best
	}

	tokenSet := make(map[string]struct{}, len(ranked))
	for _, t := range ranked {
		tokenSet[strings.ToLower(t)] = struct{}{}
	}
	pool := toSet(e.index.EnrichCategories)
	for _, entry := range keywordCategories {
		hit := false
		for _, k := range entry.keys {
			if _, ok := tokenSet[strings.ToLower(k)]; ok {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		for _, cand := range entry.candidates {
			if _, ok := pool[cand]; ok {
				return cand
			}
		}
	}
	return ""
}

// topNgrams extracts the leading contiguous phrases of 3, 2 then 1 tokens,
// skipping phrases with stopwords, phrases with no token of three or more
// characters and phrases with internally repeated tokens.
func topNgrams(words []string, maxItems int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, n := range []int{3, 2, 1} {
		for i := 0; i+n <= len(words); i++ {
			chunk := words[i : i+n]
			if containsStopword(chunk) || !hasLongToken(chunk) || hasRepeat(chunk) {
				continue
			}
			phrase := strings.Join(chunk, " ")
			key := strings.ToLower(phrase)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, phrase)
			if len(out) >= maxItems {
				return out
			}
		}
	}
	return out
}

// longTokens keeps ranked tokens of at least three characters, lowercased,
// capped at limit.
func longTokens(ranked []string, limit int) []string {
	out := make([]string, 0, limit)
	for _, t := range ranked {
		if utf8.RuneCountInString(t) < 3 || textnorm.IsStopword(t) {
			continue
		}
		out = append(out, strings.ToLower(t))
		if len(out) >= limit {
			break
		}
	}
	return out
}

func containsStopword(chunk []string) bool {
	for _, t := range chunk {
		if textnorm.IsStopword(t) {
			return true
		}
	}
	return false
}

func hasLongToken(chunk []string) bool {
	for _, t := range chunk {
		if utf8.RuneCountInString(t) >= 3 {
			return true
		}
	}
	return false
}

func hasRepeat(chunk []string) bool {
	seen := make(map[string]struct{}, len(chunk))
	for _, t := range chunk {
		if _, ok := seen[t]; ok {
			return true
		}
		seen[t] = struct{}{}
	}
	return false
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
