package textnorm

// stopwords holds Korean/English filler words (greetings, generic service
// vocabulary) excluded from token ranking.
var stopwords = map[string]struct{}{
	"안녕하세요": {},
	"안녕":    {},
	"저희":    {},
	"저희는":   {},
	"입니다":   {},
	"있습니다":  {},
	"있어요":   {},
	"합니다":   {},
	"하는":    {},
	"있다":    {},
	"및":     {},
	"그리고":   {},
	"등":     {},
	"관련":    {},
	"기반":    {},
	"서비스":   {},
	"있으며":   {},
	"안내":    {},
}

// IsStopword reports whether the token is in the stopword table.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// StripStopwords returns the tokens with stopwords removed.
func StripStopwords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" || IsStopword(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
