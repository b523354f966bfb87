package textnorm

import "strings"

// koSuffixes are particle and verb-ending suffixes trimmed from tokens by
// Simplify. First match in list order wins; longest-match-first is not
// guaranteed and the order is part of the observable behavior.
var koSuffixes = []string{
	"으로", "로", "에서", "에게", "에게서", "까지", "부터", "보다", "처럼", "같이",
	"에게로", "에게서부터", "이라고", "라고", "이며", "이고", "거나", "라도",
	"만", "은", "는", "이", "가", "을", "를", "의", "와", "과", "도", "들",
	"께", "께서", "뿐", "밖에", "마다", "만큼", "인데", "인데요", "입니다",
	"합니다", "해요", "했어요", "하는", "하게", "하고", "하며",
	"해주는", "해주다", "해주며", "입니다만",
}

// Simplify strips one matching grammatical suffix from a token, keeping the
// token unchanged when the remainder would be shorter than two characters.
// This is a lossy heuristic stemmer, not a morphological analyzer.
func Simplify(token string) string {
	runes := []rune(token)
	for _, suf := range koSuffixes {
		sufLen := len([]rune(suf))
		if strings.HasSuffix(token, suf) && len(runes) > sufLen+1 {
			return string(runes[:len(runes)-sufLen])
		}
	}
	return token
}

// SimplifyAll applies Simplify to every token.
func SimplifyAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = Simplify(t)
	}
	return out
}
