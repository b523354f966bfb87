// Package textnorm turns free Korean/English text into lowercase token
// sequences suitable for tag matching and keyword extraction.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const minTokenLen = 3

// Tokenize lowercases the input, strips every character outside the
// allow-list (ASCII alphanumerics, Hangul syllables, whitespace, hyphen,
// slash), collapses whitespace and hash runs, then splits on
// whitespace/hyphen/slash. Tokens shorter than three characters are dropped.
func Tokenize(text string) []string {
	lowered := strings.ToLower(norm.NFKC.String(text))

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= '가' && r <= '힣':
			b.WriteRune(r)
		case r == '-' || r == '/':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '#':
			b.WriteByte(' ')
		}
	}

	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		return nil
	}

	parts := strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == ' ' || r == '-' || r == '/'
	})

	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if len([]rune(p)) >= minTokenLen {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// TokenizeAll tokenizes every input and concatenates the results.
func TokenizeAll(texts []string) []string {
	var out []string
	for _, t := range texts {
		out = append(out, Tokenize(t)...)
	}
	return out
}
