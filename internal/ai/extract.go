package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrUnparsable marks model output that contained no parseable JSON object.
// Callers map it to their heuristic fallback instead of surfacing it.
var ErrUnparsable = errors.New("unparsable model output")

// ExtractJSONObject returns the first balanced brace-delimited substring of
// the raw model output. String literals and escapes are respected so braces
// inside quoted values do not unbalance the scan.
func ExtractJSONObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return raw[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// ParseObject extracts the first JSON object from raw model output and
// unmarshals it into a generic map. Both a missing object and invalid JSON
// report ErrUnparsable.
func ParseObject(raw string) (map[string]any, error) {
	block, ok := ExtractJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object found", ErrUnparsable)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(block), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	return data, nil
}

// DecodeLoose maps a parsed model object onto a typed struct. Types are
// converted weakly (numeric strings become floats, numbers become strings), so
// minor model sloppiness survives; anything unconvertible reports
// ErrUnparsable and the caller falls back to its heuristic.
func DecodeLoose(data map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(data); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	return nil
}

// CleanStrings trims every entry and drops the empty ones.
func CleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Clamp01 bounds a score to the [0,1] range.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
