package tags

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrNotArray is returned by ParseStrict for valid JSON that is not an array.
var ErrNotArray = errors.New("response is not a JSON array")

// fallbackSeparators matches ASCII comma, ideographic comma and newline.
var fallbackSeparators = regexp.MustCompile("[,、\n]")

// ParseResponse turns raw agent output into tags. It tries ParseStrict first
// and falls back to SplitFallback. The result may be empty but is never nil.
func ParseResponse(raw string) []string {
	if parsed, err := ParseStrict(raw); err == nil {
		return parsed
	}
	return SplitFallback(raw)
}

// ParseStrict decodes the trimmed text as a JSON array and coerces every
// element to a string.
func ParseStrict(raw string) ([]string, error) {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &v); err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, ErrNotArray
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, coerce(item))
	}
	return out, nil
}

// SplitFallback splits free text on commas (ASCII or 、) and newlines,
// trimming fragments and dropping empty ones.
func SplitFallback(raw string) []string {
	parts := fallbackSeparators.Split(raw, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func coerce(v any) string {
	switch tv := v.(type) {
	case string:
		return tv
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(tv)
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	default:
		b, err := json.Marshal(tv)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
