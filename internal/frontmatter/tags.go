package frontmatter

import (
	"encoding/json"
	"fmt"
)

// NormalizeTags converts a decoded tags field into an ordered string slice.
//
// The field may be absent (nil), a single scalar or a sequence. Sequence items
// that are not strings are stringified; nil items are dropped. An empty
// string scalar yields no tags.
func NormalizeTags(v any) []string {
	switch tv := v.(type) {
	case nil:
		return []string{}
	case string:
		if tv == "" {
			return []string{}
		}
		return []string{tv}
	case []string:
		return append([]string{}, tv...)
	case []any:
		out := make([]string, 0, len(tv))
		for _, item := range tv {
			if item == nil {
				continue
			}
			out = append(out, stringify(item))
		}
		return out
	default:
		return []string{stringify(tv)}
	}
}

func stringify(v any) string {
	switch tv := v.(type) {
	case string:
		return tv
	case map[string]any, []any:
		b, err := json.Marshal(tv)
		if err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}
