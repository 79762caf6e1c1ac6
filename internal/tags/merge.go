package tags

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Merge returns existing followed by generated, trimmed, without empty
// entries and without case-insensitive duplicates. The first occurrence of
// each tag keeps its casing and position. Tags compare by simple lowercase
// mapping, so "Straße" and "STRASSE" stay distinct.
func Merge(existing, generated []string) []string {
	lower := cases.Lower(language.Und)
	seen := make(map[string]struct{}, len(existing)+len(generated))
	out := make([]string, 0, len(existing)+len(generated))

	add := func(tags []string) {
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			key := lower.String(t)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, t)
		}
	}
	add(existing)
	add(generated)
	return out
}
