package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"Path", KeyPath, "blog/a.md", Path("blog/a.md")},
		{"Outcome", KeyOutcome, "fallback", Outcome("fallback")},
		{"Status", KeyStatus, "tagged", Status("tagged")},
		{"Model", KeyModel, "gpt-5-mini", Model("gpt-5-mini")},
		{"Provider", KeyProvider, "openai", Provider("openai")},
		{"Category", KeyCategory, "agent", Category("agent")},
		{"Tags", KeyTags, "Go,AWS", Tags([]string{"Go", "AWS"})},
		{"Error", KeyError, "boom", Error(errors.New("boom"))},
		{"NilError", KeyError, "", Error(nil)},
	}
	for _, c := range cases {
		if c.attr.Key != c.attrKey {
			t.Fatalf("%s: key mismatch got %s want %s", c.name, c.attr.Key, c.attrKey)
		}
		if c.attr.Value.String() != c.attrVal {
			t.Fatalf("%s: value mismatch got %s want %s", c.name, c.attr.Value.String(), c.attrVal)
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := TagCount(3); a.Key != KeyTagCount || a.Value.Int64() != 3 {
		t.Fatalf("unexpected TagCount attr: %v", a)
	}
	if a := DurationMS(12.5); a.Key != KeyDurationMS || a.Value.Float64() != 12.5 {
		t.Fatalf("unexpected DurationMS attr: %v", a)
	}
}
