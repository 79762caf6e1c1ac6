package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeTags(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want []string
	}{
		{"nil", nil, []string{}},
		{"empty string", "", []string{}},
		{"single string", "AWS", []string{"AWS"}},
		{"string slice", []string{"a", "b"}, []string{"a", "b"}},
		{"mixed sequence", []any{"Go", 1.5, true, nil, 3}, []string{"Go", "1.5", "true", "3"}},
		{"nested map", []any{map[string]any{"k": "v"}}, []string{`{"k":"v"}`}},
		{"scalar int", 2024, []string{"2024"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, NormalizeTags(c.in))
		})
	}
}

func TestNormalizeTags_CopiesStringSlice(t *testing.T) {
	in := []string{"a"}
	out := NormalizeTags(in)
	out[0] = "changed"
	require.Equal(t, "a", in[0])
}
