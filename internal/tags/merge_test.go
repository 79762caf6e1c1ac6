package tags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	cases := []struct {
		name      string
		existing  []string
		generated []string
		want      []string
	}{
		{"existing casing wins", []string{"docusaurus"}, []string{"Docusaurus", "AWS"}, []string{"docusaurus", "AWS"}},
		{"existing first then generated order", []string{"B", "A"}, []string{"C", "A", "D"}, []string{"B", "A", "C", "D"}},
		{"duplicates within generated", nil, []string{"React", "react", "REACT"}, []string{"React"}},
		{"trims and drops empty", []string{" Go "}, []string{"", "  ", "go"}, []string{"Go"}},
		{"lowercase matching", []string{"Straße"}, []string{"STRASSE", "Ärger", "ärger"}, []string{"Straße", "STRASSE", "Ärger"}},
		{"non latin passthrough", []string{"インフラ"}, []string{"インフラ", "AWS"}, []string{"インフラ", "AWS"}},
		{"both empty", nil, nil, []string{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, Merge(c.existing, c.generated))
		})
	}
}
