package pipeline

import (
	"fmt"
	"strings"
)

// Policy controls what happens to files that already carry author tags.
type Policy string

const (
	// PolicySkipIfPresent leaves files with author tags untouched.
	PolicySkipIfPresent Policy = "skip_if_present"
	// PolicyAlwaysAugment calls the generator for every file and merges
	// the result after the author tags.
	PolicyAlwaysAugment Policy = "always_augment"
)

// ParsePolicy accepts the policy names case-insensitively, with "-" or "_".
// The empty string selects PolicySkipIfPresent.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "", string(PolicySkipIfPresent):
		return PolicySkipIfPresent, nil
	case string(PolicyAlwaysAugment):
		return PolicyAlwaysAugment, nil
	default:
		return "", fmt.Errorf("unknown tag policy %q", s)
	}
}
