package foundation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/autotag/internal/foundation/errors"
)

func TestValidationResult_ZeroIsValid(t *testing.T) {
	var vr ValidationResult
	require.True(t, vr.Valid())
	require.NoError(t, vr.ToError())
}

func TestValidationResult_ToError(t *testing.T) {
	var vr ValidationResult
	vr.Check(true, "agent.model", "must not be empty")
	vr.Check(false, "build.concurrency", "must be positive")
	vr.Addf("pipeline.policy", "unknown policy %q", "sometimes")

	err := vr.ToError()
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
	require.Contains(t, err.Error(), `build.concurrency: must be positive; pipeline.policy: unknown policy "sometimes"`)

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	require.Equal(t, []string{"build.concurrency", "pipeline.policy"}, ce.Context()["fields"])
}
