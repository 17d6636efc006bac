package apperror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(CodeInfeasibleQuota, "no assignment satisfies minimum quotas")
	assert.Equal(t, "[INFEASIBLE_QUOTA] no assignment satisfies minimum quotas", err.Error())

	withField := NewWithField(CodeInvalidMinMax, "min exceeds max", "min_reviewers[3]")
	assert.Contains(t, withField.Error(), "field: min_reviewers[3]")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(cause, CodeInternal, "unexpected state")
	require.ErrorIs(t, wrapped, cause)
}

func TestCodeClassification(t *testing.T) {
	require.True(t, IsInfeasible(New(CodeInfeasibleFlow, "x")))
	require.True(t, IsValidationError(New(CodeLockConflict, "x")))
	require.True(t, IsSolverError(New(CodeBvNInvariant, "x")))
	require.True(t, IsCancelled(New(CodeCancelled, "x")))
	require.False(t, IsInfeasible(New(CodeCancelled, "x")))
}

func TestValidationErrorsAccumulate(t *testing.T) {
	ve := NewValidationErrors()
	ve.AddErrorWithField(CodeMalformedDimensions, "score matrix has wrong shape", "score")
	ve.AddErrorWithField(CodeInvalidMinMax, "min_papers exceeds max_papers", "min_papers[1]")
	ve.Add(&Error{Code: CodeInvalidConstraint, Message: "redundant lock", Severity: SeverityWarning})

	require.True(t, ve.HasErrors())
	require.False(t, ve.IsValid())
	require.Len(t, ve.Errors, 2)
	require.Len(t, ve.Warnings, 1)
	require.Equal(t, CodeMalformedDimensions, ve.First().Code)
	require.Len(t, ve.ErrorMessages(), 2)
}
