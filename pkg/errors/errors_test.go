package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/hbond-profiler/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"degenerate", errors.ErrCodeDegenerateGeometry, "hydrogen coincides with donor"},
		{"invalid param", errors.CodeInvalidParam, "distance cutoff must be positive"},
		{"malformed table", errors.ErrCodeMalformedTable, "missing column angle"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
			assert.Contains(t, ae.Stack, "errors_test.go")
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodeAtomIndexInvalid, "atom %d out of range [0,%d)", 9, 4)
	assert.Equal(t, "atom 9 out of range [0,4)", ae.Message)
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("connection refused")
	wrapped := errors.Wrap(root, errors.CodeDBConnectionError, "failed to ping postgres")

	require.Error(t, wrapped)
	assert.True(t, stderrors.Is(wrapped, root))
	assert.True(t, errors.IsCode(wrapped, errors.ErrCodeDatabaseError))
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestWrap_UnknownCodeKeepsOriginal(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeFeatureEmpty, "donor has no atoms")
	outer := errors.Wrap(inner, errors.CodeUnknown, "check failed")

	assert.Equal(t, errors.ErrCodeFeatureEmpty, errors.GetCode(outer))
}

func TestAppError_ErrorFormat(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeMalformedTable, "missing columns")
	assert.Equal(t, "[STAT_001] missing columns", ae.Error())

	withDetail := ae.WithDetail("angle, distance")
	assert.Equal(t, "[STAT_001] missing columns: angle, distance", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestAppError_WithCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("parse float: %w", stderrors.New("invalid syntax"))
	ae := errors.New(errors.ErrCodeMalformedTable, "row 3").WithCause(cause)

	assert.True(t, strings.HasSuffix(ae.Error(), "invalid syntax"))
	assert.Equal(t, cause, stderrors.Unwrap(ae))
}

func TestAppError_NilReceiverBuilders(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

func TestIs_MatchesSentinelByCode(t *testing.T) {
	t.Parallel()

	sentinel := errors.New(errors.ErrCodeNotHydrogenBond, "not a hydrogen bond")
	other := errors.New(errors.ErrCodeNotHydrogenBond, "distance 3.80 >= 3.50")
	wrapped := fmt.Errorf("scan frame f1: %w", other)

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(wrapped, errors.New(errors.ErrCodeDegenerateGeometry, "")))
}

func TestIsCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		code errors.ErrorCode
		want bool
	}{
		{"nil", nil, errors.CodeInternal, false},
		{"plain error", stderrors.New("boom"), errors.CodeInternal, false},
		{"direct match", errors.NotImplemented("H"), errors.CodeNotImplemented, true},
		{"wrapped by fmt", fmt.Errorf("ctx: %w", errors.NotFound("run")), errors.CodeNotFound, true},
		{"outer code differs", errors.Wrap(errors.InvalidParam("x"), errors.CodeInternal, "y"), errors.CodeInvalidParam, true},
		{"no match", errors.Internal("x"), errors.CodeNotFound, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, errors.IsCode(tc.err, tc.code))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsNotFound(errors.NotFound("stats for run r1")))
	assert.True(t, errors.IsNotFound(fmt.Errorf("lookup: %w", errors.NotFound("x"))))
	assert.False(t, errors.IsNotFound(errors.Internal("x")))
	assert.False(t, errors.IsNotFound(nil))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeEmptyTable, errors.GetCode(errors.New(errors.ErrCodeEmptyTable, "no rows")))
}

func TestAs_ExtractsAppError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("outer: %w", errors.New(errors.ErrCodeFrameInvalid, "no members"))
	var ae *errors.AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, errors.ErrCodeFrameInvalid, ae.Code)
}

//Personal.AI order the ending
