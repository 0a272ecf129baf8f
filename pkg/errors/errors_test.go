package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrorTypeDisposed, "pool is gone")

	assert.Equal(t, ErrorTypeDisposed, err.Type)
	assert.Equal(t, "disposed: pool is gone", err.Error())
	assert.NotEmpty(t, err.Stack, "stack is captured at construction")
	assert.Nil(t, err.Unwrap())
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("engine exploded")
	err := Wrap(cause, ErrorTypeInternal, "instantiate failed")

	assert.Equal(t, "internal: instantiate failed: engine exploded", err.Error())
	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, stderrors.Is(err, cause))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "nothing"))
}

func TestWrapPreservesStack(t *testing.T) {
	inner := New(ErrorTypeNotOwned, "wrong pool")
	outer := Wrap(inner, ErrorTypeInternal, "return failed")

	require.NotEmpty(t, outer.Stack)
	assert.Equal(t, inner.Stack[0], outer.Stack[0],
		"wrapping keeps the original capture point")
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeNotOwned, "wrong pool").
		WithDetail("prototype", "bullet").
		WithDetail("instance", "bullet#4")

	assert.Equal(t, "bullet", err.Details["prototype"])
	assert.Equal(t, "bullet#4", err.Details["instance"])
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeInvalidAccess, "stale handle")

	assert.True(t, IsType(err, ErrorTypeInvalidAccess))
	assert.False(t, IsType(err, ErrorTypeDisposed))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeInvalidAccess))
	assert.False(t, IsType(nil, ErrorTypeInvalidAccess))

	// Works through wrapping.
	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsType(wrapped, ErrorTypeInvalidAccess))
}

func TestClassification(t *testing.T) {
	cases := []struct {
		errType     ErrorType
		violation   bool
		recoverable bool
	}{
		{ErrorTypeNotOwned, true, false},
		{ErrorTypeNotActive, true, false},
		{ErrorTypeDisposed, false, true},
		{ErrorTypeInvalidAccess, false, true},
		{ErrorTypeNullPrototype, false, true},
		{ErrorTypeInternal, false, false},
		{ErrorTypeConfig, false, false},
	}

	for _, tc := range cases {
		err := New(tc.errType, "x")
		assert.Equal(t, tc.violation, IsContractViolation(err), "violation: %s", tc.errType)
		assert.Equal(t, tc.recoverable, IsRecoverable(err), "recoverable: %s", tc.errType)
	}

	assert.False(t, IsContractViolation(fmt.Errorf("plain")))
	assert.False(t, IsRecoverable(nil))
}
