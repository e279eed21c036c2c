package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	t.Parallel()

	err := NotFound("chat not found")
	assert.Equal(t, "chat not found", err.Error())

	wrapped := Wrap(stderrors.New("boom"), "could not create chat")
	assert.Equal(t, "could not create chat: boom", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("connection refused")
	err := Wrap(cause, "session save failed")

	require.ErrorIs(t, err, cause)
}

func TestCodePredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		pred func(error) bool
	}{
		{"not found", NotFound("x"), IsNotFound},
		{"conflict", Conflict("x"), IsConflict},
		{"validation", Validation("x"), IsValidation},
		{"bad request", BadRequest("x"), IsBadRequest},
		{"unauthorized", Unauthorized("x"), IsUnauthorized},
		{"forbidden", Forbidden("x"), IsForbidden},
		{"internal", Internal("x"), IsInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.True(t, tt.pred(tt.err))
			assert.False(t, tt.pred(stderrors.New("plain")))
		})
	}
}

func TestCodePredicates_WrappedChain(t *testing.T) {
	t.Parallel()

	inner := Unauthorized("invalid password")
	outer := fmt.Errorf("login: %w", inner)

	assert.True(t, IsUnauthorized(outer))
	assert.Equal(t, ErrCodeUnauthorized, GetCode(outer))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Wrap(nil, "ignored"))
	assert.Nil(t, Wrapf(nil, "ignored %d", 1))
}

func TestWrap_PreservesClassifiedCode(t *testing.T) {
	t.Parallel()

	err := Wrap(NotFound("user not found"), "load sender")
	assert.True(t, IsNotFound(err))
}

func TestGetField(t *testing.T) {
	t.Parallel()

	err := ValidationField("email", "email is required")
	assert.Equal(t, "email", GetField(err))
	assert.Empty(t, GetField(stderrors.New("plain")))
}
