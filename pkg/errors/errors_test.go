package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithInternalKeepsOriginalForUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := ErrInternalServer.WithInternal(cause)

	require.ErrorIs(t, wrapped, cause)
	require.Contains(t, wrapped.Error(), "connection refused")
	// The shared sentinel must stay untouched.
	require.Nil(t, ErrInternalServer.Internal)
}

func TestFromError(t *testing.T) {
	require.Nil(t, FromError(nil))

	appErr := FromError(ErrNotFound)
	require.Equal(t, "NOT_FOUND", appErr.Code)
	require.Equal(t, http.StatusNotFound, appErr.StatusCode)

	generic := FromError(errors.New("boom"))
	require.Equal(t, ErrInternalServer.Code, generic.Code)
	require.EqualError(t, generic.Internal, "boom")
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("title is required")
	require.Equal(t, "BAD_REQUEST", err.Code)
	require.Equal(t, http.StatusBadRequest, err.StatusCode)
	require.Equal(t, "title is required", err.Message)
}
