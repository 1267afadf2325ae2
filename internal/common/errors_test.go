package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthError_ErrorFormat(t *testing.T) {
	e := NewAuthError(KindInvalidCredentials, "Invalid credentials")
	assert.Equal(t, "INVALID_CREDENTIALS: Invalid credentials", e.Error())

	wrapped := WrapAuthError(KindNetworkError, "Network error", errors.New("dial tcp: refused"))
	assert.Equal(t, "NETWORK_ERROR: Network error: dial tcp: refused", wrapped.Error())
}

func TestAuthError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	e := WrapAuthError(KindNetworkError, "Network error", cause)
	require.ErrorIs(t, e, cause)
}

func TestIsKind_MatchesThroughWrapping(t *testing.T) {
	e := NewAuthError(KindTokenExpired, "No refresh token available")
	outer := fmt.Errorf("refresh token: %w", e)

	assert.True(t, IsKind(outer, KindTokenExpired))
	assert.False(t, IsKind(outer, KindInvalidCredentials))
	assert.False(t, IsKind(errors.New("plain"), KindTokenExpired))
	assert.False(t, IsKind(nil, KindTokenExpired))
}

func TestUserMessage(t *testing.T) {
	e := NewAuthError(KindEmailAlreadyExists, "Email already exists")
	assert.Equal(t, "Email already exists", UserMessage(fmt.Errorf("register: %w", e)))

	// Errors outside the taxonomy fall back to the generic network message.
	assert.Equal(t, "Network error", UserMessage(errors.New("weird")))
}
