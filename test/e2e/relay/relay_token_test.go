package relay_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/acrelay/pkg/relaysdk"
	"github.com/stretchr/testify/require"
)

// TestIssueToken checks the shared secret exchange against a real server.
func TestIssueToken(t *testing.T) {
	baseURL, cleanup := setupRelayContainer(t, nil)
	defer cleanup()

	client := relaysdk.NewClient(baseURL)

	t.Run("correct secret", func(t *testing.T) {
		resp, err := client.IssueToken(t.Context(), clientSecret)
		require.NoError(t, err)
		require.NotEmpty(t, resp.Token)
		require.Equal(t, 900, resp.ExpiresIn)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := client.IssueToken(t.Context(), "wrong")
		require.Error(t, err)
		require.ErrorIs(t, err, relaysdk.ErrUnauthorized)

		var apiErr *relaysdk.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, "Unauthorized: Invalid client secret", apiErr.Message)
	})

	t.Run("forged token rejected", func(t *testing.T) {
		_, _, err := client.GetResult(t.Context(), "not-a-jwt")
		require.ErrorIs(t, err, relaysdk.ErrUnauthorized)
	})
}

// TestTokenMisconfigured runs without a client secret configured.
func TestTokenMisconfigured(t *testing.T) {
	baseURL, cleanup := setupRelayContainer(t, map[string]string{"CLIENT_SECRET": ""})
	defer cleanup()

	client := relaysdk.NewClient(baseURL)

	_, err := client.IssueToken(t.Context(), clientSecret)

	var apiErr *relaysdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	require.Contains(t, apiErr.Message, "CLIENT_SECRET")
}
