package relaysdk

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func countingPrompter(secret string, calls *atomic.Int32) SecretPrompter {
	return PrompterFunc(func(context.Context) (string, error) {
		calls.Add(1)
		return secret, nil
	})
}

func TestSession_GetValid(t *testing.T) {
	f := newFakeRelay(t)

	var prompts atomic.Int32
	s := NewSession(f.client(), nil, countingPrompter(testSecret, &prompts))

	tok, err := s.GetValid(t.Context())
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)

	tok, err = s.GetValid(t.Context())
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)
	require.EqualValues(t, 1, prompts.Load())
	require.Equal(t, 1, f.issuedCount())

	tok, err = s.Reauthenticate(t.Context())
	require.NoError(t, err)
	require.Equal(t, "tok-2", tok)
	require.EqualValues(t, 2, prompts.Load())
}

func TestSession_Secrets(t *testing.T) {
	f := newFakeRelay(t)

	t.Run("correct secret with whitespace", func(t *testing.T) {
		s := NewSession(f.client(), nil, StaticSecret("  "+testSecret+" "))
		_, err := s.GetValid(t.Context())
		require.NoError(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		s := NewSession(f.client(), nil, StaticSecret("wrong"))
		_, err := s.GetValid(t.Context())
		require.ErrorIs(t, err, ErrUnauthorized)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "Unauthorized: Invalid client secret", apiErr.Message)
	})

	t.Run("empty secret", func(t *testing.T) {
		s := NewSession(f.client(), nil, StaticSecret("   "))
		_, err := s.GetValid(t.Context())
		require.ErrorIs(t, err, ErrNoSecretProvided)
	})

	t.Run("no prompter", func(t *testing.T) {
		s := NewSession(f.client(), nil, nil)
		_, err := s.GetValid(t.Context())
		require.ErrorIs(t, err, ErrNoSecretProvided)
	})
}
