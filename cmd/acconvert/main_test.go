package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/acrelay/pkg/httpx"
)

// newFakeRelay answers token and convert requests. Event streams are
// refused so the converter relies on the direct reply.
func newFakeRelay(t *testing.T, reply string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var issued atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Client-Secret") != "s3cr3t" {
			httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized: Invalid client secret")
			return
		}
		issued.Add(1)
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"token": "tok-1", "expiresIn": 900})
	})
	mux.HandleFunc("POST /api/convert", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized: Invalid token")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	})
	mux.HandleFunc("GET /api/result", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusNotFound, map[string]string{"status": "pending"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &issued
}

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())
	return out.String(), errOut.String(), err
}

func TestConvertCommandDirect(t *testing.T) {
	clearEnv(t)
	srv, issued := newFakeRelay(t, `{"output":"Feature: login"}`)
	t.Setenv("ACCONVERT_CLIENT_SECRET", "s3cr3t")
	t.Setenv("ACCONVERT_CACHE_FILE", filepath.Join(t.TempDir(), "token.json"))

	out, _, err := runCLI(t, "", "--base-url", srv.URL, "convert", "Given a user")
	require.NoError(t, err)
	assert.Equal(t, "Feature: login\n", out)

	// Criteria from stdin; the cached token is reused.
	out, _, err = runCLI(t, "Given another user\n", "--base-url", srv.URL, "convert", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"output":"Feature: login"}`, out)
	assert.EqualValues(t, 1, issued.Load())
}

func TestConvertCommandWrongSecret(t *testing.T) {
	clearEnv(t)
	srv, _ := newFakeRelay(t, `{}`)
	t.Setenv("ACCONVERT_CLIENT_SECRET", "wrong")

	_, _, err := runCLI(t, "", "--base-url", srv.URL, "convert", "Given a user")
	require.ErrorContains(t, err, "not authorized")
}

func TestConvertCommandRequiresCriteria(t *testing.T) {
	clearEnv(t)

	_, _, err := runCLI(t, "   ", "convert")
	require.ErrorContains(t, err, "acceptance criteria are required")
}

func TestResultCommandPending(t *testing.T) {
	clearEnv(t)
	srv, _ := newFakeRelay(t, `{}`)
	t.Setenv("ACCONVERT_CLIENT_SECRET", "s3cr3t")
	t.Setenv("ACCONVERT_CACHE_FILE", filepath.Join(t.TempDir(), "token.json"))

	_, errOut, err := runCLI(t, "", "--base-url", srv.URL, "result")
	require.NoError(t, err)
	assert.Contains(t, errOut, "pending")
}

func TestTokenCommands(t *testing.T) {
	clearEnv(t)
	srv, issued := newFakeRelay(t, `{}`)
	t.Setenv("ACCONVERT_CLIENT_SECRET", "s3cr3t")
	t.Setenv("ACCONVERT_CACHE_FILE", filepath.Join(t.TempDir(), "token.json"))

	out, _, err := runCLI(t, "", "--base-url", srv.URL, "token")
	require.NoError(t, err)
	assert.Contains(t, out, "No valid cached token")

	_, _, err = runCLI(t, "", "--base-url", srv.URL, "token", "refresh")
	require.NoError(t, err)
	assert.EqualValues(t, 1, issued.Load())

	out, _, err = runCLI(t, "", "--base-url", srv.URL, "token")
	require.NoError(t, err)
	assert.Contains(t, out, "Token valid until")

	_, _, err = runCLI(t, "", "token", "clear")
	require.NoError(t, err)

	out, _, err = runCLI(t, "", "token")
	require.NoError(t, err)
	assert.Contains(t, out, "No valid cached token")
}

func TestConfigCommand(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCONVERT_AGENT", "claude")

	out, _, err := runCLI(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "agent")
	assert.Contains(t, out, "claude")
}
