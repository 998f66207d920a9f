package relay_test

import (
	"testing"

	"github.com/aussiebroadwan/acrelay/pkg/relaysdk"
	"github.com/stretchr/testify/require"
)

func TestLivezEndpoint(t *testing.T) {
	baseURL, cleanup := setupRelayContainer(t, nil)
	defer cleanup()

	client := relaysdk.NewClient(baseURL)

	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)
}

func TestReadyzEndpoint(t *testing.T) {
	baseURL, cleanup := setupRelayContainer(t, map[string]string{
		"RELAY_RESULT_STORE":  "sqlite",
		"RELAY_DATABASE_FILE": "/home/relay/relay.db",
	})
	defer cleanup()

	client := relaysdk.NewClient(baseURL)

	health, err := client.GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Store)
	require.Equal(t, "ok", health.Checks.Signer)
}

func TestReadyzDegradedWithoutSecret(t *testing.T) {
	baseURL, cleanup := setupRelayContainer(t, map[string]string{"JWT_SECRET": ""})
	defer cleanup()

	client := relaysdk.NewClient(baseURL)

	_, err := client.GetReadiness(t.Context())
	require.Error(t, err)
}
