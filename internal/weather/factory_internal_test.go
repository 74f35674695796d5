package weather

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ConfiguredTimeoutReachesHTTPClient(t *testing.T) {
	t.Parallel()
	logger := slog.Default()

	om := NewOpenMeteoProvider(7*time.Second, logger)
	omClient, ok := om.client.(*http.Client)
	require.True(t, ok)
	assert.Equal(t, 7*time.Second, omClient.Timeout)

	ow := NewOpenWeatherProvider("key", 5, 9*time.Second, logger)
	owClient, ok := ow.client.(*http.Client)
	require.True(t, ok)
	assert.Equal(t, 9*time.Second, owClient.Timeout)
}

func Test_ZeroTimeoutFallsBackToDefault(t *testing.T) {
	t.Parallel()

	om := NewOpenMeteoProvider(0, slog.Default())
	omClient, ok := om.client.(*http.Client)
	require.True(t, ok)
	assert.Equal(t, defaultTimeout, omClient.Timeout)
}
