package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_IsRepeatable(t *testing.T) {
	assert.NotPanics(t, func() {
		Initialize(MetricsConfig{EnableHTTP: true})
		Initialize(MetricsConfig{EnableModelLatency: true})
	})
	assert.True(t, Config.EnableModelLatency)
	assert.False(t, Config.EnableHTTP)
}

func TestHandler_ExposesAssistantMetrics(t *testing.T) {
	Initialize(DefaultMetricsConfig())
	MessagesTotal.WithLabelValues("fallback").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `assistant_messages_total{source="fallback"}`)
	assert.Contains(t, string(body), "go_goroutines")
}
