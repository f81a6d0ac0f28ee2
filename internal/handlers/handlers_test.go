package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"driftchat/internal/events"
	"driftchat/internal/presence"
	"driftchat/internal/utils"
)

func newBareServer(metricsEnabled bool) *Server {
	metrics := utils.NewMetricsCollector()
	return &Server{
		Fanout:         events.NewFanout(presence.NewRegistry(), metrics),
		Metrics:        metrics,
		MetricsEnabled: metricsEnabled,
	}
}

func TestWriteResultCountsRequestsAndErrors(t *testing.T) {
	server := newBareServer(true)

	recorder := httptest.NewRecorder()
	server.writeResult(recorder, map[string]string{"ok": "yes"})
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = httptest.NewRecorder()
	server.writeResult(recorder, utils.NewForbiddenError("not yours"))
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	snapshot := server.Metrics.Snapshot()
	assert.Equal(t, uint64(2), snapshot.RequestCount)
	assert.Equal(t, uint64(1), snapshot.ErrorCount)
}

func TestHandleHealthMetricsToggle(t *testing.T) {
	decode := func(t *testing.T, server *Server) map[string]interface{} {
		t.Helper()
		recorder := httptest.NewRecorder()
		server.HandleHealth()(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, recorder.Code)

		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		return body
	}

	body := decode(t, newBareServer(true))
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "metrics")

	body = decode(t, newBareServer(false))
	assert.Equal(t, "healthy", body["status"])
	assert.NotContains(t, body, "metrics")
}
