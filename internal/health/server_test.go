package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDB struct {
	err error
}

func (f *fakeDB) Ping(ctx context.Context) error { return f.err }

type fakeProvider struct {
	name    string
	enabled bool
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) IsEnabled() bool { return f.enabled }

func readyResponse(t *testing.T, server *Server) (int, ReadyResponse) {
	t.Helper()
	recorder := httptest.NewRecorder()
	server.handleReady(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var resp ReadyResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	return recorder.Code, resp
}

func TestHealthEndpoint(t *testing.T) {
	server := NewServer(Config{ServiceName: "scanner", Version: "1.2.3"})

	recorder := httptest.NewRecorder()
	server.handleHealth(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "scanner", resp.Service)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestReadyBeforeSetReady(t *testing.T) {
	server := NewServer(Config{ServiceName: "scanner"})

	code, resp := readyResponse(t, server)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "not_ready", resp.Checks["service"])
}

func TestReadyWithHealthyDatabase(t *testing.T) {
	server := NewServer(Config{ServiceName: "scanner", DB: &fakeDB{}})
	server.SetReady(true)

	code, resp := readyResponse(t, server)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Checks["database"])
}

func TestReadyWithFailingDatabase(t *testing.T) {
	server := NewServer(Config{ServiceName: "scanner", DB: &fakeDB{err: errors.New("connection refused")}})
	server.SetReady(true)

	code, resp := readyResponse(t, server)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, resp.Checks["database"], "connection refused")
}

func TestReadyReportsProviders(t *testing.T) {
	server := NewServer(Config{
		ServiceName: "scanner",
		Providers: []ProviderChecker{
			&fakeProvider{name: "the-odds-api", enabled: true},
			&fakeProvider{name: "stats-api", enabled: false},
		},
	})
	server.SetReady(true)

	code, resp := readyResponse(t, server)

	// Disabled providers are reported but never fail readiness
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Checks["provider_the-odds-api"])
	assert.Equal(t, "disabled", resp.Checks["provider_stats-api"])
}
