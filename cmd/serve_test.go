package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/aura-cli/internal/dashboard"
	"github.com/sells-group/aura-cli/internal/game"
	"github.com/sells-group/aura-cli/internal/model"
)

func newTestMux(t *testing.T) http.Handler {
	t.Helper()
	c := testConfig()
	env := newTestEnv(t, c)
	session := dashboard.NewSession(env.Service, game.DefaultFarmer())
	return buildMux(env, session, c.Server, c.Store.HistoryLimit)
}

func serveMux(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestResolvePort_FlagSet(t *testing.T) {
	assert.Equal(t, 9090, resolvePort(9090, 8080))
}

func TestResolvePort_FlagZero(t *testing.T) {
	assert.Equal(t, 8080, resolvePort(0, 8080))
}

func TestBuildMux_HealthEndpoint(t *testing.T) {
	rr := serveMux(newTestMux(t), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestBuildMux_ListAndGetFarm(t *testing.T) {
	mux := newTestMux(t)

	rr := serveMux(mux, http.MethodGet, "/api/v1/farms", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var farms []model.FarmSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &farms))
	require.Len(t, farms, 5)
	assert.Equal(t, "AGRICULTURE_1", farms[0].ID)

	rr = serveMux(mux, http.MethodGet, "/api/v1/farms/FOREST_1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var m model.FarmMetrics
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	assert.Equal(t, "FOREST_1", m.FarmID)
	assert.InDelta(t, 20.0, m.Centroid.Lat, 1e-9)
	assert.InDelta(t, 76.0, m.Centroid.Lng, 1e-9)
}

func TestBuildMux_UnknownFarm(t *testing.T) {
	rr := serveMux(newTestMux(t), http.MethodGet, "/api/v1/farms/NOPE_1", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	var body struct {
		Error    string   `json:"error"`
		KnownIDs []string `json:"known_ids"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "NOPE_1")
	assert.Len(t, body.KnownIDs, 5)
}

func TestBuildMux_RefreshThenHistory(t *testing.T) {
	mux := newTestMux(t)

	rr := serveMux(mux, http.MethodPost, "/api/v1/farms/URBAN_1/refresh", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serveMux(mux, http.MethodGet, "/api/v1/farms/URBAN_1/history", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var snaps []model.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snaps))
	require.Len(t, snaps, 1)
	assert.Equal(t, "URBAN_1", snaps[0].FarmID)
}

func TestBuildMux_AdviceDisabled(t *testing.T) {
	rr := serveMux(newTestMux(t), http.MethodPost, "/api/v1/farms/WATER_1/advice", `{"question":"Should I plant rice?"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestBuildMux_DashboardSelect(t *testing.T) {
	mux := newTestMux(t)

	rr := serveMux(mux, http.MethodPost, "/api/v1/dashboard/select", `{"farmId":"BARREN_1"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serveMux(mux, http.MethodGet, "/api/v1/dashboard", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var view struct {
		SelectedID string `json:"selectedId"`
		Farm       *model.FarmMetrics
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, "BARREN_1", view.SelectedID)
}

func TestBuildMux_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/farms", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	newTestMux(t).ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestStartServer_GracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mux := newTestMux(t)

	// Find a free port.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	l.Close() //nolint:errcheck

	errCh := make(chan error, 1)
	go func() {
		errCh <- startServer(ctx, mux, port)
	}()

	// Wait for server to be ready.
	var ready bool
	for i := 0; i < 30; i++ {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", port))
		if err == nil {
			resp.Body.Close() //nolint:errcheck
			ready = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, ready, "server did not become ready in time")

	// Trigger graceful shutdown.
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}
