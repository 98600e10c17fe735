package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	wifiscand "github.com/dogeorg/wifiscand/pkg"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

type stubAdapter struct {
	ifaces     []string
	connected  string
	triggerErr error
	results    []wifiscand.RawNetwork
}

func (s *stubAdapter) Interfaces(ctx context.Context) ([]string, error) { return s.ifaces, nil }
func (s *stubAdapter) ConnectedBSSID(ctx context.Context, iface string) (string, error) {
	return s.connected, nil
}
func (s *stubAdapter) TriggerScan(ctx context.Context, iface string) error { return s.triggerErr }
func (s *stubAdapter) ScanResults(ctx context.Context, iface string) ([]wifiscand.RawNetwork, error) {
	return s.results, nil
}

type stubMonitor struct{}

func (stubMonitor) GetProcessStats() (wifiscand.ProcessStats, error) {
	return wifiscand.ProcessStats{PID: 42, MEMMb: 12.5}, nil
}

type harness struct {
	api     api
	pool    *wifiscand.ScanPool
	ws      *wifiscand.WSRelay
	metrics *ScanMetrics
	server  *httptest.Server
}

func serviceUp(t *testing.T, svc interface {
	Run(started, stopped chan bool, stop chan context.Context) error
}) {
	t.Helper()
	started, stopped, stop := make(chan bool, 1), make(chan bool, 1), make(chan context.Context, 1)
	require.NoError(t, svc.Run(started, stopped, stop))
	<-started
	t.Cleanup(func() {
		stop <- context.Background()
		<-stopped
	})
}

func newHarness(t *testing.T, a wifiscand.Adapter, uiDir string) *harness {
	t.Helper()
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	config := wifiscand.DefaultServerConfig()
	config.UiDir = uiDir

	history := wifiscand.NewHistoryStore(config.HistoryLimit)
	scanner := wifiscand.NewScanner(a, history, wifiscand.ScannerOptions{
		Sleep:  func(context.Context, time.Duration) error { return nil },
		Logger: logger,
	})
	pool := wifiscand.NewScanPool(scanner, 2, logger)
	ws := wifiscand.NewWSRelay(pool.Changes, logger)
	metrics := NewScanMetrics(history)

	h := &harness{
		api:     RESTAPI(config, pool, ws, stubMonitor{}, metrics, logger).(api),
		pool:    pool,
		ws:      ws,
		metrics: metrics,
	}
	serviceUp(t, pool)
	serviceUp(t, ws)

	h.server = httptest.NewServer(h.api.Handler())
	t.Cleanup(h.server.Close)
	return h
}

func homeAdapter() *stubAdapter {
	return &stubAdapter{
		ifaces:    []string{"wlan0"},
		connected: "11:22:33:44:55:66",
		results: []wifiscand.RawNetwork{
			{SSID: "HomeNet", BSSID: "11:22:33:44:55:66", Signal: -42, AKMs: []wifiscand.AKM{wifiscand.AKMWPA2PSK}},
			{SSID: "", BSSID: "aa:bb:cc:dd:ee:ff", Signal: -70, AKMs: []wifiscand.AKM{wifiscand.AKMNone}},
		},
	}
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), string(body))
	}
	return resp
}

func TestGetScan(t *testing.T) {
	h := newHarness(t, homeAdapter(), t.TempDir())

	var body struct {
		Networks []map[string]any `json:"networks"`
	}
	resp := getJSON(t, h.server.URL+"/scan", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Len(t, body.Networks, 2)

	home := body.Networks[0]
	assert.Equal(t, "HomeNet", home["ssid"])
	assert.Equal(t, "11:22:33:44:55:66", home["bssid"])
	assert.Equal(t, float64(-42), home["signal"])
	assert.Equal(t, "Secured", home["security"])
	assert.Equal(t, "Safe", home["risk"])
	assert.Equal(t, true, home["connected"])
	assert.Equal(t, []any{float64(-42)}, home["signal_history"])

	open := body.Networks[1]
	assert.Equal(t, "Hidden SSID", open["ssid"])
	assert.Equal(t, "Open", open["security"])
	assert.Equal(t, "High", open["risk"])
	assert.Equal(t, false, open["connected"])
}

func TestGetScanHistoryGrows(t *testing.T) {
	h := newHarness(t, homeAdapter(), t.TempDir())

	var body wifiscand.ScanResponse
	for i := 0; i < 3; i++ {
		getJSON(t, h.server.URL+"/scan", &body)
	}
	require.NotEmpty(t, body.Networks)
	assert.Equal(t, []int{-42, -42, -42}, body.Networks[0].SignalHistory)
}

func TestGetScanFailuresStill200(t *testing.T) {
	tests := map[string]*stubAdapter{
		"no adapter":   {},
		"start failed": {ifaces: []string{"wlan0"}, triggerErr: errors.New("busy")},
		"zero found":   {ifaces: []string{"wlan0"}},
	}
	for name, a := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, a, t.TempDir())

			resp, err := http.Get(h.server.URL + "/scan")
			require.NoError(t, err)
			defer resp.Body.Close()
			b, _ := io.ReadAll(resp.Body)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{"networks":[]}`, string(b))
		})
	}
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	h := newHarness(t, homeAdapter(), t.TempDir())

	req, err := http.NewRequest(http.MethodOptions, h.server.URL+"/scan", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "X-Anything")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "GET")
}

func TestFrontendRoutes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<div id=root></div>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "static", "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "static", "css", "main.css"), []byte("body{}"), 0o644))
	h := newHarness(t, homeAdapter(), dir)

	for _, path := range []string{"/", "/some/client/route"} {
		resp, err := http.Get(h.server.URL + path)
		require.NoError(t, err)
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, string(b), "root", path)
	}

	resp, err := http.Get(h.server.URL + "/static/css/main.css")
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "body{}", string(b))
}

func TestFrontendMissing(t *testing.T) {
	h := newHarness(t, homeAdapter(), filepath.Join(t.TempDir(), "build"))

	var body map[string]string
	resp := getJSON(t, h.server.URL+"/dashboard", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Frontend not found", body["error"])
}

func TestGetStatus(t *testing.T) {
	h := newHarness(t, homeAdapter(), t.TempDir())

	var before map[string]any
	getJSON(t, h.server.URL+"/status", &before)
	assert.Equal(t, true, before["success"])
	assert.NotContains(t, before, "last_scan")
	assert.Equal(t, float64(0), before["history_addresses"])

	getJSON(t, h.server.URL+"/scan", nil)

	var after map[string]any
	getJSON(t, h.server.URL+"/status", &after)
	assert.Equal(t, float64(2), after["history_addresses"])
	last, ok := after["last_scan"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", last["outcome"])
	assert.Equal(t, "wlan0", last["interface"])
	assert.Equal(t, float64(2), last["networks"])
	process, ok := after["process"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), process["pid"])
}

func TestGetStatusShowsFailureCause(t *testing.T) {
	h := newHarness(t, &stubAdapter{ifaces: []string{"wlan0"}, triggerErr: errors.New("busy")}, t.TempDir())

	getJSON(t, h.server.URL+"/scan", nil)

	var status map[string]any
	getJSON(t, h.server.URL+"/status", &status)
	last := status["last_scan"].(map[string]any)
	assert.Equal(t, "scan_start_failed", last["outcome"])
	assert.Contains(t, last["error"], "busy")
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, homeAdapter(), t.TempDir())
	getJSON(t, h.server.URL+"/scan", nil)

	resp, err := http.Get(h.server.URL + "/metrics")
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	out := string(b)
	assert.Contains(t, out, `wifiscand_scans_total{outcome="ok"} 1`)
	assert.Contains(t, out, "wifiscand_networks_observed 2")
	assert.Contains(t, out, "wifiscand_open_networks 1")
	assert.Contains(t, out, "wifiscand_history_addresses 2")
}

func TestMethodNotAllowed(t *testing.T) {
	h := newHarness(t, homeAdapter(), t.TempDir())

	resp, err := http.Post(h.server.URL+"/scan", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestScanSocket(t *testing.T) {
	h := newHarness(t, homeAdapter(), t.TempDir())

	// a completed scan is replayed to new subscribers
	getJSON(t, h.server.URL+"/scan", nil)

	wsURL := "ws" + strings.TrimPrefix(h.server.URL, "http") + "/ws/scan"
	conn, err := websocket.Dial(wsURL, "", h.server.URL)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var initial struct {
		ID     string                 `json:"id"`
		Type   string                 `json:"type"`
		Update wifiscand.ScanResponse `json:"update"`
	}
	require.NoError(t, websocket.JSON.Receive(conn, &initial))
	assert.Equal(t, "scan", initial.Type)
	assert.Len(t, initial.Update.Networks, 2)

	// and live ones are pushed as they finish
	res := h.pool.ScanNow(context.Background())

	var pushed struct {
		ID     string                 `json:"id"`
		Update wifiscand.ScanResponse `json:"update"`
	}
	// the first scan's own update may still be in flight, skip it
	for i := 0; i < 2 && pushed.ID != res.ID; i++ {
		require.NoError(t, websocket.JSON.Receive(conn, &pushed))
	}
	assert.Equal(t, res.ID, pushed.ID)
	assert.Equal(t, []int{-42, -42}, pushed.Update.Networks[0].SignalHistory)
}

func TestSendErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	sendErrorResponse(rec, http.StatusServiceUnavailable, "Live updates are disabled")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":{"code":503,"message":"Live updates are disabled"}}`, rec.Body.String())
}
