package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sweeney/truck-scale/internal/journal"
	"github.com/sweeney/truck-scale/internal/logic"
	"github.com/sweeney/truck-scale/internal/status"
)

type fakeLoads struct {
	entries []journal.Entry
	err     error
	limit   int
}

func (f *fakeLoads) Recent(_ context.Context, limit int) ([]journal.Entry, error) {
	f.limit = limit
	return f.entries, f.err
}

func newTestServer(t *testing.T, loads LoadLister, metrics http.Handler) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PollMs:      100,
		DebounceMs:  200,
		HeartbeatMs: 900000,
		NoiseGate:   0.5,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":80",
	}
	tr := status.NewTracker(start, cfg)
	logger, _ := test.NewNullLogger()
	srv := New(":0", tr, loads, metrics, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode JSON: %v", err)
		}
	}
	return resp
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, nil, nil)
	tr.Update(status.View{
		Mode:          logic.ModeNormal,
		Detection:     logic.StateLoaded,
		CurrentWeight: 1234.56,
		Totals:        logic.Totals{LoadCount: 5, TotalWeight: 12500},
		Factor:        700,
	})
	tr.SetMQTTConnected(true)

	var sj status.StatusJSON
	resp := getJSON(t, ts.URL+"/index.json", &sj)

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
	s := sj.Status
	if s.Mode != "NORMAL" || s.State != "LOADED" {
		t.Errorf("mode/state: got %q %q", s.Mode, s.State)
	}
	if s.CurrentKg != 1234.6 {
		t.Errorf("current_kg: got %v, want 1234.6", s.CurrentKg)
	}
	if s.LoadCount != 5 || s.TotalKg != 12500 || s.TotalTons != 12.5 {
		t.Errorf("totals: %d %v %v", s.LoadCount, s.TotalKg, s.TotalTons)
	}
	if !s.MQTT.Connected || s.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("mqtt: %+v", s.MQTT)
	}
	if s.Config.PollMs != 100 || s.Config.NoiseGate != 0.5 {
		t.Errorf("config: %+v", s.Config)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t, nil, nil)
	tr.SetNetwork(&status.NetworkInfo{
		Type:   "wifi",
		IP:     "192.168.1.42",
		Status: "connected",
		SSID:   "Yard",
	})

	var sj status.StatusJSON
	getJSON(t, ts.URL+"/index.json", &sj)

	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t, nil, nil)
	tr.Update(status.View{
		Mode:          logic.ModeCalibrating,
		Detection:     logic.StateEmpty,
		CurrentWeight: 42.06,
		Totals:        logic.Totals{LoadCount: 3, TotalWeight: 4250},
		Entry:         "12.5",
		Notice:        "Enter known weight",
	})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"42.1 kg", "4.25 t", "CALIBRATING", "12.5", "Enter known weight"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t, nil, nil)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t, nil, nil)

	for _, path := range []string{"/nonexistent", "/loads.json", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != 404 {
			t.Errorf("%s: got %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestLoadsEndpoint(t *testing.T) {
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	loads := &fakeLoads{entries: []journal.Entry{
		{ID: 2, OccurredAt: at, Event: "LOAD_COMPLETED", WeightKg: 1500, LoadCount: 2, TotalKg: 2500},
		{ID: 1, OccurredAt: at.Add(-time.Hour), Event: "LOAD_COMPLETED", WeightKg: 1000, LoadCount: 1, TotalKg: 1000},
	}}
	ts, _ := newTestServer(t, loads, nil)

	var lj LoadsJSON
	resp := getJSON(t, ts.URL+"/loads.json", &lj)
	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	if len(lj.Loads) != 2 || lj.Loads[0].WeightKg != 1500 || !lj.Loads[0].OccurredAt.Equal(at) {
		t.Errorf("loads: %+v", lj.Loads)
	}
	if loads.limit != 50 {
		t.Errorf("default limit: got %d", loads.limit)
	}

	getJSON(t, ts.URL+"/loads.json?limit=10000", nil)
	if loads.limit != maxLoads {
		t.Errorf("limit should be capped at %d, got %d", maxLoads, loads.limit)
	}
}

func TestLoadsEndpointErrors(t *testing.T) {
	loads := &fakeLoads{}
	ts, _ := newTestServer(t, loads, nil)

	if resp := getJSON(t, ts.URL+"/loads.json?limit=abc", nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit: got %d", resp.StatusCode)
	}

	var lj LoadsJSON
	getJSON(t, ts.URL+"/loads.json", &lj)
	if lj.Loads == nil {
		t.Error("empty journal should encode as an empty list")
	}

	loads.err = errors.New("database is locked")
	if resp := getJSON(t, ts.URL+"/loads.json", nil); resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("journal error: got %d", resp.StatusCode)
	}
}

func TestMetricsMounted(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "truck_scale_load_count 3\n")
	})
	ts, _ := newTestServer(t, nil, metrics)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "truck_scale_load_count 3") {
		t.Errorf("unexpected body %q", body)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t, nil, nil)

	var sj1 status.StatusJSON
	getJSON(t, ts.URL+"/index.json", &sj1)
	if sj1.Status.LoadCount != 0 || sj1.Status.MQTT.Connected {
		t.Errorf("initial: %+v", sj1.Status)
	}

	tr.Update(status.View{Mode: logic.ModeNormal, Detection: logic.StateEmpty, Totals: logic.Totals{LoadCount: 1, TotalWeight: 900}})
	tr.SetMQTTConnected(true)

	var sj2 status.StatusJSON
	getJSON(t, ts.URL+"/index.json", &sj2)
	if sj2.Status.LoadCount != 1 || sj2.Status.TotalKg != 900 {
		t.Errorf("totals after update: %+v", sj2.Status)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}
