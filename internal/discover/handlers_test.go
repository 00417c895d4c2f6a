package discover

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/HerbHall/netseed/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// newTestModule wires a Module with in-memory SQLite and a fake inventory.
func newTestModule(t *testing.T) (*Module, *fakeInventory) {
	t.Helper()

	inv := newFakeInventory()
	m := New(testDataset(), inv, testutil.NewStore(t), NewMetrics(prometheus.NewRegistry()), 0)

	if err := m.Init(viper.New(), zap.NewNop()); err != nil {
		t.Fatalf("init module: %v", err)
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start module: %v", err)
	}
	t.Cleanup(func() { _ = m.Stop() })

	return m, inv
}

func postRun(t *testing.T, m *Module, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	m.handleRun(w, req)
	return w
}

func TestHandleRun_CIDR(t *testing.T) {
	m, inv := newTestModule(t)

	w := postRun(t, m, `{"cidr": "10.0.0.0/29"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var report Report
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.RunID == "" {
		t.Error("expected non-empty run id")
	}
	if len(report.Scanned) != 6 {
		t.Fatalf("scanned = %v, want 6 hosts", report.Scanned)
	}
	if report.Scanned[0] != "10.0.0.1" || report.Scanned[5] != "10.0.0.6" {
		t.Errorf("scanned = %v, want sorted 10.0.0.1-10.0.0.6", report.Scanned)
	}
	if len(report.Created) != 1 || report.Created[0].IP != "10.0.0.5" {
		t.Errorf("created = %+v, want the one target with data", report.Created)
	}
	if len(report.Skipped) != 5 {
		t.Errorf("skipped = %d, want 5", len(report.Skipped))
	}
	if len(inv.createdDevices) != 1 {
		t.Errorf("device creates = %d, want 1", len(inv.createdDevices))
	}
}

func TestHandleRun_ExplicitIPs(t *testing.T) {
	m, _ := newTestModule(t)

	w := postRun(t, m, `{"ips": ["10.0.0.5", "10.0.0.1"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var report Report
	json.NewDecoder(w.Body).Decode(&report)
	if len(report.Scanned) != 2 || report.Scanned[0] != "10.0.0.1" {
		t.Errorf("scanned = %v, want sorted pair", report.Scanned)
	}
}

func TestHandleRun_ValidationFailures(t *testing.T) {
	m, inv := newTestModule(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"cidr": `},
		{"empty request", `{}`},
		{"bad address", `{"ips": ["999.1.1.1"]}`},
		{"bad cidr", `{"cidr": "10.0.0.0/99"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postRun(t, m, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body: %s", w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("content-type = %q, want problem+json", ct)
			}
		})
	}

	if len(inv.createdDevices) != 0 {
		t.Error("rejected requests must not reach the inventory")
	}
}

func TestHandleRun_NamePrefixAccepted(t *testing.T) {
	m, _ := newTestModule(t)

	w := postRun(t, m, `{"ips": ["10.0.0.5"], "name_prefix": "lab-"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var report Report
	json.NewDecoder(w.Body).Decode(&report)
	// The prefix is reserved for future naming customization; the device name
	// still comes from the discovery record.
	if len(report.Created) != 1 || report.Created[0].Device != "core-sw-01" {
		t.Errorf("created = %+v, want unprefixed core-sw-01", report.Created)
	}
}

func TestHandleRun_PersistsRunHistory(t *testing.T) {
	m, _ := newTestModule(t)

	w := postRun(t, m, `{"ips": ["10.0.0.5"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	var report Report
	json.NewDecoder(w.Body).Decode(&report)

	// List endpoint shows the run.
	listReq := httptest.NewRequest("GET", "/runs", nil)
	listW := httptest.NewRecorder()
	m.handleListRuns(listW, listReq)
	if listW.Code != http.StatusOK {
		t.Fatalf("list status = %d", listW.Code)
	}
	var runs []Run
	json.NewDecoder(listW.Body).Decode(&runs)
	if len(runs) != 1 || runs[0].ID != report.RunID {
		t.Fatalf("runs = %+v, want the finished run", runs)
	}
	if runs[0].CreatedCount != 1 || runs[0].TargetCount != 1 {
		t.Errorf("counts = %+v, want created=1 targets=1", runs[0])
	}

	// Get endpoint returns the full report.
	getReq := httptest.NewRequest("GET", "/runs/"+report.RunID, nil)
	getReq.SetPathValue("id", report.RunID)
	getW := httptest.NewRecorder()
	m.handleGetRun(getW, getReq)
	if getW.Code != http.StatusOK {
		t.Fatalf("get status = %d; body: %s", getW.Code, getW.Body.String())
	}
	var stored Run
	json.NewDecoder(getW.Body).Decode(&stored)
	if stored.Report == nil || len(stored.Report.Scanned) != 1 {
		t.Errorf("stored report = %+v, want full scanned list", stored.Report)
	}
}

func TestHandleGetRun_Missing(t *testing.T) {
	m, _ := newTestModule(t)

	req := httptest.NewRequest("GET", "/runs/nope", nil)
	req.SetPathValue("id", "nope")
	w := httptest.NewRecorder()
	m.handleGetRun(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
