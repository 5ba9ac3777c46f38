package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"payportal/internal/core"
	"payportal/internal/log"
	"payportal/internal/records/memory"
	"payportal/internal/store"
)

func testTable() core.Table {
	header := []string{
		"trip_id", "driver_num", "first_name", "last_name", "job_date",
		"total_paid", "base_fare", "wait_time_pay", "stops_amount", "tolls",
		"tips", "total_fare", "coop_commission", "cash_collected", "darter",
		"status", "nacha_title", "account", "bank", "routing",
	}
	rows := [][]string{
		{"T-1001", "5800905", "Maria", "Santos", "2026-08-01", "$120.50", "$100.00", "$5.00", "$2.50", "$8.00", "$5.00", "$120.50", "$12.05", "$0.00", "$0.00", "Processed", "SANTOS M", "4321", "1234", "021000021"},
		{"T-1002", "5800905", "Maria", "Santos", "2026-08-03", "$80.00", "$70.00", "$0.00", "$0.00", "$5.00", "$5.00", "$80.00", "$8.00", "$20.00", "$0.00", "Pending", "SANTOS M", "4321", "1234", "021000021"},
		{"T-2001", "6100222", "James", "Okafor", "2026-08-02", "$95.25", "$85.00", "$2.25", "$0.00", "$3.00", "$5.00", "$95.25", "$9.52", "$0.00", "$0.00", "Failed", "OKAFOR J", "9876", "5678", "021000021"},
	}
	return core.Clean(header, rows)
}

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newAdminTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c := store.NewCache(memory.New(testTable()), time.Minute, time.Second)
	srv := NewAdminServer(":0", c, testLogger())
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestAdminIndex(t *testing.T) {
	ts := newAdminTestServer(t)

	resp, body := get(t, ts.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	for _, want := range []string{"Trip Payments Report", "T-1001", "T-2001", "SANTOS M", "badge-green", "badge-yellow", "badge-red"} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
	// Net deposit over all three rows: 120.50 + 80.00 + 95.25.
	if !strings.Contains(body, "$295.75") {
		t.Errorf("index body missing net deposit total")
	}
}

func TestAdminResultsStatusFilter(t *testing.T) {
	ts := newAdminTestServer(t)

	resp, body := get(t, ts.URL+"/ui/results?status=Processed")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "T-1001") {
		t.Errorf("filtered results missing processed row")
	}
	for _, excluded := range []string{"T-1002", "T-2001"} {
		if strings.Contains(body, excluded) {
			t.Errorf("filtered results leaked %s", excluded)
		}
	}
}

func TestAdminResultsAllIsNoFilter(t *testing.T) {
	ts := newAdminTestServer(t)

	_, body := get(t, ts.URL+"/ui/results?status=All&nacha=All&account=All")
	for _, want := range []string{"T-1001", "T-1002", "T-2001"} {
		if !strings.Contains(body, want) {
			t.Errorf("results missing %s with All filters", want)
		}
	}
}

func TestAdminResultsSingleDateBoundIgnored(t *testing.T) {
	ts := newAdminTestServer(t)

	_, body := get(t, ts.URL+"/ui/results?from=2026-08-03")
	for _, want := range []string{"T-1001", "T-1002", "T-2001"} {
		if !strings.Contains(body, want) {
			t.Errorf("single-bound range should not filter, missing %s", want)
		}
	}

	_, body = get(t, ts.URL+"/ui/results?from=2026-08-03&to=2026-08-05")
	if !strings.Contains(body, "T-1002") {
		t.Errorf("range results missing in-range row")
	}
	if strings.Contains(body, "T-1001") || strings.Contains(body, "T-2001") {
		t.Errorf("range results leaked out-of-range rows")
	}
}

func TestAdminNameFilter(t *testing.T) {
	ts := newAdminTestServer(t)

	_, body := get(t, ts.URL+"/ui/results?name=maria+santos")
	if !strings.Contains(body, "T-1001") || !strings.Contains(body, "T-1002") {
		t.Errorf("name filter missing driver rows")
	}
	if strings.Contains(body, "T-2001") {
		t.Errorf("name filter leaked other driver")
	}
}

func TestAdminNotFound(t *testing.T) {
	ts := newAdminTestServer(t)

	resp, _ := get(t, ts.URL+"/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAdminSecurityHeaders(t *testing.T) {
	ts := newAdminTestServer(t)

	resp, _ := get(t, ts.URL+"/")
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Errorf("missing X-Request-ID header")
	}
}

type failingSource struct{}

func (failingSource) Fetch(context.Context) (core.Table, error) {
	return core.Table{}, errors.New("upstream down")
}

func TestAdminUnavailable(t *testing.T) {
	c := store.NewCache(failingSource{}, time.Minute, time.Second)
	srv := NewAdminServer(":0", c, testLogger())
	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	resp, body := get(t, ts.URL+"/")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	if !strings.Contains(body, "Data unavailable") {
		t.Errorf("unavailable page missing message")
	}

	resp, _ = get(t, ts.URL+"/readyz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("readyz status = %d, want 503", resp.StatusCode)
	}
}

func TestAdminHealthz(t *testing.T) {
	ts := newAdminTestServer(t)

	resp, body := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, `"ok"`) {
		t.Errorf("healthz body = %q", body)
	}
}
