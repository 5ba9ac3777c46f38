package http

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"payportal/internal/auth"
	"payportal/internal/records/memory"
	"payportal/internal/store"
)

func newDriverTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c := store.NewCache(memory.New(testTable()), time.Minute, time.Second)
	sessions := auth.NewSessionStore(time.Hour)
	srv := NewDriverServer(":0", c, sessions, testLogger())
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func newDriverClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func login(t *testing.T, client *http.Client, baseURL, driverID, bankPIN string) *http.Response {
	t.Helper()
	resp, err := client.PostForm(baseURL+"/login", url.Values{
		"driver_id": {driverID},
		"bank_pin":  {bankPIN},
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func TestDriverLoginAndDashboard(t *testing.T) {
	ts := newDriverTestServer(t)
	client := newDriverClient(t)

	resp := login(t, client, ts.URL, "5800905", "1234")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status after login = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "Welcome, Maria Santos") {
		t.Errorf("dashboard missing greeting")
	}
	// Both of the driver's trips are in scope, including the one whose
	// bank digits did not match the login.
	if !strings.Contains(body, "T-1001") || !strings.Contains(body, "T-1002") {
		t.Errorf("dashboard missing driver trips")
	}
	if strings.Contains(body, "T-2001") {
		t.Errorf("dashboard leaked another driver's trip")
	}
	// Net deposit: 120.50 + 80.00.
	if !strings.Contains(body, "$200.50") {
		t.Errorf("dashboard missing net deposit")
	}
	// Banking details never render on the driver portal.
	for _, secret := range []string{"SANTOS M", "021000021", "4321"} {
		if strings.Contains(body, secret) {
			t.Errorf("dashboard leaked banking detail %q", secret)
		}
	}
}

func TestDriverLoginFailures(t *testing.T) {
	ts := newDriverTestServer(t)

	tests := []struct {
		name     string
		driverID string
		bankPIN  string
		wantMsg  string
	}{
		{"unknown driver", "0000000", "1234", "Driver ID not found"},
		{"wrong bank digits", "5800905", "9999", "Incorrect Bank Account digits"},
		{"empty driver id", "", "1234", "Driver ID not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newDriverClient(t)
			resp := login(t, client, ts.URL, tt.driverID, tt.bankPIN)
			body := readBody(t, resp)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", resp.StatusCode)
			}
			if !strings.Contains(body, tt.wantMsg) {
				t.Errorf("body missing %q", tt.wantMsg)
			}
		})
	}
}

func TestDriverLoginTrimsInput(t *testing.T) {
	ts := newDriverTestServer(t)
	client := newDriverClient(t)

	resp := login(t, client, ts.URL, "  5800905  ", " 1234 ")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "Welcome, Maria Santos") {
		t.Errorf("trimmed login did not reach dashboard")
	}
}

func TestDriverLoginThrottled(t *testing.T) {
	ts := newDriverTestServer(t)
	client := newDriverClient(t)

	var last *http.Response
	for i := 0; i <= loginAttemptLimit; i++ {
		if last != nil {
			readBody(t, last)
		}
		last = login(t, client, ts.URL, "0000000", "1234")
	}
	body := readBody(t, last)
	if last.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", last.StatusCode)
	}
	if !strings.Contains(body, "Too many attempts") {
		t.Errorf("throttled response missing message")
	}
}

func TestDriverDashboardFilters(t *testing.T) {
	ts := newDriverTestServer(t)
	client := newDriverClient(t)
	readBody(t, login(t, client, ts.URL, "5800905", "1234"))

	resp, err := client.Get(ts.URL + "/?trip_id=T-1002")
	if err != nil {
		t.Fatalf("GET dashboard: %v", err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "T-1002") {
		t.Errorf("trip filter missing matching trip")
	}
	if strings.Contains(body, "T-1001") {
		t.Errorf("trip filter leaked non-matching trip")
	}
	// Statement follows the filter: only the $80.00 trip remains.
	if !strings.Contains(body, "$80.00") {
		t.Errorf("filtered statement missing net deposit")
	}
}

func TestDriverStatementPartialRequiresSession(t *testing.T) {
	ts := newDriverTestServer(t)

	resp, err := http.Get(ts.URL + "/ui/statement")
	if err != nil {
		t.Fatalf("GET statement: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestDriverLogout(t *testing.T) {
	ts := newDriverTestServer(t)
	client := newDriverClient(t)
	readBody(t, login(t, client, ts.URL, "5800905", "1234"))

	resp, err := client.PostForm(ts.URL+"/logout", nil)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	readBody(t, resp)

	resp, err = client.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET after logout: %v", err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Sign in with your driver ID") {
		t.Errorf("expected login page after logout")
	}
}
