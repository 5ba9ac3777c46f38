package http

import (
	"net/http"
	"time"

	"payportal/internal/auth"
	"payportal/internal/core"
	"payportal/internal/log"
	"payportal/internal/store"
)

const (
	loginAttemptLimit  = 10
	loginAttemptWindow = 5 * time.Minute
)

// User-facing login failure messages. The two credential failures are
// deliberately distinct; see the auth package.
const (
	msgDriverNotFound = "Driver ID not found"
	msgBankMismatch   = "Incorrect Bank Account digits"
	msgThrottled      = "Too many attempts. Please wait a few minutes and try again."
	msgUnavailable    = "Trip data is temporarily unavailable. Please try again shortly."
)

// DriverServer serves the public driver portal: login with driver ID plus
// bank last-4, then a statement scoped to that driver's rows.
type DriverServer struct {
	*Server
	records  *store.Cache
	sessions *auth.SessionStore
	limiter  *rateLimiter
}

func NewDriverServer(addr string, records *store.Cache, sessions *auth.SessionStore, logger *log.Logger) *DriverServer {
	s := &DriverServer{
		records:  records,
		sessions: sessions,
		limiter:  newRateLimiter(loginAttemptLimit, loginAttemptWindow),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/ui/statement", s.handleStatement)
	mux.HandleFunc("/healthz", handleHealthz)
	mux.Handle("/static/", staticHandler())

	s.Server = newServer(addr, mux, logger.WithComponent(log.ComponentHTTP))
	return s
}

type loginPage struct {
	Error string
}

type dashboardPage struct {
	DriverName string
	DriverNum  string

	TripQuery string
	From      string
	To        string

	Statement statementView
	Rows      []rowView
	Count     int
}

func (s *DriverServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := s.session(r)
	if !ok {
		s.render(w, "driver_login.html", loginPage{})
		return
	}

	page, err := s.buildDashboard(r, sess)
	if err != nil {
		s.logger.Error("dataset unavailable", log.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		s.render(w, "driver_login.html", loginPage{Error: msgUnavailable})
		return
	}
	s.render(w, "driver_dashboard.html", page)
}

func (s *DriverServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ip := clientIP(r)
	if !s.limiter.allow(ip) {
		s.logger.Warn("login throttled", log.FieldClientIP, ip, log.FieldOperation, log.OpLogin)
		w.WriteHeader(http.StatusTooManyRequests)
		s.render(w, "driver_login.html", loginPage{Error: msgThrottled})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	driverID := r.PostFormValue("driver_id")
	bankPIN := r.PostFormValue("bank_pin")

	tbl, err := s.records.Table(r.Context())
	if err != nil {
		s.logger.Error("dataset unavailable", log.FieldError, err, log.FieldOperation, log.OpLogin)
		w.WriteHeader(http.StatusServiceUnavailable)
		s.render(w, "driver_login.html", loginPage{Error: msgUnavailable})
		return
	}

	scope, err := auth.Authenticate(tbl, driverID, bankPIN)
	if err != nil {
		msg := msgDriverNotFound
		if err == auth.ErrBankMismatch {
			msg = msgBankMismatch
		}
		s.logger.Warn("login rejected", log.FieldClientIP, ip, log.FieldOperation, log.OpLogin)
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, "driver_login.html", loginPage{Error: msg})
		return
	}

	s.limiter.reset(ip)
	sess := s.sessions.Create(scope)
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Info("driver logged in", log.FieldDriverNum, scope.DriverNum, log.FieldOperation, log.OpLogin)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *DriverServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if c, err := r.Cookie(auth.CookieName); err == nil {
		s.sessions.Delete(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleStatement rerenders the statement block for filter changes
// without a full page load.
func (s *DriverServer) handleStatement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := s.session(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	page, err := s.buildDashboard(r, sess)
	if err != nil {
		http.Error(w, "dataset unavailable", http.StatusServiceUnavailable)
		return
	}
	s.render(w, "driver_statement.html", page)
}

func (s *DriverServer) session(r *http.Request) (auth.Session, bool) {
	c, err := r.Cookie(auth.CookieName)
	if err != nil {
		return auth.Session{}, false
	}
	return s.sessions.Get(c.Value)
}

// buildDashboard re-scopes the driver's rows from the current table, so a
// dataset refresh shows up on the next request, then applies the driver's
// own trip/date filters.
func (s *DriverServer) buildDashboard(r *http.Request, sess auth.Session) (dashboardPage, error) {
	tbl, err := s.records.Table(r.Context())
	if err != nil {
		return dashboardPage{}, err
	}

	scoped := core.Table{Records: sess.Scope.Rows(tbl), Columns: tbl.Columns}

	q := r.URL.Query()
	crit := core.Criteria{
		TripID: q.Get("trip_id"),
		From:   parseDay(q.Get("from")),
		To:     parseDay(q.Get("to")),
	}
	filtered := core.Filter(scoped, crit)

	return dashboardPage{
		DriverName: sess.Scope.DriverName,
		DriverNum:  sess.Scope.DriverNum,
		TripQuery:  q.Get("trip_id"),
		From:       q.Get("from"),
		To:         q.Get("to"),
		Statement:  statementViewFrom(core.Summarize(filtered.Records)),
		Rows:       rowViews(filtered.Records),
		Count:      len(filtered.Records),
	}, nil
}
