package http

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"payportal/internal/cache"
	"payportal/internal/core"
	"payportal/internal/log"
	"payportal/internal/store"
)

const (
	resultsCacheSize = 128
	resultsCacheTTL  = time.Minute
)

// AdminServer serves the internal reporting portal: the full dataset with
// ad-hoc filtering and aggregation. It sits behind the office network; it
// has no login of its own.
type AdminServer struct {
	*Server
	records *store.Cache
	results *cache.LRU[[]byte]
}

func NewAdminServer(addr string, records *store.Cache, logger *log.Logger) *AdminServer {
	s := &AdminServer{
		records: records,
		results: cache.NewLRU[[]byte](resultsCacheSize, resultsCacheTTL),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ui/results", s.handleResults)
	mux.HandleFunc("/healthz", handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)
	mux.Handle("/static/", staticHandler())

	s.Server = newServer(addr, mux, logger.WithComponent(log.ComponentHTTP))
	return s
}

// ResultsCache exposes the rendered-results cache for cleanup scheduling.
func (s *AdminServer) ResultsCache() *cache.LRU[[]byte] { return s.results }

type adminPage struct {
	Unavailable bool

	// Echoed filter state.
	Name     string
	DriverID string
	TripID   string
	Nacha    string
	Account  string
	Status   string
	From     string
	To       string

	NachaOptions   []string
	AccountOptions []string
	StatusOptions  []string

	Results template.HTML
}

type adminResults struct {
	Rows     []rowView
	Count    int
	Total    int
	Summary  statementView
	Filtered bool
}

func (s *AdminServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tbl, err := s.records.Table(r.Context())
	if err != nil {
		s.logger.Error("dataset unavailable", log.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		s.render(w, "admin.html", adminPage{Unavailable: true})
		return
	}

	q := r.URL.Query()
	page := adminPage{
		Name:           q.Get("name"),
		DriverID:       q.Get("driver_id"),
		TripID:         q.Get("trip_id"),
		Nacha:          q.Get("nacha"),
		Account:        q.Get("account"),
		Status:         q.Get("status"),
		From:           q.Get("from"),
		To:             q.Get("to"),
		NachaOptions:   distinctValues(tbl.Records, func(r core.TripRecord) string { return r.NachaTitle }),
		AccountOptions: distinctValues(tbl.Records, func(r core.TripRecord) string { return r.Account }),
		StatusOptions:  distinctValues(tbl.Records, func(r core.TripRecord) string { return r.Status }),
		Results:        template.HTML(s.renderResults(tbl, r)),
	}
	s.render(w, "admin.html", page)
}

func (s *AdminServer) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tbl, err := s.records.Table(r.Context())
	if err != nil {
		http.Error(w, "dataset unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.renderResults(tbl, r))
}

// renderResults filters, aggregates and renders the results partial. The
// rendered bytes are cached per query string; the cache key folds in the
// fetch time so a dataset refresh never serves stale results.
func (s *AdminServer) renderResults(tbl core.Table, r *http.Request) []byte {
	key := fmt.Sprintf("%d|%s", s.records.FetchedAt().UnixNano(), r.URL.Query().Encode())
	if body, ok := s.results.Get(key); ok {
		return body
	}

	crit := criteriaFromQuery(r.URL.Query())
	filtered := core.Filter(tbl, crit)
	data := adminResults{
		Rows:     rowViews(filtered.Records),
		Count:    len(filtered.Records),
		Total:    len(tbl.Records),
		Summary:  statementViewFrom(core.Summarize(filtered.Records)),
		Filtered: !crit.IsZero(),
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "admin_results.html", data); err != nil {
		s.logger.Error("results render failed", log.FieldError, err)
		return []byte("<p class=\"error\">failed to render results</p>")
	}
	body := buf.Bytes()
	s.results.Set(key, body)
	return body
}

func (s *AdminServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.records.Table(r.Context()); err != nil {
		http.Error(w, "dataset unavailable", http.StatusServiceUnavailable)
		return
	}
	handleHealthz(w, r)
}
