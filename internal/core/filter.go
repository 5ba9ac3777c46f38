package core

import "strings"

// ExactAll is the select-box value meaning "no filter" for exact-match
// criteria. An empty string means the same.
const ExactAll = "All"

// Criteria is a conjunction of independently optional filters. The zero
// value matches everything.
type Criteria struct {
	// Name matches case-insensitively against "first_name last_name" when
	// both columns exist, otherwise against the string form of every field.
	Name string

	// DriverID and TripID are case-insensitive substring matches on the
	// respective identifier.
	DriverID string
	TripID   string

	// Exact matches; "" or "All" disables the filter.
	NachaTitle string
	Account    string
	Status     string

	// Date range on job_date, inclusive on both ends. Applied only when both
	// bounds are set: a single bound is a no-op. That mirrors the original
	// portal's date picker and is kept on purpose.
	From Date
	To   Date
}

// IsZero reports whether no filter is active.
func (c Criteria) IsZero() bool {
	return c.Name == "" && c.DriverID == "" && c.TripID == "" &&
		!exactActive(c.NachaTitle) && !exactActive(c.Account) && !exactActive(c.Status) &&
		!c.dateRangeActive()
}

func (c Criteria) dateRangeActive() bool {
	return !c.From.IsEmpty() && !c.To.IsEmpty()
}

func exactActive(v string) bool {
	return v != "" && v != ExactAll
}

// Filter returns the subset of tbl matching every active criterion. The
// input table is never mutated; the result shares the same ColumnSet.
func Filter(tbl Table, c Criteria) Table {
	if c.IsZero() {
		return tbl
	}
	out := Table{Columns: tbl.Columns}
	for _, r := range tbl.Records {
		if matches(tbl.Columns, r, c) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

func matches(cols ColumnSet, r TripRecord, c Criteria) bool {
	if c.Name != "" && !matchesName(cols, r, c.Name) {
		return false
	}
	if c.DriverID != "" && !containsFold(r.DriverNum, c.DriverID) {
		return false
	}
	if c.TripID != "" && !containsFold(r.TripID, c.TripID) {
		return false
	}
	if !matchesExact(cols, ColNachaTitle, r.NachaTitle, c.NachaTitle) {
		return false
	}
	if !matchesExact(cols, ColAccount, r.Account, c.Account) {
		return false
	}
	if !matchesExact(cols, ColStatus, r.Status, c.Status) {
		return false
	}
	if c.dateRangeActive() {
		if r.JobDate.IsEmpty() {
			return false
		}
		d := r.JobDate.DayStart().Time
		if d.Before(c.From.DayStart().Time) || d.After(c.To.DayStart().Time) {
			return false
		}
	}
	return true
}

func matchesName(cols ColumnSet, r TripRecord, query string) bool {
	if cols.HasNames() {
		return containsFold(r.FullName(), query)
	}
	// Fallback global match across every field.
	for _, f := range r.fields() {
		if containsFold(f, query) {
			return true
		}
	}
	return false
}

// matchesExact applies an exact-match criterion. An active filter against an
// absent column is an automatic non-match.
func matchesExact(cols ColumnSet, col, value, want string) bool {
	if !exactActive(want) {
		return true
	}
	if !cols.Has(col) {
		return false
	}
	return value == want
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
