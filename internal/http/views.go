package http

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"payportal/internal/core"
)

const dayLayout = "2006-01-02"

// criteriaFromQuery builds filter criteria from form/query parameters.
// Unparseable dates are treated as unset, which in turn disables the
// range (both bounds are required for it to apply).
func criteriaFromQuery(q url.Values) core.Criteria {
	return core.Criteria{
		Name:       strings.TrimSpace(q.Get("name")),
		DriverID:   strings.TrimSpace(q.Get("driver_id")),
		TripID:     strings.TrimSpace(q.Get("trip_id")),
		NachaTitle: strings.TrimSpace(q.Get("nacha")),
		Account:    strings.TrimSpace(q.Get("account")),
		Status:     strings.TrimSpace(q.Get("status")),
		From:       parseDay(q.Get("from")),
		To:         parseDay(q.Get("to")),
	}
}

func parseDay(s string) core.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}
	}
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return core.Date{}
	}
	return core.Date{Time: t}
}

// rowView is a trip record formatted for rendering. Both portals use the
// same shape; the driver templates simply omit the banking cells.
type rowView struct {
	TripID    string
	DriverNum string
	Name      string
	JobDate   string

	TotalPaid      string
	TotalFare      string
	BaseFare       string
	WaitTimePay    string
	StopsAmount    string
	Tolls          string
	Tips           string
	CoopCommission string
	CashCollected  string
	Darter         string

	Status string
	Tag    string

	NachaTitle string
	Account    string
	Bank       string
	Routing    string
}

func rowViews(records []core.TripRecord) []rowView {
	out := make([]rowView, 0, len(records))
	for _, r := range records {
		jobDate := ""
		if !r.JobDate.IsEmpty() {
			jobDate = r.JobDate.Format(dayLayout)
		}
		out = append(out, rowView{
			TripID:         r.TripID,
			DriverNum:      r.DriverNum,
			Name:           r.FullName(),
			JobDate:        jobDate,
			TotalPaid:      core.FormatDollars(r.TotalPaid.Cents),
			TotalFare:      core.FormatDollars(r.TotalFare.Cents),
			BaseFare:       core.FormatDollars(r.BaseFare.Cents),
			WaitTimePay:    core.FormatDollars(r.WaitTimePay.Cents),
			StopsAmount:    core.FormatDollars(r.StopsAmount.Cents),
			Tolls:          core.FormatDollars(r.Tolls.Cents),
			Tips:           core.FormatDollars(r.Tips.Cents),
			CoopCommission: core.FormatDollars(r.CoopCommission.Cents),
			CashCollected:  core.FormatDollars(r.CashCollected.Cents),
			Darter:         core.FormatDollars(r.Darter.Cents),
			Status:         r.Status,
			Tag:            badgeClass(core.StyleFor(r)),
			NachaTitle:     r.NachaTitle,
			Account:        r.Account,
			Bank:           r.Bank,
			Routing:        r.Routing,
		})
	}
	return out
}

// badgeClass maps a status tag to its CSS class.
func badgeClass(tag core.StatusTag) string {
	switch tag {
	case core.StatusProcessed:
		return "badge-green"
	case core.StatusPending:
		return "badge-yellow"
	case core.StatusFailed:
		return "badge-red"
	default:
		return "badge-gray"
	}
}

// statementView is an aggregated summary formatted for rendering.
// Commission and cash collected are deductions and render parenthesized.
type statementView struct {
	BaseFare       string
	WaitTimePay    string
	StopsAmount    string
	Tolls          string
	Tips           string
	GrossFare      string
	CoopCommission string
	CashCollected  string
	TotalPaid      string
	NetDeposit     string
	TripCount      int
}

func statementViewFrom(s core.Statement) statementView {
	return statementView{
		BaseFare:       core.FormatDollars(s.BaseFare.Cents),
		WaitTimePay:    core.FormatDollars(s.WaitTimePay.Cents),
		StopsAmount:    core.FormatDollars(s.StopsAmount.Cents),
		Tolls:          core.FormatDollars(s.Tolls.Cents),
		Tips:           core.FormatDollars(s.Tips.Cents),
		GrossFare:      core.FormatDollars(s.GrossFare.Cents),
		CoopCommission: core.FormatDeduction(s.CoopCommission.Cents),
		CashCollected:  core.FormatDeduction(s.CashCollected.Cents),
		TotalPaid:      core.FormatDollars(s.TotalPaid.Cents),
		NetDeposit:     core.FormatDollars(s.NetDeposit.Cents),
		TripCount:      s.TripCount,
	}
}

// distinctValues collects the sorted distinct non-empty values of one
// record field, for populating a select box.
func distinctValues(records []core.TripRecord, get func(core.TripRecord) string) []string {
	seen := make(map[string]bool)
	for _, r := range records {
		if v := strings.TrimSpace(get(r)); v != "" {
			seen[v] = true
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
