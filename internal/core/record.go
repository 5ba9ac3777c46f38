package core

import (
	"strings"
	"time"
)

// Canonical source column names. The Cleaner is the only place that reads
// them from raw rows; everything else works on typed records.
const (
	ColTripID         = "trip_id"
	ColDriverNum      = "driver_num"
	ColFirstName      = "first_name"
	ColLastName       = "last_name"
	ColJobDate        = "job_date"
	ColTotalPaid      = "total_paid"
	ColTotalFare      = "total_fare"
	ColCoopCommission = "coop_commission"
	ColTips           = "tips"
	ColTolls          = "tolls"
	ColBaseFare       = "base_fare"
	ColWaitTimePay    = "wait_time_pay"
	ColStopsAmount    = "stops_amount"
	ColCashCollected  = "cash_collected"
	ColDarter         = "darter"
	ColStatus         = "status"
	ColNachaTitle     = "nacha_title"
	ColAccount        = "account"
	ColBank           = "bank"
	ColRouting        = "routing"
)

// MoneyColumns lists the columns cleaned as currency amounts, in the order
// they appear on statements.
var MoneyColumns = []string{
	ColTotalPaid, ColTotalFare, ColCoopCommission, ColTips, ColTolls,
	ColBaseFare, ColWaitTimePay, ColStopsAmount, ColCashCollected, ColDarter,
}

type (
	// Date is a calendar date. The zero value means "unknown": the export
	// regularly carries blank or garbage job_date cells and those rows are
	// kept, not dropped.
	Date struct {
		time.Time
	}

	// Money is a currency amount in cents. Sums of cleaned columns stay
	// exact; floats only appear at the formatting edge.
	Money struct {
		Cents int64
	}

	// TripRecord is one payment event for one driver's completed job.
	TripRecord struct {
		TripID    string
		DriverNum string
		FirstName string
		LastName  string
		JobDate   Date

		TotalPaid      Money
		TotalFare      Money
		CoopCommission Money
		Tips           Money
		Tolls          Money
		BaseFare       Money
		WaitTimePay    Money
		StopsAmount    Money
		CashCollected  Money
		Darter         Money

		Status     string
		NachaTitle string
		Account    string
		Bank       string
		Routing    string
	}

	// ColumnSet records which source columns were present in the loaded
	// table. Presence is decided once, at the load boundary; filters consult
	// it instead of sniffing individual cells.
	ColumnSet map[string]bool

	// Table is one wholesale load of the payments dataset. It is treated as
	// immutable: filtering produces views, never mutations, and a refresh
	// replaces the whole table.
	Table struct {
		Records []TripRecord
		Columns ColumnSet
	}
)

// NewDate builds a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty reports whether the date is unknown.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// DayStart truncates the date to its calendar day, discarding any time
// component a timestamped export may carry.
func (d Date) DayStart() Date {
	if d.IsZero() {
		return d
	}
	y, m, day := d.Date()
	return NewDate(y, int(m), day)
}

func (cs ColumnSet) Has(name string) bool {
	return cs[name]
}

// HasNames reports whether both display-name columns exist. When they do not,
// the name filter falls back to a global match across every field.
func (cs ColumnSet) HasNames() bool {
	return cs.Has(ColFirstName) && cs.Has(ColLastName)
}

// FullName is the display name used by the name filter and the driver
// portal greeting.
func (r TripRecord) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// StatusTag classifies a record's payment status for presentation. The
// rendering layer maps tags to badge colors; the core never emits styling.
type StatusTag string

const (
	StatusProcessed StatusTag = "Processed"
	StatusPending   StatusTag = "Pending"
	StatusFailed    StatusTag = "Failed"
	StatusUnknown   StatusTag = "Unknown"
)

// StyleFor returns the status tag for a record. Anything outside the three
// known statuses, including a missing status column, is Unknown.
func StyleFor(r TripRecord) StatusTag {
	switch strings.TrimSpace(r.Status) {
	case "Processed":
		return StatusProcessed
	case "Pending":
		return StatusPending
	case "Failed":
		return StatusFailed
	default:
		return StatusUnknown
	}
}

// fields returns the string form of every field, used by the global name
// match when the name columns are absent.
func (r TripRecord) fields() []string {
	out := []string{
		r.TripID, r.DriverNum, r.FirstName, r.LastName,
		r.Status, r.NachaTitle, r.Account, r.Bank, r.Routing,
	}
	if !r.JobDate.IsEmpty() {
		out = append(out, r.JobDate.Format("2006-01-02"))
	}
	for _, m := range []Money{
		r.TotalPaid, r.TotalFare, r.CoopCommission, r.Tips, r.Tolls,
		r.BaseFare, r.WaitTimePay, r.StopsAmount, r.CashCollected, r.Darter,
	} {
		out = append(out, FormatDollars(m.Cents))
	}
	return out
}
