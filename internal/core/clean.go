package core

import (
	"strings"
	"time"
)

// jobDateLayouts are the calendar formats the export has been seen to carry.
// Tried in order; the first match wins.
var jobDateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseJobDate parses a raw job_date cell. Unparseable or blank cells yield
// the zero Date, never an error: a bad date must not drop the row.
func ParseJobDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range jobDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}.DayStart()
		}
	}
	return Date{}
}

// Clean converts a raw header+rows matrix into a typed Table. It is the sole
// consumer of the source's exact shape: column presence is decided here, bad
// currency cells become 0, bad dates become the unknown Date, and short rows
// are padded rather than rejected. One bad cell never fails the load.
func Clean(header []string, rows [][]string) Table {
	cols := make(ColumnSet, len(header))
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			continue
		}
		if _, dup := idx[name]; dup {
			continue
		}
		idx[name] = i
		cols[name] = true
	}

	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	money := func(row []string, col string) Money {
		cents, ok := ParseCurrencyToCents(cell(row, col))
		if !ok {
			return Money{}
		}
		return Money{Cents: cents}
	}

	records := make([]TripRecord, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		records = append(records, TripRecord{
			TripID:    cell(row, ColTripID),
			DriverNum: cell(row, ColDriverNum),
			FirstName: cell(row, ColFirstName),
			LastName:  cell(row, ColLastName),
			JobDate:   ParseJobDate(cell(row, ColJobDate)),

			TotalPaid:      money(row, ColTotalPaid),
			TotalFare:      money(row, ColTotalFare),
			CoopCommission: money(row, ColCoopCommission),
			Tips:           money(row, ColTips),
			Tolls:          money(row, ColTolls),
			BaseFare:       money(row, ColBaseFare),
			WaitTimePay:    money(row, ColWaitTimePay),
			StopsAmount:    money(row, ColStopsAmount),
			CashCollected:  money(row, ColCashCollected),
			Darter:         money(row, ColDarter),

			Status:     cell(row, ColStatus),
			NachaTitle: cell(row, ColNachaTitle),
			Account:    cell(row, ColAccount),
			Bank:       cell(row, ColBank),
			Routing:    cell(row, ColRouting),
		})
	}

	return Table{Records: records, Columns: cols}
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
