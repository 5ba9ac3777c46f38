package core

// Statement is the aggregated monetary summary for a set of trip records.
// Missing columns were already cleaned to zero amounts, so sums degrade to
// zero instead of failing; an empty subset yields the zero Statement.
type Statement struct {
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

	// GrossFare is derived, never stored:
	// base fare + wait time + stops + tolls + tips.
	GrossFare Money

	// NetDeposit is the total_paid sum; the source already nets out
	// commission and cash collected.
	NetDeposit Money

	TripCount int
}

// Summarize computes the statement for the given records.
func Summarize(records []TripRecord) Statement {
	var s Statement
	for _, r := range records {
		s.TotalPaid.Cents += r.TotalPaid.Cents
		s.TotalFare.Cents += r.TotalFare.Cents
		s.CoopCommission.Cents += r.CoopCommission.Cents
		s.Tips.Cents += r.Tips.Cents
		s.Tolls.Cents += r.Tolls.Cents
		s.BaseFare.Cents += r.BaseFare.Cents
		s.WaitTimePay.Cents += r.WaitTimePay.Cents
		s.StopsAmount.Cents += r.StopsAmount.Cents
		s.CashCollected.Cents += r.CashCollected.Cents
		s.Darter.Cents += r.Darter.Cents
	}
	s.GrossFare.Cents = s.BaseFare.Cents + s.WaitTimePay.Cents +
		s.StopsAmount.Cents + s.Tolls.Cents + s.Tips.Cents
	s.NetDeposit = s.TotalPaid
	s.TripCount = len(records)
	return s
}
