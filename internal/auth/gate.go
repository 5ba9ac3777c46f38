// Package auth implements the driver portal's access gate: a two-field
// lookup (driver ID + last four bank digits) against the payments table,
// plus cookie-backed sessions.
package auth

import (
	"errors"
	"strings"

	"payportal/internal/core"
)

// Failure modes are distinguished for user feedback, matching the portal's
// documented behavior. ErrDriverNotFound leaks which half of the credential
// failed; tightening to a single generic rejection needs product sign-off.
var (
	ErrDriverNotFound = errors.New("driver ID not found")
	ErrBankMismatch   = errors.New("incorrect bank account digits")
)

// Scope identifies the subset of records an authenticated driver may see.
// Only the driver number is retained; rows are re-scoped from the current
// table on every request so a dataset refresh is picked up immediately.
type Scope struct {
	DriverNum  string
	DriverName string
}

// Authenticate checks the two-field credential. Both inputs are trimmed of
// whitespace. It succeeds iff some record carries the driver number AND at
// least one of that driver's rows carries the bank digits. On success the
// scope covers ALL of the driver's rows, not just the row whose bank
// matched: the bank check is a gate, not a further filter.
func Authenticate(tbl core.Table, driverID, bankPIN string) (Scope, error) {
	driverID = strings.TrimSpace(driverID)
	bankPIN = strings.TrimSpace(bankPIN)
	if driverID == "" {
		return Scope{}, ErrDriverNotFound
	}

	var own []core.TripRecord
	for _, r := range tbl.Records {
		if strings.TrimSpace(r.DriverNum) == driverID {
			own = append(own, r)
		}
	}
	if len(own) == 0 {
		return Scope{}, ErrDriverNotFound
	}

	bankOK := false
	for _, r := range own {
		if strings.TrimSpace(r.Bank) == bankPIN {
			bankOK = true
			break
		}
	}
	if !bankOK {
		return Scope{}, ErrBankMismatch
	}

	name := own[0].FullName()
	if name == "" {
		name = "Driver"
	}
	return Scope{DriverNum: driverID, DriverName: name}, nil
}

// Rows returns the caller's records from the given table.
func (s Scope) Rows(tbl core.Table) []core.TripRecord {
	var own []core.TripRecord
	for _, r := range tbl.Records {
		if strings.TrimSpace(r.DriverNum) == s.DriverNum {
			own = append(own, r)
		}
	}
	return own
}
