/*
Package calendar converts between the Jalali display calendar and the
canonical ledger date.

PURPOSE:
  All ledger storage and arithmetic run on one calendar; Jalali dates exist
  only at the input/output boundary. Both conversion directions are pure
  functions with no state.

VALIDATION:
  ToCanonical rejects strings that do not denote a real Jalali day - bad
  syntax, month outside 1..12, day-of-month overflow (e.g. Esfand 30 in a
  non-leap year). The conversion library normalizes overflowing components
  the way time.Date does, so validity is checked by round-tripping the
  parsed components through it.

SEE ALSO:
  - ledger/facade.go: consumes this via the CalendarAdapter interface
*/
package calendar

import (
	"fmt"
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"

	"github.com/sandogh/fund-engine/ledger"
)

// Jalali implements ledger.CalendarAdapter for the Persian calendar.
// Local dates read and write as "YYYY-MM-DD" (a "YYYY/MM/DD" variant is
// accepted on input).
type Jalali struct{}

// New returns the Jalali adapter.
func New() Jalali { return Jalali{} }

// ToCanonical parses a Jalali date string into a canonical Date.
// Fails with an error unwrapping to ledger.ErrInvalidDate.
func (Jalali) ToCanonical(local string) (ledger.Date, error) {
	year, month, day, err := splitLocal(local)
	if err != nil {
		return ledger.Date{}, err
	}
	if month < 1 || month > 12 {
		return ledger.Date{}, &ledger.InvalidDateError{Input: local, Reason: "month out of range"}
	}
	if day < 1 || day > 31 {
		return ledger.Date{}, &ledger.InvalidDateError{Input: local, Reason: "day out of range"}
	}

	// Noon keeps the conversion clear of any midnight DST boundary.
	pt := ptime.Date(year, ptime.Month(month), day, 12, 0, 0, 0, ptime.Iran())
	if pt.Year() != year || int(pt.Month()) != month || pt.Day() != day {
		// The library normalized the components: the day does not exist
		// (e.g. 1403-07-31 or Esfand 30 outside a leap year).
		return ledger.Date{}, &ledger.InvalidDateError{Input: local, Reason: "no such day in calendar"}
	}

	return ledger.DateOf(pt.Time()), nil
}

// ToLocal renders a canonical Date as a Jalali date string.
func (Jalali) ToLocal(d ledger.Date) string {
	t := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, ptime.Iran())
	pt := ptime.New(t)
	return fmt.Sprintf("%04d-%02d-%02d", pt.Year(), int(pt.Month()), pt.Day())
}

func splitLocal(local string) (year, month, day int, err error) {
	s := strings.ReplaceAll(strings.TrimSpace(local), "/", "-")
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return 0, 0, 0, &ledger.InvalidDateError{Input: local, Reason: "want YYYY-MM-DD"}
	}
	if _, err := fmt.Sscanf(s, "%d-%d-%d", &year, &month, &day); err != nil {
		return 0, 0, 0, &ledger.InvalidDateError{Input: local, Reason: "want YYYY-MM-DD"}
	}
	return year, month, day, nil
}
