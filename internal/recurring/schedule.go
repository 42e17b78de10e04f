package recurring

import (
	"time"

	"github.com/WOOWTECH/ha-finance/internal/ledger"
)

// NextDueDate returns the first date on or after from (strictly after, for
// weekly, monthly and yearly plans) that satisfies the plan's rule. Only the
// calendar date of from is considered and the result is at UTC midnight.
func NextDueDate(plan *ledger.RecurringPlan, from time.Time) time.Time {
	from = ledger.DateOf(from)

	switch plan.Frequency {
	case ledger.FrequencyDaily:
		return from

	case ledger.FrequencyWeekly:
		ahead := plan.ClampedDay() - isoWeekday(from)
		if ahead <= 0 {
			ahead += 7
		}

		return from.AddDate(0, 0, ahead)

	case ledger.FrequencyMonthly:
		day := plan.ClampedDay()

		candidate := time.Date(from.Year(), from.Month(), day, 0, 0, 0, 0, time.UTC)
		if !candidate.After(from) {
			candidate = time.Date(from.Year(), from.Month()+1, day, 0, 0, 0, 0, time.UTC)
		}

		return candidate

	case ledger.FrequencyYearly:
		day, month := plan.ClampedDay(), time.Month(plan.ClampedMonth())

		candidate := time.Date(from.Year(), month, day, 0, 0, 0, 0, time.UTC)
		if !candidate.After(from) {
			candidate = time.Date(from.Year()+1, month, day, 0, 0, 0, 0, time.UTC)
		}

		return candidate
	}

	return from
}

// IsDue reports whether an active plan's next date has been reached.
func IsDue(plan *ledger.RecurringPlan, today time.Time) bool {
	if !plan.Active || plan.NextDate == nil {
		return false
	}

	return !plan.NextDate.After(ledger.DateOf(today))
}

// isoWeekday maps Sunday to 7 so that Monday=1 ... Sunday=7.
func isoWeekday(t time.Time) int {
	if wd := t.Weekday(); wd != time.Sunday {
		return int(wd)
	}

	return 7
}
