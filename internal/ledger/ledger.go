package ledger

import (
	"slices"
	"time"
)

// Type represents how a transaction came into existence.
type Type string

const (
	TypeManual     Type = "manual"
	TypeRecurring  Type = "recurring"
	TypeAdjustment Type = "adjustment"
)

// Frequency represents the cadence of a recurring plan.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Frequencies lists the supported frequencies in display order.
var Frequencies = []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly}

func (f Frequency) Valid() bool {
	return slices.Contains(Frequencies, f)
}

const (
	DefaultMaxTransactions = 1000
	NoteBalanceAdjustment  = "Balance Adjustment"
)

// Transaction is a single signed monetary movement recorded against an account.
type Transaction struct {
	ID        string
	Amount    float64 // positive = income, negative = expense
	Note      string
	Timestamp string // UTC, ISO-8601
	Type      Type
	PlanID    *string
}

// NewTransaction stamps a fresh id and the current UTC time.
func NewTransaction(amount float64, note string, typ Type, planID *string, now time.Time) *Transaction {
	return &Transaction{
		ID:        NewTransactionID(),
		Amount:    amount,
		Note:      note,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Type:      typ,
		PlanID:    planID,
	}
}

// timestampLayouts are tried in order; older snapshots may carry offsets-free values.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// Time parses the stored timestamp.
func (t *Transaction) Time() (time.Time, error) {
	return ParseTimestamp(t.Timestamp)
}

// ParseTimestamp accepts the ISO-8601 shapes found in stored snapshots.
func ParseTimestamp(s string) (time.Time, error) {
	var firstErr error

	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}

		if firstErr == nil {
			firstErr = err
		}
	}

	return time.Time{}, firstErr
}

// RecurringPlan is a rule that generates a transaction on a computed schedule.
//
// Day is interpreted per frequency: ISO weekday (1-7) for weekly, day of
// month (1-28) for monthly and yearly. Month is only used by yearly plans.
type RecurringPlan struct {
	ID           string
	Title        string
	Amount       float64
	Frequency    Frequency
	Day          int
	Month        int
	Active       bool
	LastExecuted *time.Time
	NextDate     *time.Time // calendar date at UTC midnight
}

// DayRange returns the legal range of Day for the given frequency.
func DayRange(f Frequency) (int, int) {
	if f == FrequencyWeekly {
		return 1, 7
	}

	return 1, 28
}

// ClampedDay returns Day forced into the range of the plan's frequency.
func (p *RecurringPlan) ClampedDay() int {
	lo, hi := DayRange(p.Frequency)
	return clamp(p.Day, lo, hi)
}

// ClampedMonth returns Month forced into 1-12.
func (p *RecurringPlan) ClampedMonth() int {
	return clamp(p.Month, 1, 12)
}

// Validate rejects plans whose stored fields are out of range for their frequency.
func (p *RecurringPlan) Validate() error {
	if !p.Frequency.Valid() {
		return ValidationError{Field: "frequency", Message: "must be one of daily, weekly, monthly, yearly"}
	}

	lo, hi := DayRange(p.Frequency)
	if p.Day < lo || p.Day > hi {
		return ValidationError{Field: "day", Message: rangeMessage(lo, hi, p.Frequency)}
	}

	if p.Month < 1 || p.Month > 12 {
		return ValidationError{Field: "month", Message: "must be between 1 and 12"}
	}

	return nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func (t *Transaction) Clone() *Transaction {
	c := *t
	if t.PlanID != nil {
		c.PlanID = new(*t.PlanID)
	}

	return &c
}

func (p *RecurringPlan) Clone() *RecurringPlan {
	c := *p
	if p.LastExecuted != nil {
		c.LastExecuted = new(*p.LastExecuted)
	}

	if p.NextDate != nil {
		c.NextDate = new(*p.NextDate)
	}

	return &c
}
