package ledger

import (
	"time"
)

// Snapshot is the plain-record form of FinanceData used for persistence.
// Optional plan fields are pointers so that older snapshots missing them
// decode to their defaults instead of zero values.
type Snapshot struct {
	Accounts  map[string]AccountRecord `json:"accounts"`
	LastSweep *string                  `json:"last_sweep,omitempty"`
}

type AccountRecord struct {
	Name           string                `json:"name"`
	Balance        float64               `json:"balance"`
	Transactions   []TransactionRecord   `json:"transactions"`
	RecurringPlans map[string]PlanRecord `json:"recurring_plans"`
}

type TransactionRecord struct {
	ID        string  `json:"id"`
	Amount    float64 `json:"amount"`
	Note      string  `json:"note"`
	Timestamp string  `json:"timestamp"`
	Type      Type    `json:"type"`
	PlanID    *string `json:"plan_id"`
}

type PlanRecord struct {
	Title        string    `json:"title"`
	Amount       float64   `json:"amount"`
	Frequency    Frequency `json:"frequency,omitempty"`
	Day          *int      `json:"day,omitempty"`
	Month        *int      `json:"month,omitempty"`
	Active       *bool     `json:"active,omitempty"`
	LastExecuted *string   `json:"last_executed"`
	NextDate     *string   `json:"next_date"`
}

// Snapshot converts the live model into records.
func (d *FinanceData) Snapshot() Snapshot {
	s := Snapshot{Accounts: make(map[string]AccountRecord, len(d.Accounts))}

	for id, a := range d.Accounts {
		s.Accounts[id] = a.record()
	}

	if d.LastSweep != nil {
		s.LastSweep = new(d.LastSweep.Format(time.DateOnly))
	}

	return s
}

// FromSnapshot rebuilds the live model, applying defaults for missing fields.
func FromSnapshot(s Snapshot) *FinanceData {
	d := NewFinanceData()

	for id, rec := range s.Accounts {
		d.AddAccount(accountFromRecord(id, rec))
	}

	if s.LastSweep != nil {
		if ts, err := ParseTimestamp(*s.LastSweep); err == nil {
			d.LastSweep = new(DateOf(ts))
		}
	}

	return d
}

func (a *Account) record() AccountRecord {
	rec := AccountRecord{
		Name:           a.Name,
		Balance:        a.Balance,
		Transactions:   make([]TransactionRecord, 0, len(a.Transactions)),
		RecurringPlans: make(map[string]PlanRecord, len(a.Plans)),
	}

	for _, tx := range a.Transactions {
		rec.Transactions = append(rec.Transactions, TransactionRecord{
			ID:        tx.ID,
			Amount:    tx.Amount,
			Note:      tx.Note,
			Timestamp: tx.Timestamp,
			Type:      tx.Type,
			PlanID:    tx.PlanID,
		})
	}

	for id, p := range a.Plans {
		rec.RecurringPlans[id] = p.record()
	}

	return rec
}

func accountFromRecord(id string, rec AccountRecord) *Account {
	a := NewAccount(id, rec.Name, rec.Balance)

	for _, t := range rec.Transactions {
		a.Transactions = append(a.Transactions, &Transaction{
			ID:        t.ID,
			Amount:    t.Amount,
			Note:      t.Note,
			Timestamp: t.Timestamp,
			Type:      t.Type,
			PlanID:    t.PlanID,
		})
	}

	for planID, p := range rec.RecurringPlans {
		a.AddPlan(planFromRecord(planID, p))
	}

	return a
}

func (p *RecurringPlan) record() PlanRecord {
	rec := PlanRecord{
		Title:     p.Title,
		Amount:    p.Amount,
		Frequency: p.Frequency,
		Day:       new(p.Day),
		Month:     new(p.Month),
		Active:    new(p.Active),
	}

	if p.LastExecuted != nil {
		rec.LastExecuted = new(p.LastExecuted.Format(time.RFC3339Nano))
	}

	if p.NextDate != nil {
		rec.NextDate = new(p.NextDate.Format(time.DateOnly))
	}

	return rec
}

func planFromRecord(id string, rec PlanRecord) *RecurringPlan {
	p := &RecurringPlan{
		ID:        id,
		Title:     rec.Title,
		Amount:    rec.Amount,
		Frequency: rec.Frequency,
		Day:       1,
		Month:     1,
		Active:    true,
	}

	if p.Frequency == "" {
		p.Frequency = FrequencyMonthly
	}

	if rec.Day != nil {
		p.Day = *rec.Day
	}

	if rec.Month != nil {
		p.Month = *rec.Month
	}

	if rec.Active != nil {
		p.Active = *rec.Active
	}

	if rec.LastExecuted != nil {
		if ts, err := ParseTimestamp(*rec.LastExecuted); err == nil {
			p.LastExecuted = &ts
		}
	}

	if rec.NextDate != nil {
		if ts, err := ParseTimestamp(*rec.NextDate); err == nil {
			p.NextDate = new(DateOf(ts))
		}
	}

	return p
}

// DateOf returns the calendar date of t (in t's location) at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
