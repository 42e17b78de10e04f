package ledger

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Account is a named balance-holding ledger with its own history and plans.
//
// Balance is maintained incrementally and is never recomputed from
// Transactions, which only holds the most recent entries in the order they
// were recorded. Imported statement lines carry their statement date, so
// they may sort before transactions recorded earlier.
type Account struct {
	ID           string
	Name         string
	Balance      float64
	Transactions []*Transaction
	Plans        map[string]*RecurringPlan
}

func NewAccount(id, name string, balance float64) *Account {
	return &Account{
		ID:      id,
		Name:    name,
		Balance: balance,
		Plans:   make(map[string]*RecurringPlan),
	}
}

// AddTransaction applies tx to the balance, appends it and trims the
// history to the newest maxTransactions entries.
func (a *Account) AddTransaction(tx *Transaction, maxTransactions int) {
	a.Balance += tx.Amount
	a.appendTransaction(tx, maxTransactions)
}

func (a *Account) appendTransaction(tx *Transaction, maxTransactions int) {
	if maxTransactions <= 0 {
		maxTransactions = DefaultMaxTransactions
	}

	a.Transactions = append(a.Transactions, tx)

	if over := len(a.Transactions) - maxTransactions; over > 0 {
		a.Transactions = slices.Clone(a.Transactions[over:])
	}
}

// Adjust sets the balance to target, recording the delta as an adjustment
// transaction. It returns nil when the balance already equals target.
func (a *Account) Adjust(target float64, now time.Time, maxTransactions int) *Transaction {
	diff := target - a.Balance
	if diff == 0 {
		return nil
	}

	tx := NewTransaction(diff, NoteBalanceAdjustment, TypeAdjustment, nil, now)
	a.appendTransaction(tx, maxTransactions)
	a.Balance = target

	return tx
}

func (a *Account) Transaction(id string) (*Transaction, error) {
	for _, tx := range a.Transactions {
		if tx.ID == id {
			return tx, nil
		}
	}

	return nil, transactionNotFound(id)
}

// UpdateTransaction replaces amount and/or note in place, moving the
// balance by the amount delta.
func (a *Account) UpdateTransaction(id string, amount *float64, note *string) (*Transaction, error) {
	tx, err := a.Transaction(id)
	if err != nil {
		return nil, err
	}

	if amount != nil {
		a.Balance += *amount - tx.Amount
		tx.Amount = *amount
	}

	if note != nil {
		tx.Note = *note
	}

	return tx, nil
}

// DeleteTransaction removes the transaction and reverses its amount.
func (a *Account) DeleteTransaction(id string) (*Transaction, error) {
	idx := slices.IndexFunc(a.Transactions, func(tx *Transaction) bool { return tx.ID == id })
	if idx < 0 {
		return nil, transactionNotFound(id)
	}

	tx := a.Transactions[idx]
	a.Transactions = slices.Delete(a.Transactions, idx, idx+1)
	a.Balance -= tx.Amount

	return tx, nil
}

// LastTransaction returns the newest retained transaction, or nil.
func (a *Account) LastTransaction() *Transaction {
	if len(a.Transactions) == 0 {
		return nil
	}

	return a.Transactions[len(a.Transactions)-1]
}

func (a *Account) AddPlan(p *RecurringPlan) {
	if a.Plans == nil {
		a.Plans = make(map[string]*RecurringPlan)
	}

	a.Plans[p.ID] = p
}

// RemovePlan deletes the plan and reports whether it existed.
func (a *Account) RemovePlan(id string) bool {
	if _, ok := a.Plans[id]; !ok {
		return false
	}

	delete(a.Plans, id)

	return true
}

func (a *Account) Plan(id string) (*RecurringPlan, error) {
	p, ok := a.Plans[id]
	if !ok {
		return nil, planNotFound(id)
	}

	return p, nil
}

// SortedPlans returns the plans ordered by id.
func (a *Account) SortedPlans() []*RecurringPlan {
	ids := make([]string, 0, len(a.Plans))
	for id := range a.Plans {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	plans := make([]*RecurringPlan, len(ids))
	for i, id := range ids {
		plans[i] = a.Plans[id]
	}

	return plans
}

// FinanceData is the root of all persisted state.
type FinanceData struct {
	Accounts map[string]*Account
	// LastSweep is the local calendar date (at UTC midnight) of the latest
	// daily sweep, nil until the first one.
	LastSweep *time.Time
}

func NewFinanceData() *FinanceData {
	return &FinanceData{Accounts: make(map[string]*Account)}
}

func (d *FinanceData) Account(id string) (*Account, error) {
	a, ok := d.Accounts[id]
	if !ok {
		return nil, accountNotFound(id)
	}

	return a, nil
}

func (d *FinanceData) AddAccount(a *Account) {
	if d.Accounts == nil {
		d.Accounts = make(map[string]*Account)
	}

	d.Accounts[a.ID] = a
}

// MarkSwept records day as the latest sweep. An earlier day never replaces
// a later one. It reports whether LastSweep changed.
func (d *FinanceData) MarkSwept(day time.Time) bool {
	day = DateOf(day)
	if d.LastSweep != nil && !day.After(*d.LastSweep) {
		return false
	}

	d.LastSweep = &day

	return true
}

// RemoveAccount deletes the account and reports whether it existed.
func (d *FinanceData) RemoveAccount(id string) bool {
	if _, ok := d.Accounts[id]; !ok {
		return false
	}

	delete(d.Accounts, id)

	return true
}

// AccountByName finds an account by case-folded name, ignoring exceptID.
func (d *FinanceData) AccountByName(name, exceptID string) *Account {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(name))

	for _, a := range d.Accounts {
		if a.ID == exceptID {
			continue
		}

		if fold.String(a.Name) == want {
			return a
		}
	}

	return nil
}

// SortedAccounts returns the accounts ordered by name, then id.
func (d *FinanceData) SortedAccounts() []*Account {
	accounts := make([]*Account, 0, len(d.Accounts))
	for _, a := range d.Accounts {
		accounts = append(accounts, a)
	}

	slices.SortFunc(accounts, func(x, y *Account) int {
		if c := strings.Compare(x.Name, y.Name); c != 0 {
			return c
		}

		return strings.Compare(x.ID, y.ID)
	})

	return accounts
}

// Clone returns a deep copy that shares nothing with a.
func (a *Account) Clone() *Account {
	c := NewAccount(a.ID, a.Name, a.Balance)

	c.Transactions = make([]*Transaction, len(a.Transactions))
	for i, tx := range a.Transactions {
		c.Transactions[i] = tx.Clone()
	}

	for id, p := range a.Plans {
		c.Plans[id] = p.Clone()
	}

	return c
}
