// Package finance coordinates accounts, transactions and recurring plans on
// top of the persisted ledger, publishing domain events for every change.
package finance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/WOOWTECH/ha-finance/internal/clock"
	"github.com/WOOWTECH/ha-finance/internal/event"
	"github.com/WOOWTECH/ha-finance/internal/ledger"
)

// DefaultLowBalanceThreshold is used when Options leaves it unset.
const DefaultLowBalanceThreshold = 1000

// Store is the persistence gateway the service mutates through. Update
// must run fn and save the result under one lock.
type Store interface {
	View(ctx context.Context, fn func(*ledger.FinanceData) error) error
	Update(ctx context.Context, fn func(*ledger.FinanceData) error) error
}

type Options struct {
	MaxTransactions     int
	LowBalanceThreshold float64
	// CatchUp applies every missed plan occurrence in one sweep instead of one per sweep.
	CatchUp bool
	// Location decides the calendar date used for due checks.
	Location *time.Location
	// Currency is the unit amounts are reported in.
	Currency string
}

type Service struct {
	store  Store
	events event.Publisher
	clock  clock.Clock
	opts   Options
}

func NewService(store Store, events event.Publisher, c clock.Clock, opts Options) *Service {
	if opts.MaxTransactions <= 0 {
		opts.MaxTransactions = ledger.DefaultMaxTransactions
	}

	if opts.Location == nil {
		opts.Location = time.Local
	}

	if c == nil {
		c = clock.Real()
	}

	return &Service{store: store, events: events, clock: c, opts: opts}
}

// Threshold returns the low-balance threshold in effect.
func (s *Service) Threshold() float64 {
	return s.opts.LowBalanceThreshold
}

func (s *Service) Currency() string {
	return s.opts.Currency
}

// today is the local calendar date at UTC midnight.
func (s *Service) today(now time.Time) time.Time {
	return ledger.DateOf(now.In(s.opts.Location))
}

// update runs fn through the store and publishes the events it queued once
// the change has been saved.
func (s *Service) update(ctx context.Context, fn func(d *ledger.FinanceData, out *outbox) error) error {
	var out outbox

	err := s.store.Update(ctx, func(d *ledger.FinanceData) error {
		out = out[:0]
		return fn(d, &out)
	})
	if err != nil {
		return err
	}

	at := s.clock.Now().UTC()

	for _, e := range out {
		e.At = at
		s.events.Publish(ctx, e)
	}

	return nil
}

// outbox collects events raised inside a critical section.
type outbox []event.Event

func (o *outbox) add(name event.Name, data any) {
	*o = append(*o, event.Event{Name: name, Data: data})
}

// checkLowBalance queues a low_balance event whenever the balance is below
// the threshold. Repeated checks fire repeatedly.
func (s *Service) checkLowBalance(out *outbox, a *ledger.Account) {
	if a.Balance >= s.opts.LowBalanceThreshold {
		return
	}

	slog.Info("low balance", "account", a.ID, "balance", a.Balance, "threshold", s.opts.LowBalanceThreshold)

	out.add(event.LowBalance, event.LowBalanceData{
		Account:   a.ID,
		Balance:   a.Balance,
		Threshold: s.opts.LowBalanceThreshold,
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, ledger.ErrNotFound)
}
