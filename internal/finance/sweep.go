package finance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/WOOWTECH/ha-finance/internal/event"
	"github.com/WOOWTECH/ha-finance/internal/ledger"
	"github.com/WOOWTECH/ha-finance/internal/recurring"
)

// SweepReport summarises one sweep of one account.
type SweepReport struct {
	Account     string
	Initialized int
	Executed    []recurring.Execution
}

// Sweep runs the recurring executor over every account. It is the daily
// scheduler's tick. Accounts are persisted and reported one at a time so a
// failing save does not hold back the others. Today is then recorded as the
// last sweep date.
func (s *Service) Sweep(ctx context.Context, now time.Time) ([]SweepReport, error) {
	var ids []string

	err := s.store.View(ctx, func(d *ledger.FinanceData) error {
		for _, a := range d.SortedAccounts() {
			ids = append(ids, a.ID)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	var (
		reports []SweepReport
		errs    []error
	)

	for _, id := range ids {
		report, err := s.SweepAccount(ctx, id, now)
		if err != nil {
			slog.Error("failed to sweep account", "account", id, "error", err)
			errs = append(errs, err)

			continue
		}

		if report != nil {
			reports = append(reports, *report)
		}
	}

	today := s.today(now)

	err = s.store.Update(ctx, func(d *ledger.FinanceData) error {
		d.MarkSwept(today)
		return nil
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("recording sweep: %w", err))
	}

	return reports, errors.Join(errs...)
}

// SweepMissed runs Sweep only when a local midnight has passed since the
// last recorded sweep, so a restart during the day does not run plans ahead
// of the midnight tick. A ledger that was never swept is stamped with today
// instead. It reports whether a sweep ran.
func (s *Service) SweepMissed(ctx context.Context, now time.Time) ([]SweepReport, bool, error) {
	today := s.today(now)

	var missed bool

	err := s.store.Update(ctx, func(d *ledger.FinanceData) error {
		if d.LastSweep == nil {
			d.MarkSwept(today)
			return nil
		}

		missed = d.LastSweep.Before(today)

		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("checking last sweep: %w", err)
	}

	if !missed {
		return nil, false, nil
	}

	reports, err := s.Sweep(ctx, now)

	return reports, true, err
}

// SweepAccount executes the due plans of one account and then checks its
// balance, whether or not anything ran. A missing account is not an error
// and yields a nil report.
func (s *Service) SweepAccount(ctx context.Context, accountID string, now time.Time) (*SweepReport, error) {
	exec := recurring.Executor{MaxTransactions: s.opts.MaxTransactions, CatchUp: s.opts.CatchUp}

	var report *SweepReport

	err := s.update(ctx, func(d *ledger.FinanceData, events *outbox) error {
		a, err := d.Account(accountID)
		if err != nil {
			return err
		}

		res := exec.Run(a, now, s.today(now))

		for i, e := range res.Executions {
			res.Executions[i].Transaction = e.Transaction.Clone()

			slog.Info("executed recurring plan", "account", a.ID, "plan", e.PlanID, "title", e.Title, "amount", e.Amount)

			events.add(event.RecurringExecuted, event.RecurringExecutedData{
				Account: a.ID,
				PlanID:  e.PlanID,
				Title:   e.Title,
				Amount:  e.Amount,
			})
		}

		s.checkLowBalance(events, a)

		report = &SweepReport{Account: a.ID, Initialized: len(res.Initialized), Executed: res.Executions}

		return nil
	})
	if isNotFound(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("sweep account %q: %w", accountID, err)
	}

	return report, nil
}
