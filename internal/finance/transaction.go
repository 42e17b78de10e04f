package finance

import (
	"context"
	"fmt"
	"slices"

	"github.com/WOOWTECH/ha-finance/internal/event"
	"github.com/WOOWTECH/ha-finance/internal/importer"
	"github.com/WOOWTECH/ha-finance/internal/ledger"
)

// TransactionUpdate carries the fields of a transaction that may change.
// Nil fields are left untouched.
type TransactionUpdate struct {
	Amount *float64
	Note   *string
}

// AddTransaction records a manual transaction.
func (s *Service) AddTransaction(ctx context.Context, accountID string, amount float64, note string) (*ledger.Transaction, error) {
	var out *ledger.Transaction

	err := s.update(ctx, func(d *ledger.FinanceData, events *outbox) error {
		a, err := d.Account(accountID)
		if err != nil {
			return err
		}

		tx := ledger.NewTransaction(amount, note, ledger.TypeManual, nil, s.clock.Now())
		a.AddTransaction(tx, s.opts.MaxTransactions)
		out = tx.Clone()

		events.add(event.TransactionAdded, event.TransactionAddedData{
			Account: a.ID,
			Amount:  amount,
			Note:    note,
			Type:    string(ledger.TypeManual),
		})
		s.checkLowBalance(events, a)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("adding transaction: %w", err)
	}

	return out, nil
}

// QuickAdd is AddTransaction for preset buttons: a zero amount records
// nothing and returns nil.
func (s *Service) QuickAdd(ctx context.Context, accountID string, amount float64, note string) (*ledger.Transaction, error) {
	if amount == 0 {
		return nil, nil
	}

	return s.AddTransaction(ctx, accountID, amount, note)
}

func (s *Service) UpdateTransaction(ctx context.Context, accountID, txID string, upd TransactionUpdate) (*ledger.Transaction, error) {
	var out *ledger.Transaction

	err := s.update(ctx, func(d *ledger.FinanceData, events *outbox) error {
		a, err := d.Account(accountID)
		if err != nil {
			return err
		}

		tx, err := a.UpdateTransaction(txID, upd.Amount, upd.Note)
		if err != nil {
			return err
		}

		out = tx.Clone()

		if upd.Amount != nil {
			s.checkLowBalance(events, a)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating transaction: %w", err)
	}

	return out, nil
}

// DeleteTransaction removes a transaction and reverses its effect on the balance.
func (s *Service) DeleteTransaction(ctx context.Context, accountID, txID string) error {
	err := s.update(ctx, func(d *ledger.FinanceData, events *outbox) error {
		a, err := d.Account(accountID)
		if err != nil {
			return err
		}

		if _, err := a.DeleteTransaction(txID); err != nil {
			return err
		}

		s.checkLowBalance(events, a)

		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return nil
}

// AdjustBalance sets the balance to target through an adjustment
// transaction. It returns nil when the balance already matches.
func (s *Service) AdjustBalance(ctx context.Context, accountID string, target float64) (*ledger.Transaction, error) {
	var out *ledger.Transaction

	err := s.update(ctx, func(d *ledger.FinanceData, events *outbox) error {
		a, err := d.Account(accountID)
		if err != nil {
			return err
		}

		old := a.Balance

		tx := a.Adjust(target, s.clock.Now(), s.opts.MaxTransactions)
		if tx == nil {
			return nil
		}

		out = tx.Clone()

		events.add(event.BalanceAdjusted, event.BalanceAdjustedData{
			Account:    a.ID,
			OldBalance: old,
			NewBalance: target,
			Diff:       tx.Amount,
		})
		s.checkLowBalance(events, a)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("adjusting balance: %w", err)
	}

	return out, nil
}

// ImportStatement records every entry as a manual transaction dated at the
// entry's date, oldest first. Events are published per entry with one
// low-balance check at the end.
func (s *Service) ImportStatement(ctx context.Context, accountID string, entries []importer.Entry) ([]*ledger.Transaction, error) {
	var out []*ledger.Transaction

	entries = slices.Clone(entries)
	slices.SortStableFunc(entries, func(a, b importer.Entry) int { return a.Date.Compare(b.Date) })

	err := s.update(ctx, func(d *ledger.FinanceData, events *outbox) error {
		a, err := d.Account(accountID)
		if err != nil {
			return err
		}

		for _, e := range entries {
			tx := ledger.NewTransaction(e.Amount, e.Note, ledger.TypeManual, nil, e.Date)
			a.AddTransaction(tx, s.opts.MaxTransactions)
			out = append(out, tx.Clone())

			events.add(event.TransactionAdded, event.TransactionAddedData{
				Account: a.ID,
				Amount:  e.Amount,
				Note:    e.Note,
				Type:    string(ledger.TypeManual),
			})
		}

		if len(entries) > 0 {
			s.checkLowBalance(events, a)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("importing statement: %w", err)
	}

	return out, nil
}
