package finance

import (
	"context"
	"fmt"
	"strings"

	"github.com/WOOWTECH/ha-finance/internal/event"
	"github.com/WOOWTECH/ha-finance/internal/ledger"
)

// Summary is the list view of an account.
type Summary struct {
	ID      string
	Name    string
	Balance float64
	// LastTransaction is the newest retained transaction, or nil.
	LastTransaction *ledger.Transaction
}

type AddAccountParams struct {
	// ID is generated from Name when empty.
	ID             string
	Name           string
	InitialBalance float64
}

// Accounts lists every account ordered by name.
func (s *Service) Accounts(ctx context.Context) ([]Summary, error) {
	var out []Summary

	err := s.store.View(ctx, func(d *ledger.FinanceData) error {
		for _, a := range d.SortedAccounts() {
			summary := Summary{ID: a.ID, Name: a.Name, Balance: a.Balance}
			if tx := a.LastTransaction(); tx != nil {
				summary.LastTransaction = tx.Clone()
			}

			out = append(out, summary)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	return out, nil
}

// Account returns a detached copy of the account with its history and plans.
func (s *Service) Account(ctx context.Context, id string) (*ledger.Account, error) {
	var out *ledger.Account

	err := s.store.View(ctx, func(d *ledger.FinanceData) error {
		a, err := d.Account(id)
		if err != nil {
			return err
		}

		out = a.Clone()

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}

	return out, nil
}

func (s *Service) AddAccount(ctx context.Context, params AddAccountParams) (*ledger.Account, error) {
	name, err := accountName(params.Name)
	if err != nil {
		return nil, err
	}

	var out *ledger.Account

	err = s.update(ctx, func(d *ledger.FinanceData, _ *outbox) error {
		if d.AccountByName(name, "") != nil {
			return fmt.Errorf("account %q: %w", name, ledger.ErrDuplicateName)
		}

		id := params.ID
		if id == "" {
			id = ledger.NewAccountID(name)
		}

		if _, err := d.Account(id); err == nil {
			return fmt.Errorf("account %q: %w", id, ledger.ErrAlreadyExists)
		}

		a := ledger.NewAccount(id, name, params.InitialBalance)
		d.AddAccount(a)
		out = a.Clone()

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("adding account: %w", err)
	}

	return out, nil
}

// EnsureAccount creates the account unless one with params.ID exists
// already. It reports whether the account was created.
func (s *Service) EnsureAccount(ctx context.Context, params AddAccountParams) (*ledger.Account, bool, error) {
	if params.ID != "" {
		a, err := s.Account(ctx, params.ID)
		if err == nil {
			return a, false, nil
		}

		if !isNotFound(err) {
			return nil, false, err
		}
	}

	a, err := s.AddAccount(ctx, params)
	if err != nil {
		return nil, false, err
	}

	return a, true, nil
}

// UpdateAccount renames an account.
func (s *Service) UpdateAccount(ctx context.Context, id, name string) (*ledger.Account, error) {
	name, err := accountName(name)
	if err != nil {
		return nil, err
	}

	var out *ledger.Account

	err = s.update(ctx, func(d *ledger.FinanceData, _ *outbox) error {
		a, err := d.Account(id)
		if err != nil {
			return err
		}

		if d.AccountByName(name, id) != nil {
			return fmt.Errorf("account %q: %w", name, ledger.ErrDuplicateName)
		}

		a.Name = name
		out = a.Clone()

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating account: %w", err)
	}

	return out, nil
}

func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	err := s.update(ctx, func(d *ledger.FinanceData, out *outbox) error {
		if !d.RemoveAccount(id) {
			return fmt.Errorf("account %q: %w", id, ledger.ErrNotFound)
		}

		out.add(event.AccountRemoved, event.AccountRemovedData{Account: id})

		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	return nil
}

func accountName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ledger.ValidationError{Field: "name", Message: "account name cannot be empty"}
	}

	return name, nil
}
