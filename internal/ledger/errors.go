package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDuplicateName = errors.New("duplicate name")
	ErrAlreadyExists = errors.New("already exists")
)

// ValidationError describes a rejected field. It matches ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func accountNotFound(id string) error {
	return fmt.Errorf("account %q: %w", id, ErrNotFound)
}

func transactionNotFound(id string) error {
	return fmt.Errorf("transaction %q: %w", id, ErrNotFound)
}

func planNotFound(id string) error {
	return fmt.Errorf("plan %q: %w", id, ErrNotFound)
}

func rangeMessage(lo, hi int, f Frequency) string {
	return fmt.Sprintf("must be between %d and %d for %s plans", lo, hi, f)
}
