package file_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WOOWTECH/ha-finance/internal/ledger"
	"github.com/WOOWTECH/ha-finance/internal/storage"
	"github.com/WOOWTECH/ha-finance/internal/storage/file"
)

func TestStore_ReadWriteDelete(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "nested", "finance.json")
	s := file.New(path)

	_, err := s.Read(ctx)
	assert.ErrorIs(t, err, storage.ErrNoSnapshot)

	require.NoError(t, s.Write(ctx, []byte(`{"version":1}`)))
	require.NoError(t, s.Write(ctx, []byte(`{"version":1,"key":"k"}`)))

	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"key":"k"}`, string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	require.NoError(t, s.Delete(ctx))
	require.NoError(t, s.Delete(ctx))

	_, err = s.Read(ctx)
	assert.ErrorIs(t, err, storage.ErrNoSnapshot)
}

func TestStore_WithGateway(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "finance.cbor")

	first := storage.NewGateway(file.New(path), storage.CBOR{}, "test")
	err := first.Update(ctx, func(d *ledger.FinanceData) error {
		a := ledger.NewAccount("wallet", "Wallet", 100)
		a.AddTransaction(ledger.NewTransaction(-25, "lunch", ledger.TypeManual, nil, now()), 10)
		d.AddAccount(a)

		return nil
	})
	require.NoError(t, err)

	second := storage.NewGateway(file.New(path), storage.CBOR{}, "test")
	err = second.View(ctx, func(d *ledger.FinanceData) error {
		a, err := d.Account("wallet")
		require.NoError(t, err)
		assert.InDelta(t, 75, a.Balance, 1e-9)
		assert.Len(t, a.Transactions, 1)

		return nil
	})
	require.NoError(t, err)
}

func now() time.Time {
	return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
}
