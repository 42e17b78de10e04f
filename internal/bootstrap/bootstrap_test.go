package bootstrap_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WOOWTECH/ha-finance/internal/bootstrap"
	"github.com/WOOWTECH/ha-finance/internal/clock"
	"github.com/WOOWTECH/ha-finance/internal/config"
	"github.com/WOOWTECH/ha-finance/internal/event"
	"github.com/WOOWTECH/ha-finance/internal/finance"
)

func fileConfig(t *testing.T, codec string, compression ...string) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	cfg.Storage.Backend = "file"
	cfg.Storage.Codec = codec
	cfg.Storage.Path = filepath.Join(t.TempDir(), "ha_finance."+codec)
	cfg.Storage.Key = "ha_finance.data"

	if len(compression) > 0 {
		cfg.Storage.Compression = compression[0]
	}
	cfg.Ledger.MaxTransactions = 50
	cfg.Ledger.LowBalanceThreshold = 100
	cfg.Ledger.Timezone = "Asia/Taipei"

	return cfg
}

func TestOpenGateway_FileBackend(t *testing.T) {
	type testCase struct {
		name        string
		codec       string
		compression string
	}

	tests := []testCase{
		{name: "JSON", codec: "json"},
		{name: "CBOR", codec: "cbor"},
		{name: "JSONZstd", codec: "json", compression: "zstd"},
		{name: "CBORLZ4", codec: "cbor", compression: "lz4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fileConfig(t, tt.codec, tt.compression)

			gateway, closeFn, err := bootstrap.OpenGateway(t.Context(), cfg)
			require.NoError(t, err)

			t.Cleanup(func() { assert.NoError(t, closeFn()) })

			svc, err := bootstrap.NewService(cfg, gateway, event.NewBus(), clock.Fake(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
			require.NoError(t, err)
			assert.InDelta(t, 100, svc.Threshold(), 1e-9)

			_, err = svc.AddAccount(t.Context(), finance.AddAccountParams{ID: "wallet", Name: "Wallet", InitialBalance: 10})
			require.NoError(t, err)

			info, err := os.Stat(cfg.Storage.Path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())

			reopened, _, err := bootstrap.OpenGateway(t.Context(), cfg)
			require.NoError(t, err)

			svc, err = bootstrap.NewService(cfg, reopened, event.NewBus(), nil)
			require.NoError(t, err)

			a, err := svc.Account(t.Context(), "wallet")
			require.NoError(t, err)
			assert.Equal(t, "Wallet", a.Name)
		})
	}
}

func TestOpenGateway_Errors(t *testing.T) {
	cfg := fileConfig(t, "yaml")

	_, _, err := bootstrap.OpenGateway(t.Context(), cfg)
	assert.Error(t, err)

	_, _, err = bootstrap.OpenGateway(t.Context(), fileConfig(t, "json", "brotli"))
	assert.Error(t, err)

	cfg = fileConfig(t, "json")
	cfg.Storage.Backend = "s3"

	_, _, err = bootstrap.OpenGateway(t.Context(), cfg)
	assert.Error(t, err)

	cfg = fileConfig(t, "json")
	cfg.Ledger.Timezone = "Mars/Olympus"

	_, err = bootstrap.NewService(cfg, nil, nil, nil)
	assert.Error(t, err)
}

func TestEnsureDefaultAccount(t *testing.T) {
	type testCase struct {
		name        string
		accountName string
		accountID   string
		wantCreated bool
		wantID      string
	}

	tests := []testCase{
		{name: "Disabled"},
		{name: "SlugID", accountName: "Daily Wallet", wantCreated: true, wantID: "daily_wallet"},
		{name: "ExplicitID", accountName: "Wallet", accountID: "main", wantCreated: true, wantID: "main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fileConfig(t, "json")
			cfg.Ledger.Currency = "EUR"
			cfg.Ledger.DefaultAccountName = tt.accountName
			cfg.Ledger.DefaultAccountID = tt.accountID
			cfg.Ledger.DefaultAccountBalance = 250

			gateway, _, err := bootstrap.OpenGateway(t.Context(), cfg)
			require.NoError(t, err)

			svc, err := bootstrap.NewService(cfg, gateway, event.NewBus(), nil)
			require.NoError(t, err)
			assert.Equal(t, "EUR", svc.Currency())

			created, err := bootstrap.EnsureDefaultAccount(t.Context(), cfg, svc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)

			// a restart leaves the existing account alone
			created, err = bootstrap.EnsureDefaultAccount(t.Context(), cfg, svc)
			require.NoError(t, err)
			assert.False(t, created)

			accounts, err := svc.Accounts(t.Context())
			require.NoError(t, err)

			if !tt.wantCreated {
				assert.Empty(t, accounts)
				return
			}

			require.Len(t, accounts, 1)
			assert.Equal(t, tt.wantID, accounts[0].ID)
			assert.InDelta(t, 250, accounts[0].Balance, 1e-9)
		})
	}
}
