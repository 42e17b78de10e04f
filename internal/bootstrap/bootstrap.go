// Package bootstrap builds the storage gateway and finance service from
// configuration. It is shared by the server and the ops CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/WOOWTECH/ha-finance/internal/clock"
	"github.com/WOOWTECH/ha-finance/internal/config"
	"github.com/WOOWTECH/ha-finance/internal/database"
	"github.com/WOOWTECH/ha-finance/internal/event"
	"github.com/WOOWTECH/ha-finance/internal/finance"
	"github.com/WOOWTECH/ha-finance/internal/ledger"
	"github.com/WOOWTECH/ha-finance/internal/storage"
	"github.com/WOOWTECH/ha-finance/internal/storage/file"
	"github.com/WOOWTECH/ha-finance/internal/storage/postgres"
)

// OpenGateway selects the configured backend and codec. The returned close
// function releases the backend's resources.
func OpenGateway(ctx context.Context, cfg *config.Config) (*storage.Gateway, func() error, error) {
	codec, err := storage.CodecByName(cfg.Storage.Codec)
	if err != nil {
		return nil, nil, err
	}

	comp, err := storage.ParseCompression(cfg.Storage.Compression)
	if err != nil {
		return nil, nil, err
	}

	codec = storage.Compress(codec, comp)

	var (
		backend storage.Backend
		closeFn = func() error { return nil }
	)

	switch cfg.Storage.Backend {
	case "postgres":
		db, err := database.New(ctx, cfg.ConnectionString())
		if err != nil {
			return nil, nil, err
		}

		store := postgres.New(db, cfg.Storage.Key)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}

		backend, closeFn = store, db.Close
	case "file":
		store := file.New(cfg.Storage.Path)
		slog.Debug("using snapshot file", "path", store.Path())

		backend = store
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	slog.Info("storage ready", "backend", cfg.Storage.Backend, "codec", codec.Name(), "key", cfg.Storage.Key)

	return storage.NewGateway(backend, codec, cfg.Storage.Key), closeFn, nil
}

// NewService builds the finance service with the configured ledger options.
func NewService(cfg *config.Config, store finance.Store, events event.Publisher, c clock.Clock) (*finance.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return finance.NewService(store, events, c, finance.Options{
		MaxTransactions:     cfg.Ledger.MaxTransactions,
		LowBalanceThreshold: cfg.Ledger.LowBalanceThreshold,
		CatchUp:             cfg.Ledger.CatchUp,
		Location:            loc,
		Currency:            cfg.Ledger.Currency,
	}), nil
}

// EnsureDefaultAccount creates the configured default account unless the
// ledger already holds its id. It is a no-op without
// LEDGER_DEFAULT_ACCOUNT_NAME and reports whether an account was created.
func EnsureDefaultAccount(ctx context.Context, cfg *config.Config, svc *finance.Service) (bool, error) {
	name := strings.TrimSpace(cfg.Ledger.DefaultAccountName)
	if name == "" {
		return false, nil
	}

	id := cfg.Ledger.DefaultAccountID
	if id == "" {
		id = ledger.Slug(name, "account")
	}

	a, created, err := svc.EnsureAccount(ctx, finance.AddAccountParams{
		ID:             id,
		Name:           name,
		InitialBalance: cfg.Ledger.DefaultAccountBalance,
	})
	if err != nil {
		return false, fmt.Errorf("ensuring default account: %w", err)
	}

	if created {
		slog.Info("created default account", "account", a.ID, "balance", a.Balance)
	}

	return created, nil
}
