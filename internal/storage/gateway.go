package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/WOOWTECH/ha-finance/internal/ledger"
)

// DefaultKey names the snapshot when none is configured.
const DefaultKey = "ha_finance.data"

// Gateway owns the in-memory FinanceData and its persisted snapshot.
//
// A single mutex serialises loading, read-modify-write updates, saves and
// removal. The snapshot is read from the backend at most once; afterwards
// the cached model is authoritative. When a save fails the in-memory state
// stays ahead of the stored one until the next successful save.
//
// Writes whose encoded bytes match the last successful write are skipped.
type Gateway struct {
	mu      sync.Mutex
	backend Backend
	codec   Codec
	key     string
	data    *ledger.FinanceData

	lastSum   [32]byte
	haveSaved bool
}

func NewGateway(backend Backend, codec Codec, key string) *Gateway {
	if codec == nil {
		codec = JSON{}
	}

	if key == "" {
		key = DefaultKey
	}

	return &Gateway{backend: backend, codec: codec, key: key}
}

// Load reads the snapshot if it has not been read yet. A missing snapshot
// yields an empty model.
func (g *Gateway) Load(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, err := g.load(ctx)

	return err
}

// View runs fn with the loaded model under the gateway lock. fn must not
// retain the model or mutate it.
func (g *Gateway) View(ctx context.Context, fn func(*ledger.FinanceData) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := g.load(ctx)
	if err != nil {
		return err
	}

	return fn(data)
}

// Update runs fn under the gateway lock and saves the result. When fn
// returns an error nothing is saved; fn is expected to validate before it
// mutates.
func (g *Gateway) Update(ctx context.Context, fn func(*ledger.FinanceData) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := g.load(ctx)
	if err != nil {
		return err
	}

	if err := fn(data); err != nil {
		return err
	}

	return g.save(ctx)
}

// Save writes the current model.
func (g *Gateway) Save(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.load(ctx); err != nil {
		return err
	}

	return g.save(ctx)
}

// Remove deletes the stored snapshot and resets the model to empty.
func (g *Gateway) Remove(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.backend.Delete(ctx); err != nil && !errors.Is(err, ErrNoSnapshot) {
		return fmt.Errorf("removing snapshot: %w", err)
	}

	g.data = ledger.NewFinanceData()
	g.haveSaved = false

	slog.Debug("removed snapshot", "key", g.key)

	return nil
}

func (g *Gateway) load(ctx context.Context) (*ledger.FinanceData, error) {
	if g.data != nil {
		return g.data, nil
	}

	raw, err := g.backend.Read(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		g.data = ledger.NewFinanceData()
		slog.Debug("no snapshot stored, starting empty", "key", g.key)

		return g.data, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var doc Document
	if err := g.codec.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	if doc.Version > Version {
		return nil, fmt.Errorf("decoding snapshot: unsupported version %d", doc.Version)
	}

	g.data = ledger.FromSnapshot(doc.Data)

	slog.Debug("loaded snapshot", "key", g.key, "codec", g.codec.Name(), "accounts", len(g.data.Accounts))

	return g.data, nil
}

func (g *Gateway) save(ctx context.Context) error {
	raw, err := g.codec.Marshal(Document{
		Version: Version,
		Key:     g.key,
		Data:    g.data.Snapshot(),
	})
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	sum := blake3.Sum256(raw)
	if g.haveSaved && sum == g.lastSum {
		slog.Debug("snapshot unchanged, skipping write", "key", g.key)
		return nil
	}

	if err := g.backend.Write(ctx, raw); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	g.lastSum, g.haveSaved = sum, true

	slog.Debug("saved snapshot", "key", g.key, "bytes", len(raw))

	return nil
}
