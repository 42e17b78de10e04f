package storage

import (
	"context"
	"errors"
)

//go:generate mockgen -source=backend.go -destination=backend_mock.go -package=storage

// ErrNoSnapshot is returned by a Backend that has nothing stored yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Backend persists one encoded snapshot document.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}
