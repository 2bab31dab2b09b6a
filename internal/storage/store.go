// Package storage persists the ledger record as opaque bytes under a single
// key. Every backend implements RecordStore.
package storage

import (
	"context"
	"errors"
)

// DefaultKey is the key the ledger record is stored under.
const DefaultKey = "budgetTrackerData"

// ErrNotFound is returned by Get when no record exists for the key.
var ErrNotFound = errors.New("record not found")

// RecordStore is a synchronous key-value store for whole records.
type RecordStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
