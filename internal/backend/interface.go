// Package backend builds the record store and the event publisher selected
// by configuration.
package backend

import (
	"context"

	"budget/internal/amqp"
	"budget/internal/storage"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result holds the store and the function that releases it.
type Result struct {
	Store   storage.RecordStore
	Cleanup CleanupFunc
}

// Factory creates record stores and event publishers based on configuration.
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
	CreatePublisher(config Config) *amqp.Client
}

type Config struct {
	Type BackendType

	DataFilePath string
	SQLiteDBPath string
	RedisAddr    string

	// Optional event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
	RedisBackend  BackendType = "redis"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend, RedisBackend:
		return true
	default:
		return false
	}
}
