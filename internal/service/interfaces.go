// Package service defines the interfaces shared between pipeline components.
package service

import (
	"context"
	"time"
)

// BlobStore is a key-value store for serialized application state.
// Implementations must return common.ErrNotFound for missing keys.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// RetryOptions configures retry behavior for transient failures.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
