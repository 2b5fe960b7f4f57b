package shared

import (
	"context"
	"time"
)

// IdempotencyStore reserves client-generated tokens so that a retried
// commit does not execute twice
type IdempotencyStore interface {
	// Reserve atomically claims a token with a TTL.
	// Returns true if the token was newly claimed, false if it was
	// already claimed by an earlier attempt.
	Reserve(ctx context.Context, token string, ttl time.Duration) (bool, error)

	// Release frees a token so a failed operation can be retried
	Release(ctx context.Context, token string) error

	// IsReserved checks whether a token has already been claimed
	IsReserved(ctx context.Context, token string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for reserved tokens.
	// After this duration, the same token can be claimed again.
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
