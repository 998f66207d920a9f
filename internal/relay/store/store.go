package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/acrelay/internal/relay/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. Concrete drivers (memory, sqlite)
// implement this and expose the results repository through Results().
type Store interface {
	Results() Results

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backing storage is still reachable.
	Ping(ctx context.Context) error
}

type Results interface {
	// PutResult overwrites whatever is stored for the token and bumps
	// updated_at. Last write wins.
	PutResult(ctx context.Context, r domain.Result) error

	// GetResult is non-destructive; repeated reads return the same payload.
	GetResult(ctx context.Context, token string) (domain.Result, error)

	// DeleteResult drops the token's result, if any. Deleting a missing
	// result is not an error.
	DeleteResult(ctx context.Context, token string) error

	// DeleteExpiredResults removes results last written before olderThan
	// and reports how many went.
	DeleteExpiredResults(ctx context.Context, olderThan time.Time) (int, error)
}
