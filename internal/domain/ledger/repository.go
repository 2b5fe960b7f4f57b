package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	// FindByID finds an account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindAll finds accounts with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Account, error)

	// ListActive returns all accounts that can receive movements
	ListActive(ctx context.Context) ([]Account, error)

	// Save creates or updates an account
	Save(ctx context.Context, a *Account) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, a *Account) error
}

// MovementRepository defines the interface for movement persistence.
// Movements are append-only: there is no update or delete.
type MovementRepository interface {
	// FindByID finds a movement by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Movement, error)

	// FindByAccount finds movements for an account
	FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]Movement, error)

	// FindByOrigin finds movements produced by a given origin record
	FindByOrigin(ctx context.Context, kind OriginKind, ref uuid.UUID) ([]Movement, error)

	// Append inserts a new movement row
	Append(ctx context.Context, m *Movement) error

	// SumValidatedByAccount returns Σ signed amount of validated movements
	// for an account, computed fresh from the movement set
	SumValidatedByAccount(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
}
