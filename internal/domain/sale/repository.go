package sale

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByID finds a sale by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByCommitToken finds a committed sale by its idempotency token
	FindByCommitToken(ctx context.Context, token string) (*Sale, error)

	// FindAll finds sales with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Sale, error)

	// FindByClient finds sales for a client
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]Sale, error)

	// FindByStatus finds sales by status
	FindByStatus(ctx context.Context, status SaleStatus, filter shared.Filter) ([]Sale, error)

	// Save creates or updates a sale with its lines and payments
	Save(ctx context.Context, s *Sale) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, s *Sale) error

	// Delete deletes a sale; only BUILDING/ABORTED sales may be deleted,
	// committed rows are append-only
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts sales matching a filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts sales by status
	CountByStatus(ctx context.Context, status SaleStatus) (int64, error)
}

// ExchangeRepository defines the interface for return/exchange persistence
type ExchangeRepository interface {
	// FindByID finds an exchange by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Exchange, error)

	// FindAll finds exchanges with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Exchange, error)

	// FindByClient finds exchanges for a client
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]Exchange, error)

	// Save creates or updates an exchange
	Save(ctx context.Context, e *Exchange) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, e *Exchange) error
}
