package supplier

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// PurchaseRepository defines the interface for supplier purchase persistence
type PurchaseRepository interface {
	// FindByID finds a purchase by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Purchase, error)

	// FindBySupplier finds all purchases for a supplier
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]Purchase, error)

	// Save creates or updates a purchase
	Save(ctx context.Context, p *Purchase) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, p *Purchase) error
}

// PaymentRepository defines the interface for supplier payment persistence.
// Payments are append-only.
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindBySupplier finds all payments for a supplier
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]Payment, error)

	// FindByPurchase finds all payments applied to a purchase
	FindByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]Payment, error)

	// Append inserts a new payment row
	Append(ctx context.Context, p *Payment) error
}
