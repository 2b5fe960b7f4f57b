package sale

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductAvailability is the catalog snapshot the stock gateway reports
// for a product at a point in time
type ProductAvailability struct {
	Name  string
	Price decimal.Decimal
	Qty   decimal.Decimal
}

// StockGateway exposes the catalog/stock collaborator. The figure returned
// by Availability is advisory; Decrement re-validates availability
// atomically so two terminals cannot both sell the last unit.
type StockGateway interface {
	// Availability returns the current price and available quantity
	Availability(ctx context.Context, productID uuid.UUID, productType string) (ProductAvailability, error)

	// Decrement atomically decreases stock, failing with
	// shared.ErrInsufficientStock when qty exceeds current availability
	Decrement(ctx context.Context, productID uuid.UUID, qty decimal.Decimal) error

	// Increment increases stock (returns, compensating rollback)
	Increment(ctx context.Context, productID uuid.UUID, qty decimal.Decimal) error
}

// ClientInfo is the directory projection of a client
type ClientInfo struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// ClientDirectory resolves client references
type ClientDirectory interface {
	Client(ctx context.Context, id uuid.UUID) (ClientInfo, error)
}
