package sale

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ExchangeStatus represents the status of a return/exchange
type ExchangeStatus string

const (
	ExchangeStatusPending   ExchangeStatus = "PENDING"
	ExchangeStatusFinalized ExchangeStatus = "FINALIZED"
	ExchangeStatusCancelled ExchangeStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ExchangeStatus
func (s ExchangeStatus) IsValid() bool {
	switch s {
	case ExchangeStatusPending, ExchangeStatusFinalized, ExchangeStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ExchangeStatus
func (s ExchangeStatus) String() string {
	return string(s)
}

// ExchangeLine describes one side of an exchange: the returned item or its
// replacement
type ExchangeLine struct {
	ProductID   uuid.UUID
	ProductType string
	UnitPrice   decimal.Decimal
	Quantity    decimal.Decimal
}

// Total returns UnitPrice * Quantity
func (l ExchangeLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(l.Quantity)
}

// IsEmpty returns true when the line carries no product (plain return)
func (l ExchangeLine) IsEmpty() bool {
	return l.ProductID == uuid.Nil
}

// EvaluateDifference computes the signed price differential of an exchange:
// newTotal - oldTotal. Positive means the client owes the store, negative
// means the store owes the client. A plain return has an empty new line and
// a difference of -oldTotal.
func EvaluateDifference(oldLine, newLine ExchangeLine) valueobject.Money {
	return valueobject.NewMoneyMAD(newLine.Total().Sub(oldLine.Total()))
}

// Exchange is the aggregate root for a return or exchange (reprise/retour).
// It records both lines and the signed difference, and is settled by a
// single compensating payment or refund driven through the payment
// allocator and the ledger poster.
type Exchange struct {
	shared.BaseAggregateRoot
	ClientID       uuid.UUID
	OldProductID   uuid.UUID
	OldProductType string
	OldUnitPrice   decimal.Decimal
	OldQuantity    decimal.Decimal
	NewProductID   *uuid.UUID
	NewProductType string
	NewUnitPrice   decimal.Decimal
	NewQuantity    decimal.Decimal
	Difference     decimal.Decimal // newTotal - oldTotal, signed
	Resolution     PaymentKind     // instrument settling the difference
	AccountID      *uuid.UUID      // ledger account the movement posts to
	Status         ExchangeStatus
	FinalizedAt    *time.Time
	CancelledAt    *time.Time
}

// TableName returns the table name for GORM
func (Exchange) TableName() string {
	return "exchanges"
}

// NewExchange creates a pending exchange of oldLine against newLine
func NewExchange(clientID uuid.UUID, oldLine, newLine ExchangeLine) (*Exchange, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if oldLine.IsEmpty() {
		return nil, shared.NewDomainError("INVALID_RETURN_LINE", "Returned line must reference a product")
	}
	if oldLine.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Returned quantity must be positive")
	}
	if !newLine.IsEmpty() && newLine.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Replacement quantity must be positive")
	}

	e := &Exchange{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		OldProductID:      oldLine.ProductID,
		OldProductType:    oldLine.ProductType,
		OldUnitPrice:      oldLine.UnitPrice,
		OldQuantity:       oldLine.Quantity,
		Difference:        EvaluateDifference(oldLine, newLine).Amount(),
		Status:            ExchangeStatusPending,
	}

	if !newLine.IsEmpty() {
		newID := newLine.ProductID
		e.NewProductID = &newID
		e.NewProductType = newLine.ProductType
		e.NewUnitPrice = newLine.UnitPrice
		e.NewQuantity = newLine.Quantity
	}

	return e, nil
}

// NewReturn creates a plain return with no replacement; the difference is
// always -oldTotal and resolves as a refund.
func NewReturn(clientID uuid.UUID, oldLine ExchangeLine) (*Exchange, error) {
	return NewExchange(clientID, oldLine, ExchangeLine{})
}

// IsPlainReturn returns true when there is no replacement line
func (e *Exchange) IsPlainReturn() bool {
	return e.NewProductID == nil
}

// GetDifferenceMoney returns the signed difference as Money
func (e *Exchange) GetDifferenceMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(e.Difference)
}

// ClientOwesStore returns true when the difference is positive
func (e *Exchange) ClientOwesStore() bool {
	return e.Difference.IsPositive()
}

// Finalize settles the exchange with the given instrument. The caller (the
// reconciler service) is responsible for validating |difference| through
// the payment allocator and posting the movement; this method only records
// the resolution and the transition.
func (e *Exchange) Finalize(instrument PaymentKind, accountID *uuid.UUID) error {
	if e.Status != ExchangeStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot finalize exchange in %s status", e.Status))
	}
	if !instrument.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_KIND", "Resolution instrument is not valid")
	}
	if instrument == PaymentKindBankTransfer && (accountID == nil || *accountID == uuid.Nil) {
		return shared.ErrMissingInstrumentDetail
	}

	now := time.Now()
	e.Resolution = instrument
	e.AccountID = accountID
	e.Status = ExchangeStatusFinalized
	e.FinalizedAt = &now
	e.UpdatedAt = now

	e.AddDomainEvent(NewExchangeFinalizedEvent(e))

	return nil
}

// Cancel abandons a pending exchange
func (e *Exchange) Cancel() error {
	if e.Status != ExchangeStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel exchange in %s status", e.Status))
	}

	now := time.Now()
	e.Status = ExchangeStatusCancelled
	e.CancelledAt = &now
	e.UpdatedAt = now

	return nil
}
