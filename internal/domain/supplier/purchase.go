package supplier

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PurchaseStatus is derived from the paid amount, never set directly:
// PAID iff paid >= total, PARTIAL iff 0 < paid < total, PENDING iff paid == 0.
type PurchaseStatus string

const (
	PurchaseStatusPending PurchaseStatus = "PENDING"
	PurchaseStatusPartial PurchaseStatus = "PARTIAL"
	PurchaseStatusPaid    PurchaseStatus = "PAID"
)

// IsValid checks if the status is a valid PurchaseStatus
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusPartial, PurchaseStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of PurchaseStatus
func (s PurchaseStatus) String() string {
	return string(s)
}

// deriveStatus computes the status from paid vs total
func deriveStatus(paid, total decimal.Decimal) PurchaseStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return PurchaseStatusPaid
	case paid.GreaterThan(decimal.Zero):
		return PurchaseStatusPartial
	default:
		return PurchaseStatusPending
	}
}

// Purchase is the aggregate root for a supplier purchase. It is mutated
// only by applying supplier payments; the remaining amount and the status
// are derived from total and paid.
type Purchase struct {
	shared.BaseAggregateRoot
	SupplierID uuid.UUID
	Reference  string
	Total      decimal.Decimal
	Paid       decimal.Decimal
	Status     PurchaseStatus
}

// TableName returns the table name for GORM
func (Purchase) TableName() string {
	return "supplier_purchases"
}

// NewPurchase creates a supplier purchase with an optional amount already
// paid at recording time
func NewPurchase(supplierID uuid.UUID, reference string, total valueobject.Money, initialPaid valueobject.Money) (*Purchase, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if total.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Purchase total must be positive")
	}
	if initialPaid.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Initial payment cannot be negative")
	}
	if initialPaid.Amount().GreaterThan(total.Amount()) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Initial payment cannot exceed the purchase total")
	}

	return &Purchase{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		Reference:         reference,
		Total:             total.Amount(),
		Paid:              initialPaid.Amount(),
		Status:            deriveStatus(initialPaid.Amount(), total.Amount()),
	}, nil
}

// Remaining returns total - paid
func (p *Purchase) Remaining() decimal.Decimal {
	return p.Total.Sub(p.Paid)
}

// ApplyPayment increases the paid amount and re-derives the status.
// Overpayment is rejected: a payment may settle at most the remaining
// amount.
func (p *Purchase) ApplyPayment(amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(p.Remaining()) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment exceeds the remaining amount on the purchase")
	}

	p.Paid = p.Paid.Add(amount.Amount())
	p.Status = deriveStatus(p.Paid, p.Total)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// GetRemainingMoney returns the remaining amount as Money
func (p *Purchase) GetRemainingMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(p.Remaining())
}

// IsSettled returns true once the purchase is fully paid
func (p *Purchase) IsSettled() bool {
	return p.Status == PurchaseStatusPaid
}
