package supplier

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Payment records money sent to a supplier. When the instrument is cash or
// bank transfer it posts exactly one debit movement on the store's ledger.
type Payment struct {
	shared.BaseAggregateRoot
	SupplierID uuid.UUID
	PurchaseID *uuid.UUID // optional: payments may be on-account
	Amount     decimal.Decimal
	Kind       sale.PaymentKind
	AccountID  *uuid.UUID // ledger account for cash/bank-transfer postings
	Label      string
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "supplier_payments"
}

// NewPayment creates a supplier payment
func NewPayment(supplierID uuid.UUID, purchaseID *uuid.UUID, amount valueobject.Money, kind sale.PaymentKind, accountID *uuid.UUID) (*Payment, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_KIND", "Payment kind is not valid")
	}
	if kind.PostsMovement() && (accountID == nil || *accountID == uuid.Nil) {
		return nil, shared.ErrMissingInstrumentDetail
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		PurchaseID:        purchaseID,
		Amount:            amount.Amount(),
		Kind:              kind,
		AccountID:         accountID,
	}
	p.UpdatedAt = time.Now()

	return p, nil
}

// PostsMovement returns true when this payment must produce a ledger
// movement
func (p *Payment) PostsMovement() bool {
	return p.Kind.PostsMovement()
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(p.Amount)
}

// Balance is the read-only projection of what a supplier is owed:
// Σ total and Σ paid across all of the supplier's purchases. It is never a
// stored mutable field.
type Balance struct {
	SupplierID uuid.UUID       `json:"supplier_id"`
	TotalDue   decimal.Decimal `json:"total_due"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	NetOwed    decimal.Decimal `json:"net_owed"`
}

// BalanceOf aggregates purchases into a running net-owed figure
func BalanceOf(supplierID uuid.UUID, purchases []Purchase) Balance {
	totalDue := decimal.Zero
	totalPaid := decimal.Zero
	for _, p := range purchases {
		totalDue = totalDue.Add(p.Total)
		totalPaid = totalPaid.Add(p.Paid)
	}
	return Balance{
		SupplierID: supplierID,
		TotalDue:   totalDue,
		TotalPaid:  totalPaid,
		NetOwed:    totalDue.Sub(totalPaid),
	}
}
