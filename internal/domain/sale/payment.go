package sale

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentKind represents a payment instrument
type PaymentKind string

const (
	PaymentKindCash         PaymentKind = "CASH"
	PaymentKindBankTransfer PaymentKind = "BANK_TRANSFER"
	PaymentKindCheque       PaymentKind = "CHEQUE"
	PaymentKindCard         PaymentKind = "CARD"
)

// IsValid checks if the kind is a valid PaymentKind
func (k PaymentKind) IsValid() bool {
	switch k {
	case PaymentKindCash, PaymentKindBankTransfer, PaymentKindCheque, PaymentKindCard:
		return true
	}
	return false
}

// String returns the string representation of PaymentKind
func (k PaymentKind) String() string {
	return string(k)
}

// PostsMovement returns true for instruments that produce a ledger movement
// when settled. Card settlement lives in the acquirer's ledger and cheques
// are posted on clearance, so only cash and bank transfers post here.
func (k PaymentKind) PostsMovement() bool {
	return k == PaymentKindCash || k == PaymentKindBankTransfer
}

// PaymentEntry is one instrument inside a payment allocation.
// A single-instrument payment is an allocation of one entry.
type PaymentEntry struct {
	Kind          PaymentKind
	Amount        valueobject.Money
	AccountID     *uuid.UUID // required for bank transfers
	ChequeNumber  string     // required for cheques
	ChequeDueDate *time.Time // required for cheques, must not be in the past
}

// Payment is a settled payment row owned by a committed sale
type Payment struct {
	ID            uuid.UUID
	SaleID        uuid.UUID
	Kind          PaymentKind
	Amount        decimal.Decimal
	AccountID     *uuid.UUID
	ChequeNumber  string
	ChequeDueDate *time.Time
	CreatedAt     time.Time
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "sale_payments"
}

func newPayment(saleID uuid.UUID, entry PaymentEntry) Payment {
	return Payment{
		ID:            uuid.New(),
		SaleID:        saleID,
		Kind:          entry.Kind,
		Amount:        entry.Amount.Amount(),
		AccountID:     entry.AccountID,
		ChequeNumber:  entry.ChequeNumber,
		ChequeDueDate: entry.ChequeDueDate,
		CreatedAt:     time.Now(),
	}
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(p.Amount)
}

// AccountChecker resolves whether a bank account reference exists and is
// active. The allocator only reads through it; it never writes.
type AccountChecker interface {
	IsActive(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// Allocator validates payment allocations against a payable amount.
// Validation is all-or-nothing and performs no persistence: either every
// entry passes its per-kind rules and the amounts sum to the payable amount
// within CentTolerance, or the whole allocation is rejected.
type Allocator struct {
	accounts AccountChecker
}

// NewAllocator creates a new Allocator
func NewAllocator(accounts AccountChecker) *Allocator {
	return &Allocator{accounts: accounts}
}

// Validate checks the allocation entries against the payable amount
func (a *Allocator) Validate(ctx context.Context, payable valueobject.Money, entries []PaymentEntry) error {
	if len(entries) == 0 {
		return shared.ErrPaymentMismatch
	}

	sum := decimal.Zero
	for idx := range entries {
		if err := a.validateEntry(ctx, &entries[idx]); err != nil {
			return err
		}
		sum = sum.Add(entries[idx].Amount.Amount())
	}

	if sum.Sub(payable.Amount()).Abs().GreaterThan(valueobject.CentTolerance) {
		return shared.ErrPaymentMismatch
	}

	return nil
}

// validateEntry applies the per-kind rules to one entry
func (a *Allocator) validateEntry(ctx context.Context, entry *PaymentEntry) error {
	if !entry.Kind.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_KIND", "Payment kind is not valid")
	}
	if entry.Amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	switch entry.Kind {
	case PaymentKindBankTransfer:
		if entry.AccountID == nil || *entry.AccountID == uuid.Nil {
			return shared.ErrMissingInstrumentDetail
		}
		active, err := a.accounts.IsActive(ctx, *entry.AccountID)
		if err != nil {
			return err
		}
		if !active {
			return shared.ErrInactiveAccount
		}
	case PaymentKindCheque:
		if entry.ChequeNumber == "" || entry.ChequeDueDate == nil {
			return shared.ErrMissingInstrumentDetail
		}
		// Pragmatic safeguard, not a strict accounting rule: a cheque due
		// today is accepted, one dated yesterday is not.
		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if entry.ChequeDueDate.Before(today) {
			return shared.NewDomainError("CHEQUE_DUE_DATE_PAST", "Cheque due date cannot be in the past")
		}
	}

	return nil
}
