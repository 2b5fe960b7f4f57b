package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MovementDirection is the sign of a movement relative to the account
type MovementDirection string

const (
	MovementDirectionCredit MovementDirection = "CREDIT" // balance increases
	MovementDirectionDebit  MovementDirection = "DEBIT"  // balance decreases
)

// IsValid checks if the direction is a valid MovementDirection
func (d MovementDirection) IsValid() bool {
	return d == MovementDirectionCredit || d == MovementDirectionDebit
}

// String returns the string representation of MovementDirection
func (d MovementDirection) String() string {
	return string(d)
}

// MovementStatus represents the status of a movement.
// Movements in this system are posted already validated; PENDING and
// REJECTED exist for imported or externally sourced rows.
type MovementStatus string

const (
	MovementStatusPending   MovementStatus = "PENDING"
	MovementStatusValidated MovementStatus = "VALIDATED"
	MovementStatusRejected  MovementStatus = "REJECTED"
	MovementStatusCancelled MovementStatus = "CANCELLED"
)

// IsValid checks if the status is a valid MovementStatus
func (s MovementStatus) IsValid() bool {
	switch s {
	case MovementStatusPending, MovementStatusValidated, MovementStatusRejected, MovementStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of MovementStatus
func (s MovementStatus) String() string {
	return string(s)
}

// OriginKind identifies what produced a movement
type OriginKind string

const (
	OriginKindSale            OriginKind = "SALE"
	OriginKindSupplierPayment OriginKind = "SUPPLIER_PAYMENT"
	OriginKindExchange        OriginKind = "EXCHANGE"
	OriginKindManual          OriginKind = "MANUAL"
)

// IsValid checks if the kind is a valid OriginKind
func (k OriginKind) IsValid() bool {
	switch k {
	case OriginKindSale, OriginKindSupplierPayment, OriginKindExchange, OriginKindManual:
		return true
	}
	return false
}

// Origin references the record a movement settles
type Origin struct {
	Kind OriginKind
	Ref  uuid.UUID
}

// ManualOrigin is the origin for operator-entered movements
func ManualOrigin() Origin {
	return Origin{Kind: OriginKindManual}
}

// Movement is an append-only ledger row. Once VALIDATED its financial
// fields never mutate in place; corrections are modeled as new reversing
// movements to preserve auditability.
type Movement struct {
	shared.BaseAggregateRoot
	AccountID  uuid.UUID
	Direction  MovementDirection
	Amount     decimal.Decimal // always positive; sign carried by Direction
	Status     MovementStatus
	OriginKind OriginKind
	OriginRef  *uuid.UUID
	Label      string
	ReversesID *uuid.UUID // set on compensating movements
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "movements"
}

// NewMovement creates a VALIDATED movement for an account
func NewMovement(accountID uuid.UUID, direction MovementDirection, amount valueobject.Money, origin Origin, label string) (*Movement, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Movement direction must be CREDIT or DEBIT")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Movement amount must be positive")
	}
	if !origin.Kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_ORIGIN", "Movement origin kind is not valid")
	}

	m := &Movement{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AccountID:         accountID,
		Direction:         direction,
		Amount:            amount.Amount(),
		Status:            MovementStatusValidated,
		OriginKind:        origin.Kind,
		Label:             label,
	}
	if origin.Ref != uuid.Nil {
		ref := origin.Ref
		m.OriginRef = &ref
	}

	return m, nil
}

// SignedAmount returns the amount with the direction's sign applied
func (m *Movement) SignedAmount() decimal.Decimal {
	if m.Direction == MovementDirectionDebit {
		return m.Amount.Neg()
	}
	return m.Amount
}

// IsValidated returns true if the movement counts toward the balance
func (m *Movement) IsValidated() bool {
	return m.Status == MovementStatusValidated
}

// Cancel voids a movement that has not been validated
func (m *Movement) Cancel() error {
	if m.Status != MovementStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending movements can be cancelled; validated rows are reversed instead")
	}
	m.Status = MovementStatusCancelled
	m.UpdatedAt = time.Now()
	return nil
}

// Reverse creates the compensating movement for a validated row: same
// amount, opposite direction, linked through ReversesID. The original row
// is never edited.
func (m *Movement) Reverse(label string) (*Movement, error) {
	if !m.IsValidated() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only validated movements can be reversed")
	}

	direction := MovementDirectionCredit
	if m.Direction == MovementDirectionCredit {
		direction = MovementDirectionDebit
	}

	reversal, err := NewMovement(m.AccountID, direction, valueobject.NewMoneyMAD(m.Amount), Origin{Kind: m.OriginKind, Ref: m.ID}, label)
	if err != nil {
		return nil, err
	}
	id := m.ID
	reversal.ReversesID = &id

	return reversal, nil
}

// GetAmountMoney returns the movement amount as Money
func (m *Movement) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(m.Amount)
}
