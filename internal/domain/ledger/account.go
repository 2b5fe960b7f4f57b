package ledger

import (
	"time"

	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AccountStatus represents the status of a cash or bank account
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
	AccountStatusClosed   AccountStatus = "CLOSED"
)

// IsValid checks if the status is a valid AccountStatus
func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountStatusActive, AccountStatusInactive, AccountStatusClosed:
		return true
	}
	return false
}

// String returns the string representation of AccountStatus
func (s AccountStatus) String() string {
	return string(s)
}

// Account is the aggregate root for a cash or bank account.
// CurrentBalance is a cached projection; the source of truth is the
// validated movement history, and the invariant
// current == initial + Σ signed validated movements must hold at every
// observation point.
type Account struct {
	shared.BaseAggregateRoot
	Name           string
	Bank           string
	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	Status         AccountStatus
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a new active account with an initial balance
func NewAccount(name, bank string, initialBalance valueobject.Money) (*Account, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}

	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Bank:              bank,
		InitialBalance:    initialBalance.Amount(),
		CurrentBalance:    initialBalance.Amount(),
		Status:            AccountStatusActive,
	}, nil
}

// IsActive returns true if the account can receive movements
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// Deactivate marks the account inactive
func (a *Account) Deactivate() error {
	if a.Status == AccountStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Cannot deactivate a closed account")
	}
	a.Status = AccountStatusInactive
	a.UpdatedAt = time.Now()
	return nil
}

// Reactivate marks an inactive account active again
func (a *Account) Reactivate() error {
	if a.Status != AccountStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Only inactive accounts can be reactivated")
	}
	a.Status = AccountStatusActive
	a.UpdatedAt = time.Now()
	return nil
}

// Close closes the account permanently
func (a *Account) Close() error {
	if a.Status == AccountStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Account is already closed")
	}
	a.Status = AccountStatusClosed
	a.UpdatedAt = time.Now()
	return nil
}

// RefreshBalance replaces the cached balance with a figure re-derived from
// the movement history. It is the only path by which the balance changes;
// the poster computes validatedSum fresh from the movement set, never
// incrementally.
func (a *Account) RefreshBalance(validatedSum decimal.Decimal) {
	a.CurrentBalance = a.InitialBalance.Add(validatedSum)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// GetCurrentBalanceMoney returns the cached balance as Money
func (a *Account) GetCurrentBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyMAD(a.CurrentBalance)
}
