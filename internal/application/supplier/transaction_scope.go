package supplier

import (
	"context"

	"github.com/retailpos/backend/internal/domain/ledger"
	"github.com/retailpos/backend/internal/domain/supplier"
)

// TransactionScope provides transactional access to everything a supplier
// settlement touches: the purchase, the payment record and the ledger.
// The paid-amount update, the payment append and the debit movement either
// all land or none do; a failed posting leaves no settled payment behind.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories of the
// settlement unit within a transaction. All returned repositories share
// the same underlying database transaction.
type TransactionalRepositories interface {
	// Purchases returns the purchase repository scoped to the current transaction
	Purchases() supplier.PurchaseRepository
	// Payments returns the payment repository scoped to the current transaction
	Payments() supplier.PaymentRepository
	// Accounts returns the account repository scoped to the current transaction
	Accounts() ledger.AccountRepository
	// Movements returns the movement repository scoped to the current transaction
	Movements() ledger.MovementRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests.
type NoOpTransactionScope struct {
	purchases supplier.PurchaseRepository
	payments  supplier.PaymentRepository
	accounts  ledger.AccountRepository
	movements ledger.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given collaborators.
func NewNoOpTransactionScope(
	purchases supplier.PurchaseRepository,
	payments supplier.PaymentRepository,
	accounts ledger.AccountRepository,
	movements ledger.MovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		purchases: purchases,
		payments:  payments,
		accounts:  accounts,
		movements: movements,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Purchases returns the purchase repository.
func (s *NoOpTransactionScope) Purchases() supplier.PurchaseRepository {
	return s.purchases
}

// Payments returns the payment repository.
func (s *NoOpTransactionScope) Payments() supplier.PaymentRepository {
	return s.payments
}

// Accounts returns the account repository.
func (s *NoOpTransactionScope) Accounts() ledger.AccountRepository {
	return s.accounts
}

// Movements returns the movement repository.
func (s *NoOpTransactionScope) Movements() ledger.MovementRepository {
	return s.movements
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
