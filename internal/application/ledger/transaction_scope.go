package ledger

import (
	"context"

	"github.com/retailpos/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the ledger repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories
// within a transaction. Both repositories share the same underlying
// database transaction, which is what makes a movement insert and the
// matching balance refresh a single unit.
type TransactionalRepositories interface {
	// Accounts returns the account repository scoped to the current transaction
	Accounts() ledger.AccountRepository
	// Movements returns the movement repository scoped to the current transaction
	Movements() ledger.MovementRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests.
type NoOpTransactionScope struct {
	accounts  ledger.AccountRepository
	movements ledger.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(accounts ledger.AccountRepository, movements ledger.MovementRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{accounts: accounts, movements: movements}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
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
