package sale

import (
	"context"

	"github.com/retailpos/backend/internal/domain/ledger"
	"github.com/retailpos/backend/internal/domain/sale"
)

// TransactionScope provides transactional access to everything the commit
// unit touches: the sale itself, the stock gateway and the ledger. All
// repository operations inside Execute are part of the same database
// transaction and commit or roll back atomically; a failed commit leaves
// no sale row, no stock decrement and no movement behind.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories of the
// commit unit within a transaction. All returned repositories share the
// same underlying database transaction.
type TransactionalRepositories interface {
	// Sales returns the sale repository scoped to the current transaction
	Sales() sale.SaleRepository
	// Exchanges returns the exchange repository scoped to the current transaction
	Exchanges() sale.ExchangeRepository
	// Stock returns the stock gateway scoped to the current transaction
	Stock() sale.StockGateway
	// Accounts returns the account repository scoped to the current transaction
	Accounts() ledger.AccountRepository
	// Movements returns the movement repository scoped to the current transaction
	Movements() ledger.MovementRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests.
type NoOpTransactionScope struct {
	sales     sale.SaleRepository
	exchanges sale.ExchangeRepository
	stock     sale.StockGateway
	accounts  ledger.AccountRepository
	movements ledger.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given collaborators.
func NewNoOpTransactionScope(
	sales sale.SaleRepository,
	exchanges sale.ExchangeRepository,
	stock sale.StockGateway,
	accounts ledger.AccountRepository,
	movements ledger.MovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		sales:     sales,
		exchanges: exchanges,
		stock:     stock,
		accounts:  accounts,
		movements: movements,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Sales returns the sale repository.
func (s *NoOpTransactionScope) Sales() sale.SaleRepository {
	return s.sales
}

// Exchanges returns the exchange repository.
func (s *NoOpTransactionScope) Exchanges() sale.ExchangeRepository {
	return s.exchanges
}

// Stock returns the stock gateway.
func (s *NoOpTransactionScope) Stock() sale.StockGateway {
	return s.stock
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
