package persistence

import (
	"context"

	appledger "github.com/retailpos/backend/internal/application/ledger"
	"github.com/retailpos/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormLedgerTransactionScope implements the posting TransactionScope with
// a real database transaction. A movement insert and the matching balance
// refresh either both land or neither does.
type GormLedgerTransactionScope struct {
	db *gorm.DB
}

// NewGormLedgerTransactionScope creates a new GormLedgerTransactionScope
func NewGormLedgerTransactionScope(db *gorm.DB) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{db: db}
}

// Execute runs fn inside a database transaction
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerRepositories{tx: tx})
	})
}

// gormLedgerRepositories provides the ledger repositories bound to one
// transaction
type gormLedgerRepositories struct {
	tx *gorm.DB
}

func (r *gormLedgerRepositories) Accounts() ledger.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

func (r *gormLedgerRepositories) Movements() ledger.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

var (
	_ appledger.TransactionScope          = (*GormLedgerTransactionScope)(nil)
	_ appledger.TransactionalRepositories = (*gormLedgerRepositories)(nil)
)
