package persistence

import (
	"context"

	appsupplier "github.com/retailpos/backend/internal/application/supplier"
	"github.com/retailpos/backend/internal/domain/ledger"
	"github.com/retailpos/backend/internal/domain/supplier"
	"gorm.io/gorm"
)

// GormSupplierTransactionScope implements the supplier settlement
// TransactionScope with a real database transaction. The purchase update,
// the payment append and the debit movement either all land or none do.
type GormSupplierTransactionScope struct {
	db *gorm.DB
}

// NewGormSupplierTransactionScope creates a new GormSupplierTransactionScope
func NewGormSupplierTransactionScope(db *gorm.DB) *GormSupplierTransactionScope {
	return &GormSupplierTransactionScope{db: db}
}

// Execute runs fn inside a database transaction
func (s *GormSupplierTransactionScope) Execute(ctx context.Context, fn func(repos appsupplier.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormSupplierRepositories{tx: tx})
	})
}

// gormSupplierRepositories provides the settlement repositories bound to
// one transaction
type gormSupplierRepositories struct {
	tx *gorm.DB
}

func (r *gormSupplierRepositories) Purchases() supplier.PurchaseRepository {
	return NewGormPurchaseRepository(r.tx)
}

func (r *gormSupplierRepositories) Payments() supplier.PaymentRepository {
	return NewGormSupplierPaymentRepository(r.tx)
}

func (r *gormSupplierRepositories) Accounts() ledger.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

func (r *gormSupplierRepositories) Movements() ledger.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

var (
	_ appsupplier.TransactionScope          = (*GormSupplierTransactionScope)(nil)
	_ appsupplier.TransactionalRepositories = (*gormSupplierRepositories)(nil)
)
