package persistence

import (
	"context"

	appsale "github.com/retailpos/backend/internal/application/sale"
	"github.com/retailpos/backend/internal/domain/ledger"
	"github.com/retailpos/backend/internal/domain/sale"
	"gorm.io/gorm"
)

// GormSaleTransactionScope implements the commit unit's TransactionScope
// with a real database transaction. Everything the commit touches, the
// sale row, the stock decrement and the ledger posting, shares one
// transaction and rolls back together.
type GormSaleTransactionScope struct {
	db *gorm.DB
}

// NewGormSaleTransactionScope creates a new GormSaleTransactionScope
func NewGormSaleTransactionScope(db *gorm.DB) *GormSaleTransactionScope {
	return &GormSaleTransactionScope{db: db}
}

// Execute runs fn inside a database transaction
func (s *GormSaleTransactionScope) Execute(ctx context.Context, fn func(repos appsale.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormSaleRepositories{tx: tx})
	})
}

// gormSaleRepositories provides the commit unit's repositories bound to
// one transaction
type gormSaleRepositories struct {
	tx *gorm.DB
}

func (r *gormSaleRepositories) Sales() sale.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormSaleRepositories) Exchanges() sale.ExchangeRepository {
	return NewGormExchangeRepository(r.tx)
}

func (r *gormSaleRepositories) Stock() sale.StockGateway {
	return NewGormStockGateway(r.tx)
}

func (r *gormSaleRepositories) Accounts() ledger.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

func (r *gormSaleRepositories) Movements() ledger.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

var (
	_ appsale.TransactionScope          = (*GormSaleTransactionScope)(nil)
	_ appsale.TransactionalRepositories = (*gormSaleRepositories)(nil)
)
