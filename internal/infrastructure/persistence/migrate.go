package persistence

import (
	"github.com/retailpos/backend/internal/domain/ledger"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/supplier"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates all schema tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ProductRecord{},
		&ClientRecord{},
		&sale.Sale{},
		&sale.SaleLine{},
		&sale.Payment{},
		&sale.Exchange{},
		&ledger.Account{},
		&ledger.Movement{},
		&supplier.Purchase{},
		&supplier.Payment{},
	)
}
