package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductRecord is the catalog row the stock gateway reads and adjusts.
// The catalog itself is managed elsewhere; settlement only snapshots the
// price and keeps the quantity honest.
type ProductRecord struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	Name      string          `gorm:"not null"`
	Type      string          `gorm:"not null;index"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockQty  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (ProductRecord) TableName() string {
	return "products"
}

// ClientRecord is the client directory row
type ClientRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"not null"`
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (ClientRecord) TableName() string {
	return "clients"
}

// GormStockGateway implements sale.StockGateway against the products table
type GormStockGateway struct {
	db *gorm.DB
}

// NewGormStockGateway creates a new GormStockGateway
func NewGormStockGateway(db *gorm.DB) *GormStockGateway {
	return &GormStockGateway{db: db}
}

// Availability returns the current price and available quantity. The
// figure is advisory; Decrement re-checks it atomically.
func (g *GormStockGateway) Availability(ctx context.Context, productID uuid.UUID, productType string) (sale.ProductAvailability, error) {
	var record ProductRecord
	query := g.db.WithContext(ctx).Where("id = ?", productID)
	if productType != "" {
		query = query.Where("type = ?", productType)
	}
	if err := query.First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sale.ProductAvailability{}, shared.ErrNotFound
		}
		return sale.ProductAvailability{}, err
	}

	return sale.ProductAvailability{
		Name:  record.Name,
		Price: record.Price,
		Qty:   record.StockQty,
	}, nil
}

// Decrement decreases stock with an atomic conditional update so two
// concurrent commits cannot both take the last unit
func (g *GormStockGateway) Decrement(ctx context.Context, productID uuid.UUID, qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Stock adjustment quantity must be positive")
	}

	result := g.db.WithContext(ctx).
		Model(&ProductRecord{}).
		Where("id = ? AND stock_qty >= ?", productID, qty).
		Updates(map[string]interface{}{
			"stock_qty":  gorm.Expr("stock_qty - ?", qty),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the product vanished or there is not enough stock;
		// distinguish so the caller can report the right code
		var count int64
		if err := g.db.WithContext(ctx).Model(&ProductRecord{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrInsufficientStock
	}
	return nil
}

// Increment increases stock (returns, compensating rollback)
func (g *GormStockGateway) Increment(ctx context.Context, productID uuid.UUID, qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Stock adjustment quantity must be positive")
	}

	result := g.db.WithContext(ctx).
		Model(&ProductRecord{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"stock_qty":  gorm.Expr("stock_qty + ?", qty),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormClientDirectory implements sale.ClientDirectory against the clients
// table
type GormClientDirectory struct {
	db *gorm.DB
}

// NewGormClientDirectory creates a new GormClientDirectory
func NewGormClientDirectory(db *gorm.DB) *GormClientDirectory {
	return &GormClientDirectory{db: db}
}

// Client resolves a client reference
func (d *GormClientDirectory) Client(ctx context.Context, id uuid.UUID) (sale.ClientInfo, error) {
	var record ClientRecord
	if err := d.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sale.ClientInfo{}, shared.ErrNotFound
		}
		return sale.ClientInfo{}, err
	}
	return sale.ClientInfo{
		ID:    record.ID,
		Name:  record.Name,
		Email: record.Email,
	}, nil
}

// Ensure the gateways implement the domain ports
var (
	_ sale.StockGateway    = (*GormStockGateway)(nil)
	_ sale.ClientDirectory = (*GormClientDirectory)(nil)
)
