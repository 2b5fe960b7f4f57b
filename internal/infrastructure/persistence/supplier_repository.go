package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/supplier"
	"gorm.io/gorm"
)

// GormPurchaseRepository implements PurchaseRepository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// FindByID finds a purchase by ID
func (r *GormPurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*supplier.Purchase, error) {
	var p supplier.Purchase
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindBySupplier finds all purchases for a supplier. A filter without
// pagination returns every purchase, which the balance projection relies
// on.
func (r *GormPurchaseRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]supplier.Purchase, error) {
	var purchases []supplier.Purchase
	query := r.db.WithContext(ctx).
		Model(&supplier.Purchase{}).
		Where("supplier_id = ?", supplierID)

	if filter.Search != "" {
		query = query.Where("reference ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		if key == "status" {
			query = query.Where("status = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, PurchaseSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

// Save creates or updates a purchase
func (r *GormPurchaseRepository) Save(ctx context.Context, p *supplier.Purchase) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// SaveWithLock saves a purchase with optimistic locking
func (r *GormPurchaseRepository) SaveWithLock(ctx context.Context, p *supplier.Purchase) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&supplier.Purchase{}).
			Where("id = ?", p.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		// ApplyPayment bumps the aggregate version, so the stored row
		// must be exactly one version behind
		if currentVersion != p.Version-1 {
			return shared.ErrConcurrencyConflict
		}

		p.UpdatedAt = time.Now()

		result := tx.Model(&supplier.Purchase{}).
			Where("id = ? AND version = ?", p.ID, currentVersion).
			Updates(map[string]interface{}{
				"reference":  p.Reference,
				"total":      p.Total,
				"paid":       p.Paid,
				"status":     p.Status,
				"version":    p.Version,
				"updated_at": p.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

// GormSupplierPaymentRepository implements PaymentRepository using GORM.
// Supplier payments are append-only rows.
type GormSupplierPaymentRepository struct {
	db *gorm.DB
}

// NewGormSupplierPaymentRepository creates a new GormSupplierPaymentRepository
func NewGormSupplierPaymentRepository(db *gorm.DB) *GormSupplierPaymentRepository {
	return &GormSupplierPaymentRepository{db: db}
}

// FindByID finds a payment by ID
func (r *GormSupplierPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*supplier.Payment, error) {
	var p supplier.Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindBySupplier finds all payments for a supplier
func (r *GormSupplierPaymentRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]supplier.Payment, error) {
	var payments []supplier.Payment
	query := r.db.WithContext(ctx).
		Model(&supplier.Payment{}).
		Where("supplier_id = ?", supplierID)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("created_at " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByPurchase finds all payments applied to a purchase
func (r *GormSupplierPaymentRepository) FindByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]supplier.Payment, error) {
	var payments []supplier.Payment
	if err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Append inserts a new payment row
func (r *GormSupplierPaymentRepository) Append(ctx context.Context, p *supplier.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Ensure the repositories implement the domain interfaces
var (
	_ supplier.PurchaseRepository = (*GormPurchaseRepository)(nil)
	_ supplier.PaymentRepository  = (*GormSupplierPaymentRepository)(nil)
)
