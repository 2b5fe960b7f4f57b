package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale by its ID
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	var s sale.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByCommitToken finds a committed sale by its idempotency token
func (r *GormSaleRepository) FindByCommitToken(ctx context.Context, token string) (*sale.Sale, error) {
	var s sale.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		Where("commit_token = ? AND status = ?", token, sale.SaleStatusCommitted).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindAll finds sales with filtering
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sale.Sale, error) {
	var sales []sale.Sale
	query := r.applyFilter(r.db.WithContext(ctx).Model(&sale.Sale{}).Preload("Lines").Preload("Payments"), filter)
	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// FindByClient finds sales for a client
func (r *GormSaleRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]sale.Sale, error) {
	var sales []sale.Sale
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&sale.Sale{}).Preload("Lines").Preload("Payments").
			Where("client_id = ?", clientID),
		filter,
	)
	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// FindByStatus finds sales by status
func (r *GormSaleRepository) FindByStatus(ctx context.Context, status sale.SaleStatus, filter shared.Filter) ([]sale.Sale, error) {
	var sales []sale.Sale
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&sale.Sale{}).Preload("Lines").Preload("Payments").
			Where("status = ?", status),
		filter,
	)
	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// Save creates or updates a sale with its lines and payments
func (r *GormSaleRepository) Save(ctx context.Context, s *sale.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines", "Payments").Save(s).Error; err != nil {
			return err
		}
		return r.saveChildren(tx, s)
	})
}

// SaveWithLock saves a sale with optimistic locking
func (r *GormSaleRepository) SaveWithLock(ctx context.Context, s *sale.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&sale.Sale{}).
			Where("id = ?", s.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != s.Version {
			return shared.ErrConcurrencyConflict
		}

		s.Version++
		s.UpdatedAt = time.Now()

		result := tx.Model(&sale.Sale{}).
			Where("id = ? AND version = ?", s.ID, currentVersion).
			Updates(map[string]interface{}{
				"client_id":       s.ClientID,
				"client_name":     s.ClientName,
				"billing_mode":    s.BillingMode,
				"subtotal":        s.Subtotal,
				"discount_amount": s.DiscountAmount,
				"tax_amount":      s.TaxAmount,
				"total_payable":   s.TotalPayable,
				"status":          s.Status,
				"commit_token":    s.CommitToken,
				"reviewed_at":     s.ReviewedAt,
				"confirmed_at":    s.ConfirmedAt,
				"committed_at":    s.CommittedAt,
				"aborted_at":      s.AbortedAt,
				"abort_reason":    s.AbortReason,
				"version":         s.Version,
				"updated_at":      s.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return r.saveChildren(tx, s)
	})
}

// saveChildren reconciles the line and payment rows with the aggregate
func (r *GormSaleRepository) saveChildren(tx *gorm.DB, s *sale.Sale) error {
	lineIDs := make([]uuid.UUID, len(s.Lines))
	for i, line := range s.Lines {
		lineIDs[i] = line.ID
	}

	if len(lineIDs) > 0 {
		if err := tx.Where("sale_id = ? AND id NOT IN ?", s.ID, lineIDs).
			Delete(&sale.SaleLine{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("sale_id = ?", s.ID).
			Delete(&sale.SaleLine{}).Error; err != nil {
			return err
		}
	}

	for i := range s.Lines {
		s.Lines[i].SaleID = s.ID
		if err := tx.Save(&s.Lines[i]).Error; err != nil {
			return err
		}
	}

	// Payments are attached once at commit and never change afterwards
	for i := range s.Payments {
		s.Payments[i].SaleID = s.ID
		if err := tx.Save(&s.Payments[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// Delete deletes a sale and its children. Committed sales are append-only
// and must never be deleted.
func (r *GormSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s sale.Sale
		if err := tx.Select("id", "status").First(&s, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if s.Status == sale.SaleStatusCommitted {
			return shared.NewDomainError("SALE_IMMUTABLE", "Committed sales cannot be deleted")
		}

		if err := tx.Where("sale_id = ?", id).Delete(&sale.SaleLine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", id).Delete(&sale.Payment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&sale.Sale{}, "id = ?", id).Error
	})
}

// Count counts sales matching a filter
func (r *GormSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&sale.Sale{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts sales by status
func (r *GormSaleRepository) CountByStatus(ctx context.Context, status sale.SaleStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&sale.Sale{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, SaleSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

func (r *GormSaleRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("client_name ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "client_id":
			query = query.Where("client_id = ?", value)
		}
	}

	return query
}

// Ensure GormSaleRepository implements SaleRepository
var _ sale.SaleRepository = (*GormSaleRepository)(nil)
