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

// GormExchangeRepository implements ExchangeRepository using GORM
type GormExchangeRepository struct {
	db *gorm.DB
}

// NewGormExchangeRepository creates a new GormExchangeRepository
func NewGormExchangeRepository(db *gorm.DB) *GormExchangeRepository {
	return &GormExchangeRepository{db: db}
}

// FindByID finds an exchange by its ID
func (r *GormExchangeRepository) FindByID(ctx context.Context, id uuid.UUID) (*sale.Exchange, error) {
	var e sale.Exchange
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// FindAll finds exchanges with filtering
func (r *GormExchangeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sale.Exchange, error) {
	var exchanges []sale.Exchange
	query := r.applyFilter(r.db.WithContext(ctx).Model(&sale.Exchange{}), filter)
	if err := query.Find(&exchanges).Error; err != nil {
		return nil, err
	}
	return exchanges, nil
}

// FindByClient finds exchanges for a client
func (r *GormExchangeRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]sale.Exchange, error) {
	var exchanges []sale.Exchange
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&sale.Exchange{}).Where("client_id = ?", clientID),
		filter,
	)
	if err := query.Find(&exchanges).Error; err != nil {
		return nil, err
	}
	return exchanges, nil
}

// Save creates or updates an exchange
func (r *GormExchangeRepository) Save(ctx context.Context, e *sale.Exchange) error {
	return r.db.WithContext(ctx).Save(e).Error
}

// SaveWithLock saves an exchange with optimistic locking
func (r *GormExchangeRepository) SaveWithLock(ctx context.Context, e *sale.Exchange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&sale.Exchange{}).
			Where("id = ?", e.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != e.Version {
			return shared.ErrConcurrencyConflict
		}

		e.Version++
		e.UpdatedAt = time.Now()

		result := tx.Model(&sale.Exchange{}).
			Where("id = ? AND version = ?", e.ID, currentVersion).
			Updates(map[string]interface{}{
				"difference":   e.Difference,
				"resolution":   e.Resolution,
				"account_id":   e.AccountID,
				"status":       e.Status,
				"finalized_at": e.FinalizedAt,
				"cancelled_at": e.CancelledAt,
				"version":      e.Version,
				"updated_at":   e.UpdatedAt,
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

func (r *GormExchangeRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "client_id":
			query = query.Where("client_id = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ExchangeSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// Ensure GormExchangeRepository implements ExchangeRepository
var _ sale.ExchangeRepository = (*GormExchangeRepository)(nil)
