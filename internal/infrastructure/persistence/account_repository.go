package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/ledger"
	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	var a ledger.Account
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindAll finds accounts with filtering
func (r *GormAccountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Account, error) {
	var accounts []ledger.Account
	query := r.db.WithContext(ctx).Model(&ledger.Account{})

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR bank ILIKE ?", searchPattern, searchPattern)
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
	orderBy := ValidateSortField(filter.OrderBy, AccountSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// ListActive returns all accounts that can receive movements
func (r *GormAccountRepository) ListActive(ctx context.Context) ([]ledger.Account, error) {
	var accounts []ledger.Account
	if err := r.db.WithContext(ctx).
		Where("status = ?", ledger.AccountStatusActive).
		Order("name ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, a *ledger.Account) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// SaveWithLock saves an account with optimistic locking. The balance
// refresh path depends on this: two postings racing on the same account
// cannot both win the version check.
func (r *GormAccountRepository) SaveWithLock(ctx context.Context, a *ledger.Account) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&ledger.Account{}).
			Where("id = ?", a.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		// RefreshBalance bumps the aggregate version, so the stored row
		// must be exactly one version behind
		if currentVersion != a.Version-1 {
			return shared.ErrConcurrencyConflict
		}

		a.UpdatedAt = time.Now()

		result := tx.Model(&ledger.Account{}).
			Where("id = ? AND version = ?", a.ID, currentVersion).
			Updates(map[string]interface{}{
				"name":            a.Name,
				"bank":            a.Bank,
				"initial_balance": a.InitialBalance,
				"current_balance": a.CurrentBalance,
				"status":          a.Status,
				"version":         a.Version,
				"updated_at":      a.UpdatedAt,
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

// Ensure GormAccountRepository implements AccountRepository
var _ ledger.AccountRepository = (*GormAccountRepository)(nil)
