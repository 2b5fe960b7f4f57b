package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/ledger"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormMovementRepository implements MovementRepository using GORM.
// The table is append-only: this repository exposes no update or delete.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// FindByID finds a movement by ID
func (r *GormMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Movement, error) {
	var m ledger.Movement
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindByAccount finds movements for an account with filtering
func (r *GormMovementRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]ledger.Movement, error) {
	var movements []ledger.Movement
	query := r.db.WithContext(ctx).
		Model(&ledger.Movement{}).
		Where("account_id = ?", accountID)

	if filter.Search != "" {
		query = query.Where("label ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "direction":
			query = query.Where("direction = ?", value)
		case "origin_kind":
			query = query.Where("origin_kind = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, MovementSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByOrigin finds movements produced by a given origin record
func (r *GormMovementRepository) FindByOrigin(ctx context.Context, kind ledger.OriginKind, ref uuid.UUID) ([]ledger.Movement, error) {
	var movements []ledger.Movement
	if err := r.db.WithContext(ctx).
		Where("origin_kind = ? AND origin_ref = ?", kind, ref).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Append inserts a new movement row
func (r *GormMovementRepository) Append(ctx context.Context, m *ledger.Movement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// SumValidatedByAccount computes the signed sum of validated movements
// for an account. The balance is always derived from this sum rather
// than incremented in place, so a lost update cannot corrupt it.
func (r *GormMovementRepository) SumValidatedByAccount(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&ledger.Movement{}).
		Select("COALESCE(SUM(CASE WHEN direction = ? THEN amount ELSE -amount END), 0)", ledger.MovementDirectionCredit).
		Where("account_id = ? AND status = ?", accountID, ledger.MovementStatusValidated).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// Ensure GormMovementRepository implements MovementRepository
var _ ledger.MovementRepository = (*GormMovementRepository)(nil)
