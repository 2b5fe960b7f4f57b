package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/ledger"
)

// ActiveAccountChecker answers payment-allocation account checks from the
// account repository
type ActiveAccountChecker struct {
	accounts ledger.AccountRepository
}

// NewActiveAccountChecker creates a new ActiveAccountChecker
func NewActiveAccountChecker(accounts ledger.AccountRepository) *ActiveAccountChecker {
	return &ActiveAccountChecker{accounts: accounts}
}

// IsActive reports whether the account exists and can receive movements
func (c *ActiveAccountChecker) IsActive(ctx context.Context, accountID uuid.UUID) (bool, error) {
	account, err := c.accounts.FindByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	return account.IsActive(), nil
}
