package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
)

// PostValidated appends a validated movement and refreshes the cached
// account balance from the full movement set. Both writes go through the
// repositories the caller supplies, so when those are transaction-scoped
// the insert and the balance update commit together.
//
// The balance is always re-derived as initial + Σ signed validated
// movements; nothing here reads or trusts the previous cached figure.
func PostValidated(
	ctx context.Context,
	accounts AccountRepository,
	movements MovementRepository,
	accountID uuid.UUID,
	direction MovementDirection,
	amount valueobject.Money,
	origin Origin,
	label string,
) (*Movement, error) {
	account, err := accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, shared.ErrInactiveAccount
	}

	movement, err := NewMovement(accountID, direction, amount, origin, label)
	if err != nil {
		return nil, err
	}

	if err := movements.Append(ctx, movement); err != nil {
		return nil, err
	}

	validatedSum, err := movements.SumValidatedByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	account.RefreshBalance(validatedSum)
	if err := accounts.SaveWithLock(ctx, account); err != nil {
		return nil, err
	}

	movement.AddDomainEvent(NewMovementPostedEvent(movement, account.CurrentBalance))

	return movement, nil
}
