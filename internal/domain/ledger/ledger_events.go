package ledger

import (
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeAccount  = "Account"
	AggregateTypeMovement = "Movement"
)

// Event type constants
const (
	EventTypeMovementPosted = "MovementPosted"
)

// MovementPostedEvent is raised after a movement has been appended and the
// account balance refreshed, both inside the same transaction
type MovementPostedEvent struct {
	shared.BaseDomainEvent
	MovementID uuid.UUID       `json:"movement_id"`
	AccountID  uuid.UUID       `json:"account_id"`
	Direction  string          `json:"direction"`
	Amount     decimal.Decimal `json:"amount"`
	OriginKind string          `json:"origin_kind"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// NewMovementPostedEvent creates a new MovementPostedEvent
func NewMovementPostedEvent(m *Movement, newBalance decimal.Decimal) *MovementPostedEvent {
	return &MovementPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMovementPosted, AggregateTypeMovement, m.ID),
		MovementID:      m.ID,
		AccountID:       m.AccountID,
		Direction:       m.Direction.String(),
		Amount:          m.Amount,
		OriginKind:      string(m.OriginKind),
		NewBalance:      newBalance,
	}
}

// EventType returns the event type name
func (e *MovementPostedEvent) EventType() string {
	return EventTypeMovementPosted
}
