package notify

import (
	"context"
	"fmt"

	"github.com/retailpos/backend/internal/domain/ledger"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MovementAuditHandler writes one audit log line per posted movement.
// Back-office operators reconcile the day from these lines, so every
// posting emits the account, the signed amount, and the fresh balance.
type MovementAuditHandler struct {
	logger *zap.Logger
}

// NewMovementAuditHandler creates a new handler for movement events
func NewMovementAuditHandler(logger *zap.Logger) *MovementAuditHandler {
	return &MovementAuditHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *MovementAuditHandler) EventTypes() []string {
	return []string{ledger.EventTypeMovementPosted}
}

// Handle processes a MovementPostedEvent
func (h *MovementAuditHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	posted, ok := event.(*ledger.MovementPostedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", ledger.EventTypeMovementPosted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			ledger.EventTypeMovementPosted, event.EventType())
	}

	h.logger.Info("movement posted",
		zap.String("movement_id", posted.MovementID.String()),
		zap.String("account_id", posted.AccountID.String()),
		zap.String("direction", posted.Direction),
		zap.String("amount", posted.Amount.StringFixed(2)),
		zap.String("origin", posted.OriginKind),
		zap.String("new_balance", posted.NewBalance.StringFixed(2)),
	)
	return nil
}

// Ensure MovementAuditHandler implements shared.EventHandler
var _ shared.EventHandler = (*MovementAuditHandler)(nil)
