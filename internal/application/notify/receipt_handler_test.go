package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/ledger"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockReceiptSink records delivered receipts
type mockReceiptSink struct {
	receipts    []Receipt
	returnError error
}

func (m *mockReceiptSink) EmitReceipt(_ context.Context, receipt Receipt) error {
	if m.returnError != nil {
		return m.returnError
	}
	m.receipts = append(m.receipts, receipt)
	return nil
}

func saleCommittedEvent() *sale.SaleCommittedEvent {
	saleID := uuid.New()
	return &sale.SaleCommittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			sale.EventTypeSaleCommitted, sale.AggregateTypeSale, saleID),
		SaleID:     saleID,
		ClientID:   uuid.New(),
		ClientName: "Aicha Bennis",
		Lines: []sale.SaleLineInfo{
			{
				LineID:      uuid.New(),
				ProductID:   uuid.New(),
				ProductName: "Cafetière",
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   decimal.NewFromInt(800),
				PreTaxTotal: decimal.NewFromInt(1600),
			},
		},
		TotalPayable: decimal.NewFromFloat(1920),
	}
}

func TestReceiptHandler_EventTypes(t *testing.T) {
	handler := NewReceiptHandler(zap.NewNop())

	eventTypes := handler.EventTypes()
	require.Len(t, eventTypes, 2)
	assert.Contains(t, eventTypes, sale.EventTypeSaleCommitted)
	assert.Contains(t, eventTypes, sale.EventTypeExchangeFinalized)
}

func TestReceiptHandler_Handle(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("sale committed produces a receipt", func(t *testing.T) {
		sink := &mockReceiptSink{}
		handler := NewReceiptHandler(logger).WithSink(sink)

		err := handler.Handle(ctx, saleCommittedEvent())
		require.NoError(t, err)

		require.Len(t, sink.receipts, 1)
		receipt := sink.receipts[0]
		assert.Equal(t, "SALE", receipt.Kind)
		assert.Equal(t, "Aicha Bennis", receipt.ClientName)
		assert.Equal(t, "1920.00", receipt.TotalPayable)
		require.Len(t, receipt.Lines, 1)
		assert.Equal(t, "Cafetière", receipt.Lines[0].ProductName)
	})

	t.Run("exchange finalized produces a receipt", func(t *testing.T) {
		sink := &mockReceiptSink{}
		handler := NewReceiptHandler(logger).WithSink(sink)

		exchangeID := uuid.New()
		event := &sale.ExchangeFinalizedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(
				sale.EventTypeExchangeFinalized, sale.AggregateTypeExchange, exchangeID),
			ExchangeID: exchangeID,
			ClientID:   uuid.New(),
			Difference: decimal.NewFromInt(-300),
		}

		err := handler.Handle(ctx, event)
		require.NoError(t, err)

		require.Len(t, sink.receipts, 1)
		assert.Equal(t, "EXCHANGE", sink.receipts[0].Kind)
		assert.Equal(t, "-300.00", sink.receipts[0].TotalPayable)
	})

	t.Run("sink failure does not fail handling", func(t *testing.T) {
		sink := &mockReceiptSink{returnError: errors.New("printer offline")}
		handler := NewReceiptHandler(logger).WithSink(sink)

		err := handler.Handle(ctx, saleCommittedEvent())
		assert.NoError(t, err)
	})

	t.Run("no sink configured", func(t *testing.T) {
		handler := NewReceiptHandler(logger)

		err := handler.Handle(ctx, saleCommittedEvent())
		assert.NoError(t, err)
	})

	t.Run("unexpected event type", func(t *testing.T) {
		handler := NewReceiptHandler(logger)

		posted := &ledger.MovementPostedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(
				ledger.EventTypeMovementPosted, ledger.AggregateTypeMovement, uuid.New()),
		}
		err := handler.Handle(ctx, posted)
		assert.Error(t, err)
	})
}

func TestMovementAuditHandler(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	handler := NewMovementAuditHandler(logger)

	t.Run("event types", func(t *testing.T) {
		eventTypes := handler.EventTypes()
		require.Len(t, eventTypes, 1)
		assert.Equal(t, ledger.EventTypeMovementPosted, eventTypes[0])
	})

	t.Run("handles movement posted", func(t *testing.T) {
		movementID := uuid.New()
		event := &ledger.MovementPostedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(
				ledger.EventTypeMovementPosted, ledger.AggregateTypeMovement, movementID),
			MovementID: movementID,
			AccountID:  uuid.New(),
			Direction:  "CREDIT",
			Amount:     decimal.NewFromFloat(2400),
			OriginKind: "SALE",
			NewBalance: decimal.NewFromFloat(12400),
		}
		assert.NoError(t, handler.Handle(ctx, event))
	})

	t.Run("rejects other events", func(t *testing.T) {
		err := handler.Handle(ctx, saleCommittedEvent())
		assert.Error(t, err)
	})
}
