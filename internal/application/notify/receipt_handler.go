package notify

import (
	"context"
	"fmt"

	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReceiptHandler reacts to committed sales and settled exchanges by
// producing a receipt. Receipt emission happens after the commit unit
// has succeeded; a failed receipt never unwinds the sale.
type ReceiptHandler struct {
	logger *zap.Logger
	sink   ReceiptSink
}

// ReceiptSink is the interface for delivering receipts.
// Implementations can target a printer queue, e-mail, or a webhook.
type ReceiptSink interface {
	// EmitReceipt delivers one receipt
	EmitReceipt(ctx context.Context, receipt Receipt) error
}

// Receipt carries the printable summary of a settled transaction
type Receipt struct {
	Kind         string        `json:"kind"`
	ReferenceID  string        `json:"reference_id"`
	ClientID     string        `json:"client_id"`
	ClientName   string        `json:"client_name,omitempty"`
	Lines        []ReceiptLine `json:"lines,omitempty"`
	TotalPayable string        `json:"total_payable"`
}

// ReceiptLine is one product line on a receipt
type ReceiptLine struct {
	ProductName string `json:"product_name"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Total       string `json:"total"`
}

// NewReceiptHandler creates a new handler for settlement events
func NewReceiptHandler(logger *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		logger: logger,
	}
}

// WithSink sets the sink receipts are delivered to
func (h *ReceiptHandler) WithSink(sink ReceiptSink) *ReceiptHandler {
	h.sink = sink
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *ReceiptHandler) EventTypes() []string {
	return []string{sale.EventTypeSaleCommitted, sale.EventTypeExchangeFinalized}
}

// Handle processes a settlement event
func (h *ReceiptHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *sale.SaleCommittedEvent:
		return h.handleSaleCommitted(ctx, e)
	case *sale.ExchangeFinalizedEvent:
		return h.handleExchangeFinalized(ctx, e)
	default:
		h.logger.Error("unexpected event type",
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (h *ReceiptHandler) handleSaleCommitted(ctx context.Context, event *sale.SaleCommittedEvent) error {
	h.logger.Info("sale committed",
		zap.String("sale_id", event.SaleID.String()),
		zap.String("client", event.ClientName),
		zap.String("billing_mode", event.BillingMode),
		zap.String("total_payable", event.TotalPayable.StringFixed(2)),
		zap.Int("lines", len(event.Lines)),
	)

	lines := make([]ReceiptLine, 0, len(event.Lines))
	for _, l := range event.Lines {
		lines = append(lines, ReceiptLine{
			ProductName: l.ProductName,
			Quantity:    l.Quantity.String(),
			UnitPrice:   l.UnitPrice.StringFixed(2),
			Total:       l.PreTaxTotal.StringFixed(2),
		})
	}

	receipt := Receipt{
		Kind:         "SALE",
		ReferenceID:  event.SaleID.String(),
		ClientID:     event.ClientID.String(),
		ClientName:   event.ClientName,
		Lines:        lines,
		TotalPayable: event.TotalPayable.StringFixed(2),
	}

	h.emit(ctx, receipt)
	return nil
}

func (h *ReceiptHandler) handleExchangeFinalized(ctx context.Context, event *sale.ExchangeFinalizedEvent) error {
	h.logger.Info("exchange finalized",
		zap.String("exchange_id", event.ExchangeID.String()),
		zap.String("difference", event.Difference.StringFixed(2)),
		zap.String("resolution", event.Resolution),
	)

	receipt := Receipt{
		Kind:         "EXCHANGE",
		ReferenceID:  event.ExchangeID.String(),
		ClientID:     event.ClientID.String(),
		TotalPayable: event.Difference.StringFixed(2),
	}

	h.emit(ctx, receipt)
	return nil
}

func (h *ReceiptHandler) emit(ctx context.Context, receipt Receipt) {
	if h.sink == nil {
		return
	}
	if err := h.sink.EmitReceipt(ctx, receipt); err != nil {
		h.logger.Error("failed to emit receipt",
			zap.String("reference_id", receipt.ReferenceID),
			zap.Error(err),
		)
		// Receipt failure does not fail the event handling
		return
	}
	h.logger.Info("receipt emitted",
		zap.String("kind", receipt.Kind),
		zap.String("reference_id", receipt.ReferenceID),
	)
}

// Ensure ReceiptHandler implements shared.EventHandler
var _ shared.EventHandler = (*ReceiptHandler)(nil)

// LoggingReceiptSink is a simple sink that writes receipts to the log.
// This is useful for development and testing
type LoggingReceiptSink struct {
	logger *zap.Logger
}

// NewLoggingReceiptSink creates a new logging sink
func NewLoggingReceiptSink(logger *zap.Logger) *LoggingReceiptSink {
	return &LoggingReceiptSink{logger: logger}
}

// EmitReceipt logs the receipt
func (s *LoggingReceiptSink) EmitReceipt(_ context.Context, receipt Receipt) error {
	s.logger.Info("RECEIPT",
		zap.String("kind", receipt.Kind),
		zap.String("reference_id", receipt.ReferenceID),
		zap.String("total_payable", receipt.TotalPayable),
	)
	return nil
}

// Ensure LoggingReceiptSink implements ReceiptSink
var _ ReceiptSink = (*LoggingReceiptSink)(nil)
