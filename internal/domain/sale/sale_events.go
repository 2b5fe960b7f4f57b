package sale

import (
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeSale     = "Sale"
	AggregateTypeExchange = "Exchange"
)

// Event type constants
const (
	EventTypeSaleOpened        = "SaleOpened"
	EventTypeSaleCommitted     = "SaleCommitted"
	EventTypeSaleAborted       = "SaleAborted"
	EventTypeExchangeFinalized = "ExchangeFinalized"
)

// SaleOpenedEvent is raised when a new sale is opened
type SaleOpenedEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID `json:"sale_id"`
	ClientID    uuid.UUID `json:"client_id"`
	ClientName  string    `json:"client_name"`
	BillingMode string    `json:"billing_mode"`
}

// NewSaleOpenedEvent creates a new SaleOpenedEvent
func NewSaleOpenedEvent(s *Sale) *SaleOpenedEvent {
	return &SaleOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleOpened, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		ClientID:        s.ClientID,
		ClientName:      s.ClientName,
		BillingMode:     s.BillingMode.String(),
	}
}

// EventType returns the event type name
func (e *SaleOpenedEvent) EventType() string {
	return EventTypeSaleOpened
}

// SaleLineInfo represents line information for events
type SaleLineInfo struct {
	LineID      uuid.UUID       `json:"line_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	PreTaxTotal decimal.Decimal `json:"pre_tax_total"`
}

// SaleCommittedEvent is raised when the commit unit for a sale succeeds.
// Downstream consumers (receipt emission, stock cache refresh, the
// notification sink) react to this event; none of them gate the commit.
type SaleCommittedEvent struct {
	shared.BaseDomainEvent
	SaleID       uuid.UUID       `json:"sale_id"`
	ClientID     uuid.UUID       `json:"client_id"`
	ClientName   string          `json:"client_name"`
	BillingMode  string          `json:"billing_mode"`
	Lines        []SaleLineInfo  `json:"lines"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	TotalPayable decimal.Decimal `json:"total_payable"`
	CommitToken  string          `json:"commit_token"`
}

// NewSaleCommittedEvent creates a new SaleCommittedEvent
func NewSaleCommittedEvent(s *Sale) *SaleCommittedEvent {
	lines := make([]SaleLineInfo, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, SaleLineInfo{
			LineID:      l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			PreTaxTotal: l.PreTaxTotal,
		})
	}
	return &SaleCommittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCommitted, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		ClientID:        s.ClientID,
		ClientName:      s.ClientName,
		BillingMode:     s.BillingMode.String(),
		Lines:           lines,
		Subtotal:        s.Subtotal,
		TaxAmount:       s.TaxAmount,
		TotalPayable:    s.TotalPayable,
		CommitToken:     s.CommitToken,
	}
}

// EventType returns the event type name
func (e *SaleCommittedEvent) EventType() string {
	return EventTypeSaleCommitted
}

// SaleAbortedEvent is raised when a sale is abandoned before commit
type SaleAbortedEvent struct {
	shared.BaseDomainEvent
	SaleID uuid.UUID `json:"sale_id"`
	Reason string    `json:"reason"`
}

// NewSaleAbortedEvent creates a new SaleAbortedEvent
func NewSaleAbortedEvent(s *Sale, reason string) *SaleAbortedEvent {
	return &SaleAbortedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleAborted, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *SaleAbortedEvent) EventType() string {
	return EventTypeSaleAborted
}

// ExchangeFinalizedEvent is raised when a return/exchange is settled
type ExchangeFinalizedEvent struct {
	shared.BaseDomainEvent
	ExchangeID uuid.UUID       `json:"exchange_id"`
	ClientID   uuid.UUID       `json:"client_id"`
	Difference decimal.Decimal `json:"difference"`
	Resolution string          `json:"resolution"`
}

// NewExchangeFinalizedEvent creates a new ExchangeFinalizedEvent
func NewExchangeFinalizedEvent(e *Exchange) *ExchangeFinalizedEvent {
	return &ExchangeFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExchangeFinalized, AggregateTypeExchange, e.ID),
		ExchangeID:      e.ID,
		ClientID:        e.ClientID,
		Difference:      e.Difference,
		Resolution:      e.Resolution.String(),
	}
}

// EventType returns the event type name
func (e *ExchangeFinalizedEvent) EventType() string {
	return EventTypeExchangeFinalized
}
