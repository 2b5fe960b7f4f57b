package sale

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ==================== Sale DTOs ====================

// OpenSaleRequest represents a request to open a new sale (cart)
type OpenSaleRequest struct {
	ClientID    uuid.UUID `json:"client_id" binding:"required"`
	BillingMode string    `json:"billing_mode" binding:"required,oneof=WITH_TAX WITHOUT_TAX"`
}

// AddLineRequest represents a request to add a line to a sale
type AddLineRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ProductType string          `json:"product_type" binding:"required,min=1,max=50"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
}

// UpdateLineRequest represents a request to change a line quantity
type UpdateLineRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// ApplyDiscountRequest represents a request to apply a flat discount
type ApplyDiscountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// PaymentEntryInput is one payment instrument in a commit request
type PaymentEntryInput struct {
	Kind          string          `json:"kind" binding:"required,oneof=CASH BANK_TRANSFER CHEQUE CARD"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	AccountID     *uuid.UUID      `json:"account_id"`
	ChequeNumber  string          `json:"cheque_number"`
	ChequeDueDate *time.Time      `json:"cheque_due_date"`
}

// ToPaymentEntry converts the input to a domain payment entry
func (i PaymentEntryInput) ToPaymentEntry() sale.PaymentEntry {
	return sale.PaymentEntry{
		Kind:          sale.PaymentKind(i.Kind),
		Amount:        valueobject.NewMoneyMAD(i.Amount),
		AccountID:     i.AccountID,
		ChequeNumber:  i.ChequeNumber,
		ChequeDueDate: i.ChequeDueDate,
	}
}

// CommitSaleRequest represents a request to commit a confirmed sale.
// The commit token comes from the Idempotency-Key header, not the body.
type CommitSaleRequest struct {
	Payments []PaymentEntryInput `json:"payments" binding:"required,min=1"`
}

// AbortSaleRequest represents a request to abort a sale
type AbortSaleRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// SaleListFilter represents filter options for the sale list
type SaleListFilter struct {
	ClientID *uuid.UUID `form:"client_id"`
	Status   *string    `form:"status"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SaleLineResponse represents a sale line in API responses
type SaleLineResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	ProductType    string          `json:"product_type"`
	ProductName    string          `json:"product_name"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	PreTaxTotal    decimal.Decimal `json:"pre_tax_total"`
	InclusiveTotal decimal.Decimal `json:"inclusive_total"`
}

// SalePaymentResponse represents a settled payment in API responses
type SalePaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	AccountID     *uuid.UUID      `json:"account_id,omitempty"`
	ChequeNumber  string          `json:"cheque_number,omitempty"`
	ChequeDueDate *time.Time      `json:"cheque_due_date,omitempty"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID             uuid.UUID             `json:"id"`
	ClientID       uuid.UUID             `json:"client_id"`
	ClientName     string                `json:"client_name"`
	BillingMode    string                `json:"billing_mode"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	TotalPayable   decimal.Decimal       `json:"total_payable"`
	Status         string                `json:"status"`
	CommitToken    string                `json:"commit_token,omitempty"`
	Lines          []SaleLineResponse    `json:"lines"`
	Payments       []SalePaymentResponse `json:"payments,omitempty"`
	AbortReason    string                `json:"abort_reason,omitempty"`
	ReviewedAt     *time.Time            `json:"reviewed_at,omitempty"`
	ConfirmedAt    *time.Time            `json:"confirmed_at,omitempty"`
	CommittedAt    *time.Time            `json:"committed_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// ToSaleResponse converts a Sale to its response representation
func ToSaleResponse(s *sale.Sale) SaleResponse {
	lines := make([]SaleLineResponse, 0, len(s.Lines))
	for i := range s.Lines {
		lines = append(lines, SaleLineResponse{
			ID:             s.Lines[i].ID,
			ProductID:      s.Lines[i].ProductID,
			ProductType:    s.Lines[i].ProductType,
			ProductName:    s.Lines[i].ProductName,
			Quantity:       s.Lines[i].Quantity,
			UnitPrice:      s.Lines[i].UnitPrice,
			PreTaxTotal:    s.Lines[i].PreTaxTotal,
			InclusiveTotal: s.Lines[i].InclusiveTotal,
		})
	}

	payments := make([]SalePaymentResponse, 0, len(s.Payments))
	for i := range s.Payments {
		payments = append(payments, SalePaymentResponse{
			ID:            s.Payments[i].ID,
			Kind:          s.Payments[i].Kind.String(),
			Amount:        s.Payments[i].Amount,
			AccountID:     s.Payments[i].AccountID,
			ChequeNumber:  s.Payments[i].ChequeNumber,
			ChequeDueDate: s.Payments[i].ChequeDueDate,
		})
	}

	return SaleResponse{
		ID:             s.ID,
		ClientID:       s.ClientID,
		ClientName:     s.ClientName,
		BillingMode:    string(s.BillingMode),
		Subtotal:       s.Subtotal,
		DiscountAmount: s.DiscountAmount,
		TaxAmount:      s.TaxAmount,
		TotalPayable:   s.TotalPayable,
		Status:         string(s.Status),
		CommitToken:    s.CommitToken,
		Lines:          lines,
		Payments:       payments,
		AbortReason:    s.AbortReason,
		ReviewedAt:     s.ReviewedAt,
		ConfirmedAt:    s.ConfirmedAt,
		CommittedAt:    s.CommittedAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// ToSaleResponses converts a slice of sales
func ToSaleResponses(sales []sale.Sale) []SaleResponse {
	responses := make([]SaleResponse, 0, len(sales))
	for i := range sales {
		responses = append(responses, ToSaleResponse(&sales[i]))
	}
	return responses
}

// ==================== Exchange DTOs ====================

// ExchangeLineInput describes one side of an exchange request
type ExchangeLineInput struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ProductType string          `json:"product_type" binding:"required,min=1,max=50"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
}

// OpenExchangeRequest represents a request to open a return or exchange.
// NewLine is absent for a plain return.
type OpenExchangeRequest struct {
	ClientID uuid.UUID          `json:"client_id" binding:"required"`
	OldLine  ExchangeLineInput  `json:"old_line" binding:"required"`
	NewLine  *ExchangeLineInput `json:"new_line"`
}

// FinalizeExchangeRequest represents a request to settle an exchange.
// Cheque fields are required when the instrument is CHEQUE.
type FinalizeExchangeRequest struct {
	Instrument    string     `json:"instrument" binding:"required,oneof=CASH BANK_TRANSFER CHEQUE CARD"`
	AccountID     *uuid.UUID `json:"account_id"`
	ChequeNumber  string     `json:"cheque_number"`
	ChequeDueDate *time.Time `json:"cheque_due_date"`
}

// ExchangeResponse represents an exchange in API responses
type ExchangeResponse struct {
	ID           uuid.UUID       `json:"id"`
	ClientID     uuid.UUID       `json:"client_id"`
	OldProductID uuid.UUID       `json:"old_product_id"`
	OldQuantity  decimal.Decimal `json:"old_quantity"`
	OldUnitPrice decimal.Decimal `json:"old_unit_price"`
	NewProductID *uuid.UUID      `json:"new_product_id,omitempty"`
	NewQuantity  decimal.Decimal `json:"new_quantity"`
	NewUnitPrice decimal.Decimal `json:"new_unit_price"`
	Difference   decimal.Decimal `json:"difference"`
	Resolution   string          `json:"resolution,omitempty"`
	AccountID    *uuid.UUID      `json:"account_id,omitempty"`
	Status       string          `json:"status"`
	FinalizedAt  *time.Time      `json:"finalized_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToExchangeResponse converts an Exchange to its response representation
func ToExchangeResponse(e *sale.Exchange) ExchangeResponse {
	return ExchangeResponse{
		ID:           e.ID,
		ClientID:     e.ClientID,
		OldProductID: e.OldProductID,
		OldQuantity:  e.OldQuantity,
		OldUnitPrice: e.OldUnitPrice,
		NewProductID: e.NewProductID,
		NewQuantity:  e.NewQuantity,
		NewUnitPrice: e.NewUnitPrice,
		Difference:   e.Difference,
		Resolution:   e.Resolution.String(),
		AccountID:    e.AccountID,
		Status:       e.Status.String(),
		FinalizedAt:  e.FinalizedAt,
		CreatedAt:    e.CreatedAt,
	}
}
