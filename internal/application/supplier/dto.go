package supplier

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/supplier"
	"github.com/shopspring/decimal"
)

// RecordPurchaseRequest represents a request to record a supplier purchase.
// A non-zero initial payment needs an instrument kind, and an account when
// the kind posts a movement.
type RecordPurchaseRequest struct {
	SupplierID              uuid.UUID        `json:"supplier_id" binding:"required"`
	Reference               string           `json:"reference" binding:"required,min=1,max=100"`
	Total                   decimal.Decimal  `json:"total" binding:"required"`
	InitialPayment          *decimal.Decimal `json:"initial_payment"`
	InitialPaymentKind      string           `json:"initial_payment_kind" binding:"omitempty,oneof=CASH BANK_TRANSFER CHEQUE CARD"`
	InitialPaymentAccountID *uuid.UUID       `json:"initial_payment_account_id"`
}

// RecordPaymentRequest represents a request to pay a supplier. PurchaseID
// is absent for on-account payments.
type RecordPaymentRequest struct {
	SupplierID uuid.UUID       `json:"supplier_id" binding:"required"`
	PurchaseID *uuid.UUID      `json:"purchase_id"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Kind       string          `json:"kind" binding:"required,oneof=CASH BANK_TRANSFER CHEQUE CARD"`
	AccountID  *uuid.UUID      `json:"account_id"`
	Label      string          `json:"label" binding:"max=500"`
}

// PurchaseListFilter represents filter options for the purchase list
type PurchaseListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseResponse represents a supplier purchase in API responses
type PurchaseResponse struct {
	ID         uuid.UUID       `json:"id"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	Reference  string          `json:"reference"`
	Total      decimal.Decimal `json:"total"`
	Paid       decimal.Decimal `json:"paid"`
	Remaining  decimal.Decimal `json:"remaining"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ToPurchaseResponse converts a Purchase to its response representation
func ToPurchaseResponse(p *supplier.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:         p.ID,
		SupplierID: p.SupplierID,
		Reference:  p.Reference,
		Total:      p.Total,
		Paid:       p.Paid,
		Remaining:  p.Remaining(),
		Status:     p.Status.String(),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// ToPurchaseResponses converts a slice of purchases
func ToPurchaseResponses(purchases []supplier.Purchase) []PurchaseResponse {
	responses := make([]PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		responses = append(responses, ToPurchaseResponse(&purchases[i]))
	}
	return responses
}

// PaymentResponse represents a supplier payment in API responses
type PaymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	PurchaseID *uuid.UUID      `json:"purchase_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Kind       string          `json:"kind"`
	AccountID  *uuid.UUID      `json:"account_id,omitempty"`
	Label      string          `json:"label,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a Payment to its response representation
func ToPaymentResponse(p *supplier.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID,
		SupplierID: p.SupplierID,
		PurchaseID: p.PurchaseID,
		Amount:     p.Amount,
		Kind:       p.Kind.String(),
		AccountID:  p.AccountID,
		Label:      p.Label,
		CreatedAt:  p.CreatedAt,
	}
}

// BalanceResponse is the supplier balance projection
type BalanceResponse struct {
	SupplierID uuid.UUID       `json:"supplier_id"`
	TotalDue   decimal.Decimal `json:"total_due"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	NetOwed    decimal.Decimal `json:"net_owed"`
}
