package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// ==================== Account DTOs ====================

// CreateAccountRequest represents a request to open a cash or bank account
type CreateAccountRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=200"`
	Bank           string          `json:"bank" binding:"max=200"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Bank           string          `json:"bank,omitempty"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToAccountResponse converts an Account to its response representation
func ToAccountResponse(a *ledger.Account) AccountResponse {
	return AccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Bank:           a.Bank,
		InitialBalance: a.InitialBalance,
		CurrentBalance: a.CurrentBalance,
		Status:         a.Status.String(),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// ToAccountResponses converts a slice of accounts
func ToAccountResponses(accounts []ledger.Account) []AccountResponse {
	responses := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, ToAccountResponse(&accounts[i]))
	}
	return responses
}

// ==================== Movement DTOs ====================

// PostMovementRequest represents a request to post a manual movement
type PostMovementRequest struct {
	Direction string          `json:"direction" binding:"required,oneof=CREDIT DEBIT"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Label     string          `json:"label" binding:"required,min=1,max=500"`
}

// ReverseMovementRequest represents a request to reverse a validated movement
type ReverseMovementRequest struct {
	Label string `json:"label" binding:"required,min=1,max=500"`
}

// MovementListFilter represents filter options for the movement list
type MovementListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MovementResponse represents a movement in API responses
type MovementResponse struct {
	ID         uuid.UUID       `json:"id"`
	AccountID  uuid.UUID       `json:"account_id"`
	Direction  string          `json:"direction"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	OriginKind string          `json:"origin_kind"`
	OriginRef  *uuid.UUID      `json:"origin_ref,omitempty"`
	Label      string          `json:"label"`
	ReversesID *uuid.UUID      `json:"reverses_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ToMovementResponse converts a Movement to its response representation
func ToMovementResponse(m *ledger.Movement) MovementResponse {
	return MovementResponse{
		ID:         m.ID,
		AccountID:  m.AccountID,
		Direction:  m.Direction.String(),
		Amount:     m.Amount,
		Status:     m.Status.String(),
		OriginKind: string(m.OriginKind),
		OriginRef:  m.OriginRef,
		Label:      m.Label,
		ReversesID: m.ReversesID,
		CreatedAt:  m.CreatedAt,
	}
}

// ToMovementResponses converts a slice of movements
func ToMovementResponses(movements []ledger.Movement) []MovementResponse {
	responses := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, ToMovementResponse(&movements[i]))
	}
	return responses
}

// BalanceResponse is the re-derived balance of an account
type BalanceResponse struct {
	AccountID      uuid.UUID       `json:"account_id"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	ValidatedSum   decimal.Decimal `json:"validated_sum"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}
