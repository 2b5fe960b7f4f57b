package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is empty or not whitelisted.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"client_id":     true,
	"client_name":   true,
	"status":        true,
	"subtotal":      true,
	"total_payable": true,
	"committed_at":  true,
}

// ExchangeSortFields contains allowed sort fields for exchanges
var ExchangeSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"client_id":    true,
	"status":       true,
	"difference":   true,
	"finalized_at": true,
}

// AccountSortFields contains allowed sort fields for accounts
var AccountSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"name":            true,
	"bank":            true,
	"status":          true,
	"current_balance": true,
}

// MovementSortFields contains allowed sort fields for movements
var MovementSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"account_id":  true,
	"direction":   true,
	"amount":      true,
	"status":      true,
	"origin_kind": true,
}

// PurchaseSortFields contains allowed sort fields for supplier purchases
var PurchaseSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"supplier_id": true,
	"reference":   true,
	"total":       true,
	"paid":        true,
	"status":      true,
}
