package handler

import (
	"github.com/gin-gonic/gin"
	supplierapp "github.com/retailpos/backend/internal/application/supplier"
)

// SupplierHandler handles supplier balance API endpoints
type SupplierHandler struct {
	BaseHandler
	balances *supplierapp.BalanceService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(balances *supplierapp.BalanceService) *SupplierHandler {
	return &SupplierHandler{balances: balances}
}

// RegisterRoutes registers all supplier routes
func (h *SupplierHandler) RegisterRoutes(rg *gin.RouterGroup) {
	suppliers := rg.Group("/suppliers")
	{
		suppliers.POST("/purchases", h.RecordPurchase)
		suppliers.GET("/purchases/:id", h.GetPurchase)
		suppliers.POST("/purchases/:id/payments", h.RecordPurchasePayment)
		suppliers.POST("/payments", h.RecordPayment)
		suppliers.GET(":id/purchases", h.ListPurchases)
		suppliers.GET(":id/payments", h.ListPayments)
		suppliers.GET(":id/balance", h.Balance)
	}
}

// RecordPurchase records a supplier purchase
func (h *SupplierHandler) RecordPurchase(c *gin.Context) {
	var req supplierapp.RecordPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.balances.RecordPurchase(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetPurchase returns a purchase by ID
func (h *SupplierHandler) GetPurchase(c *gin.Context) {
	purchaseID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.balances.GetPurchase(c.Request.Context(), purchaseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListPurchases returns a supplier's purchases
func (h *SupplierHandler) ListPurchases(c *gin.Context) {
	supplierID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	filter := supplierapp.PurchaseListFilter{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	responses, err := h.balances.ListPurchases(c.Request.Context(), supplierID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, responses)
}

// RecordPayment records money sent to a supplier, posting the matching
// ledger movement for cash and bank-transfer instruments
func (h *SupplierHandler) RecordPayment(c *gin.Context) {
	var req supplierapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.balances.RecordPayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RecordPurchasePayment records a payment against a specific purchase.
// The purchase ID from the path wins over any purchase_id in the body.
func (h *SupplierHandler) RecordPurchasePayment(c *gin.Context) {
	purchaseID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req supplierapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.PurchaseID = &purchaseID

	resp, err := h.balances.RecordPayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListPayments returns a supplier's payments
func (h *SupplierHandler) ListPayments(c *gin.Context) {
	supplierID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	responses, err := h.balances.ListPayments(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, responses)
}

// Balance returns what the supplier is still owed
func (h *SupplierHandler) Balance(c *gin.Context) {
	supplierID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.balances.BalanceFor(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
