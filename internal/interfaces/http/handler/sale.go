package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	saleapp "github.com/retailpos/backend/internal/application/sale"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// CommitTokenHeader carries the client-generated commit token. Retrying a
// commit with the same token never settles the sale twice.
const CommitTokenHeader = "Idempotency-Key"

// SaleHandler handles sale settlement API endpoints
type SaleHandler struct {
	BaseHandler
	checkout *saleapp.CheckoutService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(checkout *saleapp.CheckoutService) *SaleHandler {
	return &SaleHandler{checkout: checkout}
}

// RegisterRoutes registers all sale routes
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	{
		sales.POST("", h.Open)
		sales.GET("", h.List)
		sales.GET(":id", h.Get)
		sales.POST(":id/lines", h.AddLine)
		sales.PUT(":id/lines/:lineId", h.UpdateLine)
		sales.DELETE(":id/lines/:lineId", h.RemoveLine)
		sales.POST(":id/discount", h.ApplyDiscount)
		sales.POST(":id/review", h.Review)
		sales.POST(":id/reopen", h.Reopen)
		sales.POST(":id/confirm", h.Confirm)
		sales.POST(":id/commit", h.Commit)
		sales.POST(":id/abort", h.Abort)
	}
}

// Open opens a new sale for a client
func (h *SaleHandler) Open(c *gin.Context) {
	var req saleapp.OpenSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.checkout.Open(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a sale by ID
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.checkout.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns sales matching the filter
func (h *SaleHandler) List(c *gin.Context) {
	filter := saleapp.SaleListFilter{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	responses, total, err := h.checkout.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, responses, total, filter.Page, filter.PageSize)
}

// AddLine adds a line to a building sale
func (h *SaleHandler) AddLine(c *gin.Context) {
	saleID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req saleapp.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.checkout.AddLine(c.Request.Context(), saleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateLine changes the quantity of a line
func (h *SaleHandler) UpdateLine(c *gin.Context) {
	saleID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.parseUUIDParam(c, "lineId")
	if !ok {
		return
	}

	var req saleapp.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.checkout.UpdateLine(c.Request.Context(), saleID, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveLine removes a line from a building sale
func (h *SaleHandler) RemoveLine(c *gin.Context) {
	saleID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.parseUUIDParam(c, "lineId")
	if !ok {
		return
	}

	resp, err := h.checkout.RemoveLine(c.Request.Context(), saleID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ApplyDiscount applies a flat discount to a building sale
func (h *SaleHandler) ApplyDiscount(c *gin.Context) {
	saleID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req saleapp.ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.checkout.ApplyDiscount(c.Request.Context(), saleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Review moves a sale to REVIEWED
func (h *SaleHandler) Review(c *gin.Context) {
	h.transition(c, h.checkout.Review)
}

// Reopen moves a reviewed sale back to BUILDING
func (h *SaleHandler) Reopen(c *gin.Context) {
	h.transition(c, h.checkout.Reopen)
}

// Confirm moves a reviewed sale to CONFIRMED and assigns a commit token
func (h *SaleHandler) Confirm(c *gin.Context) {
	h.transition(c, h.checkout.Confirm)
}

// Commit settles a confirmed sale. The commit token comes from the
// Idempotency-Key header; replaying the same token returns the already
// committed sale.
func (h *SaleHandler) Commit(c *gin.Context) {
	saleID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	token := c.GetHeader(CommitTokenHeader)
	if token == "" {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeMissingToken, "Commit requires an "+CommitTokenHeader+" header")
		return
	}

	var req saleapp.CommitSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.checkout.Commit(c.Request.Context(), saleID, token, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Abort abandons a sale before commit
func (h *SaleHandler) Abort(c *gin.Context) {
	saleID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req saleapp.AbortSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.checkout.Abort(c.Request.Context(), saleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// transition runs a body-less status transition endpoint
func (h *SaleHandler) transition(c *gin.Context, fn func(ctx context.Context, saleID uuid.UUID) (*saleapp.SaleResponse, error)) {
	saleID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := fn(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
