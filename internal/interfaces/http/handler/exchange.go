package handler

import (
	"github.com/gin-gonic/gin"
	saleapp "github.com/retailpos/backend/internal/application/sale"
	"github.com/shopspring/decimal"
)

// ExchangeHandler handles return/exchange API endpoints
type ExchangeHandler struct {
	BaseHandler
	exchanges *saleapp.ExchangeService
}

// NewExchangeHandler creates a new ExchangeHandler
func NewExchangeHandler(exchanges *saleapp.ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{exchanges: exchanges}
}

// RegisterRoutes registers all exchange routes
func (h *ExchangeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	exchanges := rg.Group("/exchanges")
	{
		exchanges.POST("", h.Open)
		exchanges.POST("/evaluate", h.Evaluate)
		exchanges.GET(":id", h.Get)
		exchanges.POST(":id/finalize", h.Finalize)
		exchanges.POST(":id/cancel", h.Cancel)
	}
}

// Open opens a return or exchange
func (h *ExchangeHandler) Open(c *gin.Context) {
	var req saleapp.OpenExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.exchanges.Open(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// EvaluateResponse reports the difference an exchange would settle at
type EvaluateResponse struct {
	Difference decimal.Decimal `json:"difference"`
}

// Evaluate computes the difference without opening an exchange
func (h *ExchangeHandler) Evaluate(c *gin.Context) {
	var req saleapp.OpenExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	difference, err := h.exchanges.Evaluate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, EvaluateResponse{Difference: difference})
}

// Get returns an exchange by ID
func (h *ExchangeHandler) Get(c *gin.Context) {
	exchangeID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.exchanges.GetByID(c.Request.Context(), exchangeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Finalize settles an open exchange
func (h *ExchangeHandler) Finalize(c *gin.Context) {
	exchangeID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req saleapp.FinalizeExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.exchanges.Finalize(c.Request.Context(), exchangeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel abandons an open exchange
func (h *ExchangeHandler) Cancel(c *gin.Context) {
	exchangeID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.exchanges.Cancel(c.Request.Context(), exchangeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
