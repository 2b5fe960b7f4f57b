package handler

import (
	"github.com/gin-gonic/gin"
	ledgerapp "github.com/retailpos/backend/internal/application/ledger"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// AccountHandler handles ledger account and movement API endpoints
type AccountHandler struct {
	BaseHandler
	posting *ledgerapp.PostingService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(posting *ledgerapp.PostingService) *AccountHandler {
	return &AccountHandler{posting: posting}
}

// RegisterRoutes registers all account and movement routes
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.Create)
		accounts.GET("", h.List)
		accounts.GET(":id", h.Get)
		accounts.GET(":id/movements", h.ListMovements)
		accounts.POST(":id/movements", h.PostManual)
		accounts.GET(":id/balance", h.RecomputeBalance)
	}
	movements := rg.Group("/movements")
	{
		movements.POST(":id/reverse", h.ReverseMovement)
	}
}

// Create opens a new ledger account
func (h *AccountHandler) Create(c *gin.Context) {
	var req ledgerapp.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.posting.CreateAccount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns accounts matching the filter
func (h *AccountHandler) List(c *gin.Context) {
	list := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&list); err != nil {
		h.BindError(c, err)
		return
	}

	filter := shared.Filter{
		Page:     list.Page,
		PageSize: list.PageSize,
		OrderBy:  list.OrderBy,
		OrderDir: list.OrderDir,
		Search:   list.Search,
	}
	if status := c.Query("status"); status != "" {
		filter.Filters = map[string]interface{}{"status": status}
	}

	responses, err := h.posting.ListAccounts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, responses)
}

// Get returns an account by ID
func (h *AccountHandler) Get(c *gin.Context) {
	accountID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.posting.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListMovements returns the movement history of an account
func (h *AccountHandler) ListMovements(c *gin.Context) {
	accountID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	list := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&list); err != nil {
		h.BindError(c, err)
		return
	}

	filter := shared.Filter{
		Page:     list.Page,
		PageSize: list.PageSize,
		OrderBy:  list.OrderBy,
		OrderDir: list.OrderDir,
		Search:   list.Search,
		Filters:  map[string]interface{}{},
	}
	if direction := c.Query("direction"); direction != "" {
		filter.Filters["direction"] = direction
	}
	if originKind := c.Query("origin_kind"); originKind != "" {
		filter.Filters["origin_kind"] = originKind
	}

	responses, err := h.posting.ListMovements(c.Request.Context(), accountID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, responses)
}

// PostManual posts an operator-entered movement on an account
func (h *AccountHandler) PostManual(c *gin.Context) {
	accountID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req ledgerapp.PostMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.posting.PostManual(c.Request.Context(), accountID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RecomputeBalance recomputes and returns the account balance from the
// validated movement set
func (h *AccountHandler) RecomputeBalance(c *gin.Context) {
	accountID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.posting.RecomputeBalance(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ReverseMovement posts the compensating movement for a validated row
func (h *AccountHandler) ReverseMovement(c *gin.Context) {
	movementID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req ledgerapp.ReverseMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.posting.ReverseMovement(c.Request.Context(), movementID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
