package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"shoppos/internal/domain/stock"
	"shoppos/internal/infrastructure/http/v1/dto"
)

// StockService is the stock surface used by the HTTP layer.
type StockService interface {
	AdjustStock(ctx context.Context, in stock.AdjustInput) (*stock.AdjustResult, error)
	ListMovements(ctx context.Context, filter stock.MovementFilter) ([]*stock.Movement, error)
}

// StockHandler handles /stock.
type StockHandler struct {
	*BaseHandler
	service StockService
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service StockService) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// Adjust handles POST /stock/movements.
func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.MovementRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.AdjustStock(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, result)
}

// ListMovements handles GET /stock/movements.
func (h *StockHandler) ListMovements(c *gin.Context) {
	var q dto.MovementListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	movements, err := h.service.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, movements)
}
