package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"shoppos/internal/core/id"
	"shoppos/internal/domain/billing"
	"shoppos/internal/infrastructure/http/v1/dto"
)

// BillService is the billing surface used by the HTTP layer.
type BillService interface {
	CreateBill(ctx context.Context, in billing.CreateInput) (*billing.CreateResult, error)
	GetBill(ctx context.Context, billID id.ID) (*billing.Bill, error)
	DeleteBill(ctx context.Context, billID id.ID) error
	ListBills(ctx context.Context, filter billing.ListFilter) ([]*billing.Bill, error)
	TodaySummary(ctx context.Context) (*billing.DaySummary, error)
}

// ReceiptRenderer draws a bill receipt.
type ReceiptRenderer interface {
	Render(w io.Writer, bill *billing.Bill) error
}

// BillHandler handles /bills.
type BillHandler struct {
	*BaseHandler
	service  BillService
	receipts ReceiptRenderer
}

// NewBillHandler creates a new bill handler.
func NewBillHandler(base *BaseHandler, service BillService, receipts ReceiptRenderer) *BillHandler {
	return &BillHandler{BaseHandler: base, service: service, receipts: receipts}
}

// Create handles POST /bills.
func (h *BillHandler) Create(c *gin.Context) {
	var req dto.CreateBillRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.CreateBill(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, result)
}

// Get handles GET /bills/:id.
func (h *BillHandler) Get(c *gin.Context) {
	billID, ok := h.ParamID(c)
	if !ok {
		return
	}
	bill, err := h.service.GetBill(c.Request.Context(), billID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, bill)
}

// Delete handles DELETE /bills/:id.
func (h *BillHandler) Delete(c *gin.Context) {
	billID, ok := h.ParamID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteBill(c.Request.Context(), billID); err != nil {
		h.Error(c, err)
		return
	}
	h.Message(c, "bill deleted")
}

// List handles GET /bills.
func (h *BillHandler) List(c *gin.Context) {
	var q dto.BillListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	bills, err := h.service.ListBills(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, bills)
}

// TodaySummary handles GET /bills/summary/today.
func (h *BillHandler) TodaySummary(c *gin.Context) {
	summary, err := h.service.TodaySummary(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// Receipt handles GET /bills/:id/receipt.
func (h *BillHandler) Receipt(c *gin.Context) {
	billID, ok := h.ParamID(c)
	if !ok {
		return
	}
	bill, err := h.service.GetBill(c.Request.Context(), billID)
	if err != nil {
		h.Error(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.receipts.Render(&buf, bill); err != nil {
		h.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="receipt-`+bill.BillNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
