package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
	"shoppos/internal/domain/audit"
)

const defaultHistoryLimit = 20

// AuditReader reads the audit trail.
type AuditReader interface {
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error)
}

// AuditHandler exposes the trail of a bill. It is the only way to see what a
// deleted bill contained.
type AuditHandler struct {
	*BaseHandler
	reader AuditReader
}

func NewAuditHandler(base *BaseHandler, reader AuditReader) *AuditHandler {
	return &AuditHandler{BaseHandler: base, reader: reader}
}

// BillHistory handles GET /bills/:id/history?limit=N.
func (h *AuditHandler) BillHistory(c *gin.Context) {
	billID, ok := h.ParamID(c)
	if !ok {
		return
	}
	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			h.Error(c, apperror.NewValidation("limit must be between 1 and 100").WithDetail("field", "limit"))
			return
		}
		limit = n
	}

	entries, err := h.reader.History(c.Request.Context(), audit.EntityBill, billID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entries)
}
