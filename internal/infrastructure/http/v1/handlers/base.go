// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shoppos/internal/core/apperror"
	"shoppos/internal/core/id"
	"shoppos/internal/infrastructure/http/v1/dto"
	"shoppos/internal/infrastructure/http/v1/middleware"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// ParamID parses the :id path parameter.
func (h *BaseHandler) ParamID(c *gin.Context) (id.ID, bool) {
	v, err := id.ParseField("id", c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return id.Nil(), false
	}
	return v, true
}

// Error registers err on the Gin context and aborts the request.
// middleware.ErrorHandler renders the response.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// OK sends 200 with data in the success envelope.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	h.respond(c, http.StatusOK, data)
}

// Created sends 201 with data in the success envelope.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	h.respond(c, http.StatusCreated, data)
}

// List sends a paginated list.
func (h *BaseHandler) List(c *gin.Context, items any, total int64, limit, offset int) {
	h.OK(c, dto.ListResponse{Items: items, TotalCount: total, Limit: limit, Offset: offset})
}

// Message sends a confirmation message.
func (h *BaseHandler) Message(c *gin.Context, message string) {
	h.OK(c, dto.MessageResponse{Message: message})
}

func (h *BaseHandler) respond(c *gin.Context, status int, data any) {
	body := dto.Envelope{Success: true, Data: data}
	// Same status, content type and body are replayed for a retried request.
	middleware.CompleteIdempotency(c, status, "application/json", body)
	c.JSON(status, body)
}
