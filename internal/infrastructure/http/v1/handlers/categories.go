package handlers

import (
	"github.com/gin-gonic/gin"

	"shoppos/internal/domain/catalog"
	"shoppos/internal/infrastructure/http/v1/dto"
)

// CategoryHandler handles /categories.
type CategoryHandler struct {
	*BaseHandler
	service *catalog.CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(base *BaseHandler, service *catalog.CategoryService) *CategoryHandler {
	return &CategoryHandler{BaseHandler: base, service: service}
}

// List handles GET /categories.
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.service.List(c.Request.Context(), c.Query("include_inactive") == "true")
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, categories)
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cat, err := h.service.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, cat)
}

// Update handles PUT /categories/:id.
func (h *CategoryHandler) Update(c *gin.Context) {
	categoryID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.CategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cat, err := h.service.UpdateCategory(c.Request.Context(), categoryID, req.Name, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, cat)
}

// Delete handles DELETE /categories/:id.
func (h *CategoryHandler) Delete(c *gin.Context) {
	categoryID, ok := h.ParamID(c)
	if !ok {
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), categoryID); err != nil {
		h.Error(c, err)
		return
	}
	h.Message(c, "category deactivated")
}
