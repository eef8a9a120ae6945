package handlers

import (
	"github.com/gin-gonic/gin"

	"shoppos/internal/domain/auth"
	"shoppos/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication and user management.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, user, err := h.service.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.LoginResponse{TokenPair: tokens, User: user})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, user)
}

// ListUsers handles GET /users.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	var q dto.UserListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	users, err := h.service.ListUsers(c.Request.Context(), auth.UserFilter{
		Search:   q.Search,
		IsActive: q.IsActive,
		Role:     auth.Role(q.Role),
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, users)
}

// SetStatus handles PATCH /users/:id/status.
func (h *AuthHandler) SetStatus(c *gin.Context) {
	userID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.SetStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.SetActive(c.Request.Context(), userID, *req.IsActive)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, user)
}
