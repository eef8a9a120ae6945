// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"shoppos/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler is implemented by master data handlers.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// CatalogGetHandler is an optional interface for handlers that serve one record.
type CatalogGetHandler interface {
	Get(c *gin.Context)
}

// RegisterCatalogRoutes registers list/create/update/delete routes guarded by
// a read and a write permission. GET /:id is added when the handler supports it.
//
// Usage:
//
//	RegisterCatalogRoutes(protected.Group("/customers"), customerHandler, auth.PermCustomerRead, auth.PermCustomerWrite)
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler, readPerm, writePerm string) {
	group.GET("", middleware.RequirePermission(readPerm), handler.List)
	group.POST("", middleware.RequirePermission(writePerm), handler.Create)
	if getter, ok := handler.(CatalogGetHandler); ok {
		group.GET("/:id", middleware.RequirePermission(readPerm), getter.Get)
	}
	group.PUT("/:id", middleware.RequirePermission(writePerm), handler.Update)
	group.DELETE("/:id", middleware.RequirePermission(writePerm), handler.Delete)
}
