package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/vo-tracker-api/internal/middleware"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes. Files is nil
// when uploads live in object storage that serves its own URLs.
type Handlers struct {
	Auth            *AuthHandler
	VariationOrders *VariationOrderHandler
	Activity        *ActivityHandler
	Projects        *ProjectHandler
	Payments        *PaymentHandler
	Files           *FileHandler
	Metrics         *MetricsHandler
}

// RegisterRoutes mounts ops endpoints at the root and the API under prefix.
// Reads require any authenticated user; writes require ADMIN.
func RegisterRoutes(r *gin.Engine, prefix string, tokens middleware.TokenValidator, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("", middleware.JWT(tokens))
	admin := authed.Group("", middleware.AdminOnly())

	authed.GET("/auth/me", h.Auth.Me)

	authed.GET("/variation-orders", h.VariationOrders.List)
	authed.GET("/variation-orders/statistics", h.VariationOrders.Statistics)
	authed.GET("/variation-orders/export", h.VariationOrders.Export)
	authed.GET("/variation-orders/:id", h.VariationOrders.Get)
	admin.POST("/variation-orders", h.VariationOrders.Create)
	admin.PATCH("/variation-orders/:id", h.VariationOrders.Update)
	admin.PUT("/variation-orders/:id", h.VariationOrders.Update)
	admin.DELETE("/variation-orders/:id", h.VariationOrders.Delete)
	admin.POST("/variation-orders/:id/files", h.VariationOrders.Upload)

	authed.GET("/activity", h.Activity.Recent)

	authed.GET("/project-details", h.Projects.Get)
	admin.PUT("/project-details", h.Projects.Upsert)

	authed.GET("/payment-applications", h.Payments.List)
	authed.GET("/payment-applications/:id", h.Payments.Get)
	admin.POST("/payment-applications", h.Payments.Create)
	admin.PATCH("/payment-applications/:id", h.Payments.Update)
	admin.PUT("/payment-applications/:id", h.Payments.Update)
	admin.DELETE("/payment-applications/:id", h.Payments.Delete)

	if h.Files != nil {
		authed.GET("/files/*key", h.Files.Download)
	}
}
