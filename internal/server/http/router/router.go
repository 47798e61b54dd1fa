package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/promopay/promopay/internal/config"
	"github.com/promopay/promopay/internal/domain/model"
	"github.com/promopay/promopay/internal/metrics"
	"github.com/promopay/promopay/internal/server/http/handlers"
	"github.com/promopay/promopay/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.MarketFacade, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	adminHandler := handlers.NewAdminHandler(facade)
	webhookHandler := handlers.NewWebhookHandler(facade, cfg.WebhookSecret)

	api := engine.Group("/api")
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/webhooks/payment", webhookHandler.ProviderEvent)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))
	authed.POST("/orders", orderHandler.Create)
	authed.GET("/orders", orderHandler.List)
	authed.GET("/orders/:id", orderHandler.Get)
	authed.POST("/orders/:id/accept", orderHandler.Accept)
	authed.POST("/orders/:id/refuse", orderHandler.Refuse)
	authed.POST("/orders/:id/deliver", orderHandler.Deliver)
	authed.POST("/orders/:id/confirm", orderHandler.Confirm)
	authed.POST("/orders/:id/contest", orderHandler.Contest)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/contested", adminHandler.Contested)
	admin.POST("/orders/:id/arbitrate", adminHandler.Arbitrate)

	engine.GET("/metrics", gin.WrapH(m.Handler()))

	return engine
}
