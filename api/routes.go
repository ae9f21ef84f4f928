package api

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/testlify/tenderstack/api/handlers"
	"github.com/testlify/tenderstack/api/middleware"
	"github.com/testlify/tenderstack/internal/logger"
	"github.com/testlify/tenderstack/internal/repository"
	"github.com/testlify/tenderstack/internal/tracing"
	"github.com/testlify/tenderstack/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, s *services.Services, repos *repository.Repositories, log logger.Logger, apiKey string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	apiHandlers := handlers.InitHandlers(repos, s, log)

	r.GET("/health", handlers.HealthCheck)

	// The webhook is registered for every method so non-POST deliveries get an
	// explicit 405 instead of gin's default 404. It carries no API key: Postmark
	// cannot send custom headers.
	r.Any("/api/inbound-email", apiHandlers.Inbound.Handle())

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  middleware.APIKeyHeader,
		ValidAPIKey: apiKey,
	})

	protected := r.Group("/api")
	protected.Use(apiKeyMiddleware)
	protected.Use(middleware.TracingMiddleware())
	{
		protected.GET("/emails", apiHandlers.Emails.ListAll())
		protected.GET("/emails/tenders", apiHandlers.Emails.ListTenders())
		protected.GET("/emails/:id", apiHandlers.Emails.GetByID())
		protected.POST("/export-to-sheets", apiHandlers.Export.Trigger())
	}
}
