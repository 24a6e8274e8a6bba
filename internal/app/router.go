package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"nemt/internal/handler"
	"nemt/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler    *handler.TripHandler
	QuoteHandler   *handler.QuoteHandler
	PaymentHandler *handler.PaymentHandler
	UserHandler    *handler.UserHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// User routes. Registration happens before the gateway has an
		// identity for the caller, so it stays outside the identity check.
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.GET("", deps.UserHandler.GetAll)
		}

		// Quote routes. Quotes are anonymous: nothing is booked.
		quotes := v1.Group("/quotes")
		{
			quotes.POST("", deps.QuoteHandler.CreateQuote)
			quotes.GET("/:id", deps.QuoteHandler.GetQuote)
		}

		// Trip routes require a gateway-verified identity.
		trips := v1.Group("/trips")
		trips.Use(middleware.IdentityMiddleware())
		{
			trips.POST("", deps.TripHandler.CreateTrip)
			trips.GET("", deps.TripHandler.GetAll)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.POST("/:id/approve", deps.TripHandler.Approve)
			trips.POST("/:id/retry-payment", deps.TripHandler.RetryPayment)
			trips.POST("/:id/start", deps.TripHandler.MarkInProgress)
			trips.POST("/:id/complete", deps.TripHandler.Complete)
			trips.POST("/:id/rate", deps.TripHandler.Rate)
			trips.POST("/:id/cancel", deps.TripHandler.Cancel)
			trips.GET("/:id/payments", deps.PaymentHandler.ListTripAttempts)
		}

		// Payment attempt audit trail.
		payments := v1.Group("/payments")
		payments.Use(middleware.IdentityMiddleware())
		{
			payments.GET("/:id", deps.PaymentHandler.GetAttempt)
		}
	}

	return router
}
