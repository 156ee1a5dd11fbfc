package routes

import (
	"time"

	"creatorhub/handlers"
	"creatorhub/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterFeedRoutes registers feed session endpoints. Anonymous viewers get the general
// feed; a bearer token unlocks the following tab.
func RegisterFeedRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/feed/sessions")
	{
		api.Use(middleware.OptionalViewerAuth(hb.Signer))
		api.POST("", hb.CreateFeedSession)
		api.GET("/:id", hb.GetFeedSession)
		api.PUT("/:id/tab", hb.SetFeedTab)
		api.POST("/:id/more", hb.LoadMoreFeed)
		api.POST("/:id/retry", hb.RetryFeed)
		api.POST("/:id/refresh", hb.RefreshFeed)
		api.GET("/:id/stream", hb.StreamFeed)
		api.DELETE("/:id", hb.CloseFeedSession)
	}
}

// RegisterCreatorRoutes registers endpoints that need a signed-in viewer.
func RegisterCreatorRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.Use(middleware.RequireViewerAuth(hb.Signer))
		api.POST("/content", hb.CreateContent)
		api.POST("/storage/:bucket", hb.UploadFile)
		api.DELETE("/storage/:bucket/:name", hb.DeleteFile)
		api.POST("/follows/:id", hb.Follow)
		api.DELETE("/follows/:id", hb.Unfollow)
		api.POST("/communities/:id/join", hb.JoinCommunity)
		api.POST("/communities/:id/leave", hb.LeaveCommunity)
		api.POST("/payments/checkout", hb.CreateCheckout)
	}
}

// RegisterWebhookRoutes registers processor callbacks; they authenticate by signature.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/payments/webhook", hb.StripeWebhook)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterFeedRoutes(r, hb)
	RegisterCreatorRoutes(r, hb)
	RegisterWebhookRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
