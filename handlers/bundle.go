// File: creatorhub/handlers/bundle.go
package handlers

import (
	"creatorhub/middleware"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Signer middleware.ViewerExtractor

	// Feed session endpoints
	CreateFeedSession gin.HandlerFunc
	GetFeedSession    gin.HandlerFunc
	SetFeedTab        gin.HandlerFunc
	LoadMoreFeed      gin.HandlerFunc
	RetryFeed         gin.HandlerFunc
	RefreshFeed       gin.HandlerFunc
	StreamFeed        gin.HandlerFunc
	CloseFeedSession  gin.HandlerFunc

	// Content and media
	CreateContent gin.HandlerFunc
	UploadFile    gin.HandlerFunc
	DeleteFile    gin.HandlerFunc

	// Social graph
	Follow         gin.HandlerFunc
	Unfollow       gin.HandlerFunc
	JoinCommunity  gin.HandlerFunc
	LeaveCommunity gin.HandlerFunc

	// Payments
	CreateCheckout gin.HandlerFunc
	StripeWebhook  gin.HandlerFunc

	Health gin.HandlerFunc
}
