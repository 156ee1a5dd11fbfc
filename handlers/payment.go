package handlers

import (
	"errors"
	"io"
	"net/http"

	"creatorhub/middleware"
	"creatorhub/models"
	"creatorhub/services/payment"
	"creatorhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBytes matches the size Stripe documents as the largest event body.
const maxWebhookBytes = 65536

type PaymentHandler struct {
	Svc payment.PaymentService
}

func NewPaymentHandler(svc payment.PaymentService) *PaymentHandler {
	return &PaymentHandler{Svc: svc}
}

// CreateCheckout opens a subscription checkout for the signed-in viewer.
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	sess, err := h.Svc.CreateCheckout(c.Request.Context(), middleware.ViewerID(c), middleware.ViewerEmail(c), req)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "failed to create checkout session", err.Error())
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Webhook receives signed processor events. Signature and metadata problems answer 400
// without touching the store.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	logger := getLogger(c)

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Error reading body", err.Error())
		return
	}

	result, err := h.Svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		var sigErr *payment.WebhookSignatureError
		var payloadErr *payment.WebhookPayloadError
		switch {
		case errors.As(err, &sigErr):
			utils.JSONError(c, http.StatusBadRequest, "Invalid signature", sigErr.Error())
		case errors.As(err, &payloadErr):
			utils.JSONError(c, http.StatusBadRequest, payment.InvalidMetadataMessage, payloadErr.Error())
		default:
			logger.Error("webhook processing failed", zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "Webhook processing failed", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"received":  true,
		"type":      result.Type,
		"handled":   result.Handled,
		"duplicate": result.Duplicate,
	})
}
