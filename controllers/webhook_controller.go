package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/craftora/marketplace-api/services"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// WebhookController receives payment completion signals: the asynchronous
// provider webhook and the synchronous confirm fallback the client calls
// after redirect. Both funnel into the same idempotent materializer, so they
// may arrive in either order or both.
type WebhookController struct {
	Gateway services.PaymentGateway
	Orders  services.Materializer
	Logger  *zap.Logger
}

// NewWebhookController creates a WebhookController.
func NewWebhookController(gateway services.PaymentGateway, orders services.Materializer, logger *zap.Logger) *WebhookController {
	return &WebhookController{Gateway: gateway, Orders: orders, Logger: logger}
}

// StripeWebhook verifies and dispatches provider events. Once the payload is
// accepted the provider always gets a 200, whatever the materialization
// outcome, so a downstream failure cannot trigger a retry storm.
func (wc *WebhookController) StripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	event, err := wc.Gateway.ConstructEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		wc.Logger.Warn("Webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			wc.Logger.Error("Failed to unmarshal checkout session", zap.Error(err))
			break
		}
		if _, err := wc.Orders.MaterializeSession(c.Request.Context(), sess.ID); err != nil {
			wc.Logger.Error("Webhook materialization failed",
				zap.String("session_id", sess.ID),
				zap.Error(err),
			)
		}
	default:
		wc.Logger.Info("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// Confirm is the synchronous fallback the client calls after redirect-back.
// Webhook delivery is not guaranteed to beat the user to the success page,
// so this deliberately retriggers the same idempotent operation.
func (wc *WebhookController) Confirm(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	result, err := wc.Orders.MaterializeSession(c.Request.Context(), req.SessionID)
	if err != nil {
		wc.Logger.Error("Confirm materialization failed",
			zap.String("session_id", req.SessionID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"ok": true, "created": result.Created}
	if result.Reason != "" {
		resp["reason"] = result.Reason
	}
	c.JSON(http.StatusOK, resp)
}
