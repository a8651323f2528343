package controllers

import (
	"net/http"

	"github.com/craftora/marketplace-api/apperrors"
	"github.com/craftora/marketplace-api/models"
	"github.com/craftora/marketplace-api/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckoutController handles checkout session creation.
type CheckoutController struct {
	Checkout *services.CheckoutService
	Logger   *zap.Logger
}

// NewCheckoutController creates a CheckoutController.
func NewCheckoutController(checkout *services.CheckoutService, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{Checkout: checkout, Logger: logger}
}

// CreateSession validates the submitted cart and returns the provider-hosted
// redirect URL.
func (cc *CheckoutController) CreateSession(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := cc.Checkout.CreateSession(c.Request.Context(), &req)
	if err != nil {
		c.JSON(apperrors.StatusOf(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
