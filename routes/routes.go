package routes

import (
	"time"

	"github.com/craftora/marketplace-api/controllers"
	"github.com/craftora/marketplace-api/middleware"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Register wires all application routes.
func Register(
	r *gin.Engine,
	cc *controllers.CheckoutController,
	wc *controllers.WebhookController,
	oc *controllers.OrderController,
	jwtSecret string,
) {
	api := r.Group("/api")

	// Checkout + payment callbacks. The webhook must stay unauthenticated;
	// Stripe signs its payloads instead.
	api.POST("/checkout/session", middleware.RateLimit(rate.Every(time.Second), 10), cc.CreateSession)
	api.POST("/checkout/confirm", wc.Confirm)
	api.POST("/stripe/webhook", wc.StripeWebhook)

	// Dev convenience, no auth.
	api.GET("/orders/by-email", oc.GetOrdersByEmail)

	orders := api.Group("/orders")
	orders.Use(middleware.Auth(jwtSecret))
	orders.GET("/supplier/:supplierId", oc.GetSupplierOrders)
	orders.GET("/my", oc.GetMyOrders)

	admin := api.Group("/admin")
	admin.Use(middleware.Auth(jwtSecret), middleware.RequireRole("admin"))
	admin.GET("/orders", oc.GetAllOrders)
	admin.PATCH("/orders/:id/status", oc.UpdateOrderStatus)
	admin.DELETE("/orders/:id", oc.DeleteOrder)
}
