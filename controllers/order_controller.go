package controllers

import (
	"net/http"

	"github.com/craftora/marketplace-api/apperrors"
	"github.com/craftora/marketplace-api/middleware"
	"github.com/craftora/marketplace-api/models"
	"github.com/craftora/marketplace-api/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OrderController serves order queries for suppliers, buyers and admins.
type OrderController struct {
	Orders *services.OrderService
	Logger *zap.Logger
}

// NewOrderController creates an OrderController.
func NewOrderController(orders *services.OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{Orders: orders, Logger: logger}
}

// GetSupplierOrders returns the orders belonging to one supplier.
func (oc *OrderController) GetSupplierOrders(c *gin.Context) {
	orders, err := oc.Orders.SupplierOrders(c.Request.Context(), c.Param("supplierId"))
	if err != nil {
		oc.respondError(c, err, "Failed to fetch supplier orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetMyOrders returns the authenticated buyer's orders.
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	orders, err := oc.Orders.BuyerOrders(c.Request.Context(), userID)
	if err != nil {
		oc.respondError(c, err, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrdersByEmail returns orders by buyer email. Dev convenience endpoint.
func (oc *OrderController) GetOrdersByEmail(c *gin.Context) {
	orders, err := oc.Orders.OrdersByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		oc.respondError(c, err, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetAllOrders returns every order with supplier names attached. Admin only.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.Orders.AllOrders(c.Request.Context())
	if err != nil {
		oc.respondError(c, err, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// UpdateOrderStatus transitions a paid order to fulfilled or canceled.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	if err := oc.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		oc.respondError(c, err, "Failed to update order status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteOrder hard-deletes an order. Admin only.
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	if err := oc.Orders.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		oc.respondError(c, err, "Failed to delete order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (oc *OrderController) respondError(c *gin.Context, err error, msg string) {
	status := apperrors.StatusOf(err)
	if status >= http.StatusInternalServerError {
		oc.Logger.Error(msg, zap.Error(err))
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
