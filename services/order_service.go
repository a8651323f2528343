package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/craftora/marketplace-api/apperrors"
	"github.com/craftora/marketplace-api/models"
	"github.com/craftora/marketplace-api/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MaterializeResult reports the outcome of a materialization attempt.
// A duplicate attempt is a successful no-op, not an error.
type MaterializeResult struct {
	Created bool           `json:"created"`
	Reason  string         `json:"reason,omitempty"`
	Orders  []models.Order `json:"-"`
	Dropped int            `json:"-"`
}

// Materializer converts a completed payment session into orders. Split out as
// an interface so the webhook controller can be tested against a fake.
type Materializer interface {
	MaterializeSession(ctx context.Context, sessionID string) (*MaterializeResult, error)
}

// AdminOrder is an order with the supplier's display name attached, for the
// admin listing.
type AdminOrder struct {
	models.Order
	SupplierName string `json:"supplierName"`
}

// OrderService owns order materialization and order queries. It is the sole
// writer of orders and the sole stock decrementer along the payment path.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	users     repository.UserRepository
	anomalies repository.AnomalyRepository
	gateway   PaymentGateway
	logger    *zap.Logger
}

// NewOrderService creates an OrderService.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	anomalies repository.AnomalyRepository,
	gateway PaymentGateway,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		users:     users,
		anomalies: anomalies,
		gateway:   gateway,
		logger:    logger,
	}
}

// MaterializeSession turns a completed checkout session into one paid order
// per supplier and decrements stock for each purchased line. It is safe to
// call any number of times for the same session: the existence pre-check
// handles the common duplicate, and the unique index on
// (paymentSessionId, supplierId) backstops the concurrent race.
func (s *OrderService) MaterializeSession(ctx context.Context, sessionID string) (*MaterializeResult, error) {
	if sessionID == "" {
		return nil, apperrors.New(http.StatusBadRequest, "missing session id", nil)
	}

	exists, err := s.orders.ExistsBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return &MaterializeResult{Created: false, Reason: "already materialized"}, nil
	}

	sess, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	lines, err := s.gateway.SessionLineItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	groups := make(map[primitive.ObjectID][]models.OrderItem)
	dropped := 0
	for _, line := range lines {
		pid, ok := s.resolveLine(ctx, sessionID, line)
		if !ok {
			dropped++
			continue
		}

		product, err := s.products.FindByID(ctx, pid)
		if err != nil {
			s.logger.Warn("Dropping line item for unknown product",
				zap.String("session_id", sessionID),
				zap.String("product_id", pid.Hex()),
			)
			s.recordAnomaly(ctx, sessionID, "product not found", line)
			dropped++
			continue
		}

		if err := s.products.DecrementStock(ctx, pid, line.Quantity); err != nil {
			// Payment is already captured; keep the line in the order and
			// leave the stock discrepancy for reconciliation.
			s.logger.Error("Stock decrement failed",
				zap.String("session_id", sessionID),
				zap.String("product_id", pid.Hex()),
				zap.Error(err),
			)
			s.recordAnomaly(ctx, sessionID, "stock decrement failed", line)
		}

		groups[product.SupplierID] = append(groups[product.SupplierID], models.OrderItem{
			ProductID:  pid,
			Name:       line.Name,
			UnitAmount: line.UnitAmount,
			Quantity:   line.Quantity,
			Subtotal:   line.UnitAmount * line.Quantity,
		})
	}

	if len(groups) == 0 {
		s.logger.Error("No reconcilable line items for paid session",
			zap.String("session_id", sessionID),
			zap.Int("dropped", dropped),
		)
		return &MaterializeResult{Created: false, Reason: "no reconcilable line items", Dropped: dropped}, nil
	}

	var buyerID *primitive.ObjectID
	if id, err := primitive.ObjectIDFromHex(sess.ClientReferenceID); err == nil {
		buyerID = &id
	}

	now := time.Now().UTC()
	orders := make([]models.Order, 0, len(groups))
	for supplierID, items := range groups {
		var total int64
		for _, item := range items {
			total += item.Subtotal
		}
		orders = append(orders, models.Order{
			SupplierID:       supplierID,
			BuyerID:          buyerID,
			Items:            items,
			Currency:         sess.Currency,
			TotalAmount:      total,
			Status:           models.StatusPaid,
			PaymentSessionID: sessionID,
			Customer:         sess.Customer,
			ShippingAddress:  sess.ShippingAddress,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}

	if err := s.orders.CreateMany(ctx, orders); err != nil {
		if errors.Is(err, repository.ErrDuplicateSession) {
			// Lost the race to a concurrent webhook/confirm delivery.
			return &MaterializeResult{Created: false, Reason: "already materialized"}, nil
		}
		return nil, err
	}

	s.logger.Info("Session materialized",
		zap.String("session_id", sessionID),
		zap.Int("supplier_orders", len(orders)),
		zap.Int("dropped", dropped),
	)
	return &MaterializeResult{Created: true, Orders: orders, Dropped: dropped}, nil
}

// resolveLine validates one provider line item. Unresolvable lines are
// recorded and skipped rather than failing the whole materialization, since
// the payment has already been captured.
func (s *OrderService) resolveLine(ctx context.Context, sessionID string, line ProviderLineItem) (primitive.ObjectID, bool) {
	if line.Quantity <= 0 || line.UnitAmount <= 0 {
		s.logger.Warn("Dropping line item with non-positive amount or quantity",
			zap.String("session_id", sessionID),
			zap.String("product_ref", line.ProductID),
		)
		s.recordAnomaly(ctx, sessionID, "non-positive amount or quantity", line)
		return primitive.NilObjectID, false
	}
	pid, err := primitive.ObjectIDFromHex(line.ProductID)
	if err != nil {
		s.logger.Warn("Dropping line item without resolvable product id",
			zap.String("session_id", sessionID),
			zap.String("product_ref", line.ProductID),
		)
		s.recordAnomaly(ctx, sessionID, "unresolvable product id", line)
		return primitive.NilObjectID, false
	}
	return pid, true
}

func (s *OrderService) recordAnomaly(ctx context.Context, sessionID, reason string, line ProviderLineItem) {
	anomaly := &models.PaymentAnomaly{
		ID:               uuid.NewString(),
		PaymentSessionID: sessionID,
		Reason:           reason,
		ProductRef:       line.ProductID,
		Name:             line.Name,
		UnitAmount:       line.UnitAmount,
		Quantity:         line.Quantity,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.anomalies.Record(ctx, anomaly); err != nil {
		s.logger.Error("Failed to record payment anomaly",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}

// SupplierOrders returns all orders belonging to one supplier.
func (s *OrderService) SupplierOrders(ctx context.Context, supplierID string) ([]models.Order, error) {
	id, err := primitive.ObjectIDFromHex(supplierID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid supplier id")
	}
	return s.orders.FindBySupplier(ctx, id)
}

// BuyerOrders returns the authenticated buyer's orders.
func (s *OrderService) BuyerOrders(ctx context.Context, buyerID string) ([]models.Order, error) {
	id, err := primitive.ObjectIDFromHex(buyerID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid buyer id")
	}
	return s.orders.FindByBuyer(ctx, id)
}

// OrdersByEmail returns orders whose customer email matches. Dev convenience.
func (s *OrderService) OrdersByEmail(ctx context.Context, email string) ([]models.Order, error) {
	if email == "" {
		return nil, apperrors.BadRequest("missing email")
	}
	return s.orders.FindByEmail(ctx, email)
}

// AllOrders returns every order with the supplier display name attached.
func (s *OrderService) AllOrders(ctx context.Context) ([]AdminOrder, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	supplierIDs := make([]primitive.ObjectID, 0, len(orders))
	seen := make(map[primitive.ObjectID]bool)
	for _, o := range orders {
		if !seen[o.SupplierID] {
			seen[o.SupplierID] = true
			supplierIDs = append(supplierIDs, o.SupplierID)
		}
	}
	names, err := s.users.DisplayNames(ctx, supplierIDs)
	if err != nil {
		return nil, err
	}

	result := make([]AdminOrder, 0, len(orders))
	for _, o := range orders {
		result = append(result, AdminOrder{Order: o, SupplierName: names[o.SupplierID]})
	}
	return result, nil
}

// UpdateStatus transitions a paid order to fulfilled or canceled.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return apperrors.BadRequest("invalid order id")
	}
	if status != models.StatusFulfilled && status != models.StatusCanceled {
		return apperrors.BadRequest("status must be fulfilled or canceled")
	}

	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return err
	}
	if order.Status != models.StatusPaid {
		return apperrors.BadRequest("only paid orders can be %s", status)
	}
	return s.orders.UpdateStatus(ctx, id, status)
}

// DeleteOrder hard-deletes an order. Admin only.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return apperrors.BadRequest("invalid order id")
	}
	err = s.orders.Delete(ctx, id)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return apperrors.ErrNotFound
	}
	return err
}
