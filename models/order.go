package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of a supplier order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusFulfilled OrderStatus = "fulfilled"
	StatusCanceled  OrderStatus = "canceled"
)

// OrderItem is one purchased line within a supplier order. Subtotal is always
// UnitAmount * Quantity, in minor currency units.
type OrderItem struct {
	ProductID  primitive.ObjectID `json:"productId" bson:"productId"`
	Name       string             `json:"name" bson:"name"`
	UnitAmount int64              `json:"unitAmount" bson:"unitAmount"`
	Quantity   int64              `json:"quantity" bson:"quantity"`
	Subtotal   int64              `json:"subtotal" bson:"subtotal"`
}

// Customer is the buyer contact information copied from the checkout session.
type Customer struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone" bson:"phone"`
}

// Address is the shipping destination reported by the payment provider.
type Address struct {
	Line1      string `json:"line1" bson:"line1"`
	Line2      string `json:"line2,omitempty" bson:"line2,omitempty"`
	City       string `json:"city" bson:"city"`
	State      string `json:"state,omitempty" bson:"state,omitempty"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
	Country    string `json:"country" bson:"country"`
}

// Order is one supplier's portion of a single paid checkout session.
// The (paymentSessionId, supplierId) pair carries a unique index; the session
// id is the idempotency key for the whole checkout.
type Order struct {
	ID               primitive.ObjectID  `json:"_id,omitempty" bson:"_id,omitempty"`
	SupplierID       primitive.ObjectID  `json:"supplierId" bson:"supplierId"`
	BuyerID          *primitive.ObjectID `json:"buyerId,omitempty" bson:"buyerId,omitempty"`
	Items            []OrderItem         `json:"items" bson:"items"`
	Currency         string              `json:"currency" bson:"currency"`
	TotalAmount      int64               `json:"totalAmount" bson:"totalAmount"`
	Status           OrderStatus         `json:"status" bson:"status"`
	PaymentSessionID string              `json:"paymentSessionId" bson:"paymentSessionId"`
	Customer         Customer            `json:"customer" bson:"customer"`
	ShippingAddress  Address             `json:"shippingAddress" bson:"shippingAddress"`
	CreatedAt        time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt" bson:"updatedAt"`
}
