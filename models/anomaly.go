package models

import "time"

// PaymentAnomaly records a paid line item that could not be reconciled against
// the catalog. The payment was already captured by the provider, so the line
// is dropped from the order but kept here for manual review.
type PaymentAnomaly struct {
	ID               string    `json:"_id" bson:"_id"`
	PaymentSessionID string    `json:"paymentSessionId" bson:"paymentSessionId"`
	Reason           string    `json:"reason" bson:"reason"`
	ProductRef       string    `json:"productRef" bson:"productRef"`
	Name             string    `json:"name" bson:"name"`
	UnitAmount       int64     `json:"unitAmount" bson:"unitAmount"`
	Quantity         int64     `json:"quantity" bson:"quantity"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
}
