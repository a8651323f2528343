package models

// CartLine is one client-submitted cart entry. It is validated, forwarded to
// the payment provider and then discarded; the provider's line items become
// the source of truth for what was actually paid.
type CartLine struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Qty       int64   `json:"qty"`
}

// CheckoutRequest is the body of POST /api/checkout/session.
type CheckoutRequest struct {
	Products []CartLine `json:"products" binding:"required,min=1"`
	UserID   string     `json:"userId"`
	Email    string     `json:"email" binding:"omitempty,email"`
}
