package services

import (
	"context"
	"encoding/json"

	"github.com/craftora/marketplace-api/models"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"github.com/stripe/stripe-go/v80/webhook"
)

// SessionLine is one validated cart line forwarded to the provider.
// UnitAmount is in minor currency units; ProductID is round-tripped through
// provider-side product metadata so line items can be mapped back to the
// catalog during materialization.
type SessionLine struct {
	ProductID  string
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CreateSessionParams describes a hosted checkout session to create.
type CreateSessionParams struct {
	Lines             []SessionLine
	Currency          string
	CustomerEmail     string
	ClientReferenceID string
	SuccessURL        string
	CancelURL         string
}

// ProviderLineItem is the provider's authoritative record of one paid line.
type ProviderLineItem struct {
	ProductID  string
	Name       string
	UnitAmount int64
	Quantity   int64
}

// SessionDetails carries the buyer and shipping metadata of a session.
type SessionDetails struct {
	ID                string
	ClientReferenceID string
	Currency          string
	Customer          models.Customer
	ShippingAddress   models.Address
}

// PaymentGateway abstracts the payment provider so the checkout and order
// services can be exercised against a fake in tests.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, params CreateSessionParams) (string, error)
	GetSession(ctx context.Context, sessionID string) (*SessionDetails, error)
	SessionLineItems(ctx context.Context, sessionID string) ([]ProviderLineItem, error)
	ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// StripeGateway implements PaymentGateway against the Stripe API through an
// explicitly constructed client, not the package-level key.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway creates a StripeGateway with its own client instance.
func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, webhookSecret: webhookSecret}
}

// MetadataProductID is the provider-side metadata key carrying the catalog
// product id on each checkout line.
const MetadataProductID = "productId"

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p CreateSessionParams) (string, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(p.Lines))
	for _, line := range p.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(line.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(p.Currency),
				UnitAmount: stripe.Int64(line.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:     stripe.String(line.Name),
					Metadata: map[string]string{MetadataProductID: line.ProductID},
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	params.Context = ctx
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	if p.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(p.ClientReferenceID)
	}

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

func (g *StripeGateway) GetSession(ctx context.Context, sessionID string) (*SessionDetails, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, err
	}

	details := &SessionDetails{
		ID:                sess.ID,
		ClientReferenceID: sess.ClientReferenceID,
		Currency:          string(sess.Currency),
	}
	if cd := sess.CustomerDetails; cd != nil {
		details.Customer = models.Customer{Name: cd.Name, Email: cd.Email, Phone: cd.Phone}
		if addr := cd.Address; addr != nil {
			details.ShippingAddress = models.Address{
				Line1:      addr.Line1,
				Line2:      addr.Line2,
				City:       addr.City,
				State:      addr.State,
				PostalCode: addr.PostalCode,
				Country:    addr.Country,
			}
		}
	}
	return details, nil
}

// SessionLineItems fetches the session's paid line items with the provider
// product expanded, so the catalog product id can be read back from metadata.
func (g *StripeGateway) SessionLineItems(ctx context.Context, sessionID string) ([]ProviderLineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx
	params.AddExpand("data.price.product")

	var items []ProviderLineItem
	iter := g.api.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		li := iter.LineItem()
		item := ProviderLineItem{
			Name:     li.Description,
			Quantity: li.Quantity,
		}
		if li.Price != nil {
			item.UnitAmount = li.Price.UnitAmount
			if li.Price.Product != nil {
				item.ProductID = li.Price.Product.Metadata[MetadataProductID]
				if item.Name == "" {
					item.Name = li.Price.Product.Name
				}
			}
		}
		items = append(items, item)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ConstructEvent verifies the webhook signature when a secret is configured.
// Without a secret the payload is trusted as-is; that mode exists for local
// dev only.
func (g *StripeGateway) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	if g.webhookSecret != "" {
		return webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	}
	var event stripe.Event
	err := json.Unmarshal(payload, &event)
	return event, err
}
