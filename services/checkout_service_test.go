package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/craftora/marketplace-api/apperrors"
	"github.com/craftora/marketplace-api/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newCheckoutService(gateway *fakeGateway) *CheckoutService {
	return NewCheckoutService(gateway, "usd", "http://localhost:3000", zap.NewNop())
}

func validRequest() *models.CheckoutRequest {
	return &models.CheckoutRequest{
		Products: []models.CartLine{
			{ProductID: "p1", Name: "Widget", Price: 100.00, Qty: 2},
		},
		Email: "a@b.com",
	}
}

func TestCreateSession_Success(t *testing.T) {
	gateway := &fakeGateway{url: "https://checkout.stripe.test/cs_1"}
	svc := newCheckoutService(gateway)

	url, err := svc.CreateSession(context.Background(), validRequest())

	assert.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/cs_1", url)
	assert.Equal(t, 1, gateway.createCalls)

	params := gateway.lastParams
	assert.Len(t, params.Lines, 1)
	assert.Equal(t, "p1", params.Lines[0].ProductID)
	assert.Equal(t, int64(10000), params.Lines[0].UnitAmount)
	assert.Equal(t, int64(2), params.Lines[0].Quantity)
	assert.Equal(t, "a@b.com", params.CustomerEmail)
	assert.Equal(t, "usd", params.Currency)
	assert.Contains(t, params.SuccessURL, "{CHECKOUT_SESSION_ID}")
	assert.Contains(t, params.CancelURL, "{CHECKOUT_SESSION_ID}")
}

func TestCreateSession_RoundsToMinorUnits(t *testing.T) {
	gateway := &fakeGateway{url: "https://checkout.stripe.test/cs_2"}
	svc := newCheckoutService(gateway)

	req := validRequest()
	req.Products[0].Price = 19.99

	_, err := svc.CreateSession(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, int64(1999), gateway.lastParams.Lines[0].UnitAmount)
}

func TestCreateSession_RejectsInvalidLines(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.CartLine)
		want   string
	}{
		{"zero price", func(l *models.CartLine) { l.Price = 0 }, "price"},
		{"negative quantity", func(l *models.CartLine) { l.Qty = -1 }, "quantity"},
		{"empty name", func(l *models.CartLine) { l.Name = "" }, "name"},
		{"missing product id", func(l *models.CartLine) { l.ProductID = "" }, "product id"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gateway := &fakeGateway{}
			svc := newCheckoutService(gateway)

			req := validRequest()
			tc.mutate(&req.Products[0])

			_, err := svc.CreateSession(context.Background(), req)

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
			// The error names the offending product.
			label := req.Products[0].Name
			if label == "" {
				label = req.Products[0].ProductID
			}
			assert.True(t, strings.Contains(err.Error(), label))
			// Validation aborts before any provider call.
			assert.Equal(t, 0, gateway.createCalls)
		})
	}
}

func TestCreateSession_OneBadLineAbortsAll(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newCheckoutService(gateway)

	req := validRequest()
	req.Products = append(req.Products, models.CartLine{ProductID: "p2", Name: "Gadget", Price: 5.00, Qty: 0})

	_, err := svc.CreateSession(context.Background(), req)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Gadget")
	assert.Equal(t, 0, gateway.createCalls)
}

func TestCreateSession_EmptyCart(t *testing.T) {
	gateway := &fakeGateway{}
	svc := newCheckoutService(gateway)

	_, err := svc.CreateSession(context.Background(), &models.CheckoutRequest{Products: []models.CartLine{}})

	assert.Error(t, err)
	assert.Equal(t, 0, gateway.createCalls)
}

func TestCreateSession_ProviderError(t *testing.T) {
	gateway := &fakeGateway{createErr: errors.New("invalid api key")}
	svc := newCheckoutService(gateway)

	_, err := svc.CreateSession(context.Background(), validRequest())

	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusOf(err))
	assert.Contains(t, err.Error(), "invalid api key")
}
