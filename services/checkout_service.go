package services

import (
	"context"
	"math"
	"net/http"

	"github.com/craftora/marketplace-api/apperrors"
	"github.com/craftora/marketplace-api/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// CheckoutService validates client carts and creates hosted checkout
// sessions. It never mutates persisted state; the provider becomes the source
// of truth for what was actually paid.
type CheckoutService struct {
	gateway     PaymentGateway
	currency    string
	frontendURL string
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewCheckoutService creates a CheckoutService.
func NewCheckoutService(gateway PaymentGateway, currency, frontendURL string, logger *zap.Logger) *CheckoutService {
	validate := validator.New()
	// Request structs carry gin-style binding tags; reuse them here.
	validate.SetTagName("binding")
	return &CheckoutService{
		gateway:     gateway,
		currency:    currency,
		frontendURL: frontendURL,
		validate:    validate,
		logger:      logger,
	}
}

// CreateSession validates every cart line and requests a hosted checkout
// session, returning the provider redirect URL. Any invalid line aborts the
// whole request before the provider is called.
func (s *CheckoutService) CreateSession(ctx context.Context, req *models.CheckoutRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", apperrors.New(http.StatusBadRequest, "invalid checkout request", err)
	}
	if len(req.Products) == 0 {
		return "", apperrors.BadRequest("cart is empty")
	}

	lines := make([]SessionLine, 0, len(req.Products))
	for _, p := range req.Products {
		if err := validateCartLine(p); err != nil {
			return "", err
		}
		lines = append(lines, SessionLine{
			ProductID:  p.ProductID,
			Name:       p.Name,
			UnitAmount: toMinorUnits(p.Price),
			Quantity:   p.Qty,
		})
	}

	url, err := s.gateway.CreateCheckoutSession(ctx, CreateSessionParams{
		Lines:             lines,
		Currency:          s.currency,
		CustomerEmail:     req.Email,
		ClientReferenceID: req.UserID,
		SuccessURL:        s.frontendURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         s.frontendURL + "/checkout/cancel?session_id={CHECKOUT_SESSION_ID}",
	})
	if err != nil {
		s.logger.Warn("Checkout session creation failed", zap.Error(err))
		return "", apperrors.New(http.StatusBadRequest, err.Error(), err)
	}

	s.logger.Info("Checkout session created",
		zap.Int("line_count", len(lines)),
		zap.String("email", req.Email),
	)
	return url, nil
}

func validateCartLine(p models.CartLine) error {
	label := p.Name
	if label == "" {
		label = p.ProductID
	}
	if p.ProductID == "" {
		return apperrors.BadRequest("product %q has no product id", label)
	}
	if p.Name == "" {
		return apperrors.BadRequest("product %q has no name", label)
	}
	if p.Price <= 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return apperrors.BadRequest("product %q has an invalid price", label)
	}
	if p.Qty <= 0 {
		return apperrors.BadRequest("product %q has an invalid quantity", label)
	}
	return nil
}

// toMinorUnits converts a major-unit price into integer minor currency units.
func toMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
