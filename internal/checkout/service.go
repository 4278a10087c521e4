package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/localmarket-hq/localmarket-backend/internal/cart"
	"github.com/localmarket-hq/localmarket-backend/pkg/config"
	pkgerrors "github.com/localmarket-hq/localmarket-backend/pkg/errors"
	"github.com/localmarket-hq/localmarket-backend/pkg/logger"
)

var minorUnitFactor = decimal.NewFromInt(100)

// Service creates hosted payment sessions for carts.
type Service interface {
	CreateSession(ctx context.Context, input SessionInput) (*SessionResult, error)
}

// SessionInput captures the cart and buyer identity for a checkout.
type SessionInput struct {
	BuyerID    uuid.UUID
	BuyerEmail string
	Items      []cart.Item
}

// SessionResult carries the provider session handle and redirect target.
type SessionResult struct {
	SessionID   string
	RedirectURL string
}

type service struct {
	sessions PaymentSessionClient
	cfg      config.CheckoutConfig
	log      *logger.Logger
}

// NewService builds the checkout service.
func NewService(sessions PaymentSessionClient, cfg config.CheckoutConfig, log *logger.Logger) (Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("payment session client required")
	}
	if cfg.SuccessURL == "" || cfg.CancelURL == "" {
		return nil, fmt.Errorf("checkout redirect urls required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{sessions: sessions, cfg: cfg, log: log}, nil
}

// CreateSession validates the cart, embeds its snapshot in session
// metadata, and returns the hosted-payment redirect. It performs no
// local writes; orders materialize from the provider webhook.
func (s *service) CreateSession(ctx context.Context, input SessionInput) (*SessionResult, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	items := make([]cart.Item, len(input.Items))
	copy(items, input.Items)

	lineItems := make([]*stripe.CheckoutSessionCreateLineItemParams, 0, len(items))
	chargeable := false
	for i := range items {
		items[i].Normalize()
		unitAmount := minorUnits(items[i].UnitPrice)
		if unitAmount > 0 {
			chargeable = true
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionCreateLineItemParams{
			Quantity: stripe.Int64(int64(items[i].Quantity)),
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:   stripe.String(s.cfg.Currency),
				UnitAmount: stripe.Int64(unitAmount),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String(items[i].Name),
				},
			},
		})
	}
	if !chargeable {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart has no chargeable items")
	}

	metadata, err := EncodeMetadata(NewSnapshot(items))
	if err != nil {
		return nil, err
	}
	metadata[MetadataKeyBuyerID] = input.BuyerID.String()
	if input.BuyerEmail != "" {
		metadata[MetadataKeyBuyerEmail] = input.BuyerEmail
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
		LineItems:  lineItems,
	}
	if input.BuyerEmail != "" {
		params.CustomerEmail = stripe.String(input.BuyerEmail)
	}
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}

	session, err := s.sessions.Create(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	if session == nil || session.URL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "checkout session missing redirect url")
	}

	logCtx := s.log.WithBuyerID(ctx, input.BuyerID.String())
	logCtx = s.log.WithField(logCtx, "session_id", session.ID)
	s.log.Info(logCtx, "checkout session created")

	return &SessionResult{SessionID: session.ID, RedirectURL: session.URL}, nil
}

func minorUnits(price decimal.Decimal) int64 {
	return price.Mul(minorUnitFactor).Round(0).IntPart()
}
