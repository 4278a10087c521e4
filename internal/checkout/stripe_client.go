package checkout

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/localmarket-hq/localmarket-backend/pkg/stripe"
)

// PaymentSessionClient exposes the subset of Stripe operations required by the checkout service.
type PaymentSessionClient interface {
	Create(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
}

type sessionClientWrapper struct {
	api *pkgstripe.Client
}

// NewPaymentSessionClient wraps the provided Stripe client so the checkout service can be tested.
func NewPaymentSessionClient(api *pkgstripe.Client) PaymentSessionClient {
	if api == nil {
		return nil
	}
	return &sessionClientWrapper{api: api}
}

func (w *sessionClientWrapper) Create(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
	return w.api.API().V1CheckoutSessions.Create(ctx, params)
}
