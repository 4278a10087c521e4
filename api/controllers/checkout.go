package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localmarket-hq/localmarket-backend/api/responses"
	"github.com/localmarket-hq/localmarket-backend/api/validators"
	"github.com/localmarket-hq/localmarket-backend/internal/cart"
	checkoutsvc "github.com/localmarket-hq/localmarket-backend/internal/checkout"
	pkgerrors "github.com/localmarket-hq/localmarket-backend/pkg/errors"
	"github.com/localmarket-hq/localmarket-backend/pkg/logger"
)

type checkoutRequest struct {
	UserID    uuid.UUID          `json:"user_id" validate:"required"`
	UserEmail string             `json:"user_email" validate:"omitempty,email"`
	Cart      []checkoutCartItem `json:"cart" validate:"required,min=1,dive"`
}

type checkoutCartItem struct {
	ProductID     uuid.UUID       `json:"product_id" validate:"required"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	Name          string          `json:"name" validate:"required"`
	ProducerLabel string          `json:"producer_label,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	ImageURL      string          `json:"image_url,omitempty"`
}

type checkoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// CreateCheckoutSession turns the submitted cart into a hosted payment
// session and returns its redirect URL.
func CreateCheckoutSession(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]cart.Item, 0, len(payload.Cart))
		for _, line := range payload.Cart {
			items = append(items, cart.Item{
				ProductID:     line.ProductID,
				SupplierID:    line.SupplierID,
				Name:          line.Name,
				ProducerLabel: line.ProducerLabel,
				UnitPrice:     line.Price,
				Quantity:      line.Quantity,
				ImageURL:      line.ImageURL,
			})
		}

		result, err := svc.CreateSession(r.Context(), checkoutsvc.SessionInput{
			BuyerID:    payload.UserID,
			BuyerEmail: payload.UserEmail,
			Items:      items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, checkoutResponse{URL: result.RedirectURL, SessionID: result.SessionID})
	}
}
