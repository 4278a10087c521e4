package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/localmarket-hq/localmarket-backend/api/responses"
	"github.com/localmarket-hq/localmarket-backend/api/validators"
	ordersvc "github.com/localmarket-hq/localmarket-backend/internal/orders"
	shippingsvc "github.com/localmarket-hq/localmarket-backend/internal/shipping"
	pkgerrors "github.com/localmarket-hq/localmarket-backend/pkg/errors"
	"github.com/localmarket-hq/localmarket-backend/pkg/logger"
)

type createLabelRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

type createLabelResponse struct {
	Label       *shippingsvc.Label `json:"label"`
	OrderStatus string             `json:"order_status,omitempty"`
}

// CreateLabel purchases a shipping label for a materialized order and
// moves the order to shipped. The purchase is the irreversible step: if
// the status update fails afterwards, the label is still returned and
// the inconsistency is logged for manual follow-up.
func CreateLabel(svc shippingsvc.Service, orders ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}
		if orders == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var payload createLabelRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		label, err := svc.PurchaseLabel(r.Context(), payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := createLabelResponse{Label: label}
		order, err := orders.MarkShipped(r.Context(), payload.OrderID)
		if err != nil {
			if logg != nil {
				ctx := logg.WithOrderID(r.Context(), payload.OrderID.String())
				logg.Error(ctx, "label purchased but order not marked shipped", err)
			}
		} else {
			resp.OrderStatus = order.Status
		}

		responses.WriteSuccess(w, resp)
	}
}
