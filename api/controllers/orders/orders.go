package orders

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/localmarket-hq/localmarket-backend/api/responses"
	"github.com/localmarket-hq/localmarket-backend/api/validators"
	internalorders "github.com/localmarket-hq/localmarket-backend/internal/orders"
	"github.com/localmarket-hq/localmarket-backend/pkg/enums"
	pkgerrors "github.com/localmarket-hq/localmarket-backend/pkg/errors"
	"github.com/localmarket-hq/localmarket-backend/pkg/logger"
)

// List returns orders filtered by buyer_id or supplier_id.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		buyerID, err := validators.UUIDQuery(r, "buyer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := validators.UUIDQuery(r, "supplier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var list []internalorders.OrderDTO
		switch {
		case buyerID != uuid.Nil:
			list, err = svc.ListBuyerOrders(r.Context(), buyerID)
		case supplierID != uuid.Nil:
			list, err = svc.ListSupplierOrders(r.Context(), supplierID)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "buyer_id or supplier_id filter required")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// Get returns one order with its items.
func Get(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.UUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus moves an order along the fulfillment lifecycle.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.UUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload statusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orderID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
