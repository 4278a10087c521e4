package shipping

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/localmarket-hq/localmarket-backend/internal/orders"
	"github.com/localmarket-hq/localmarket-backend/pkg/db/models"
	pkgerrors "github.com/localmarket-hq/localmarket-backend/pkg/errors"
	"github.com/localmarket-hq/localmarket-backend/pkg/logger"
	"github.com/localmarket-hq/localmarket-backend/pkg/shipping"
)

// defaultParcel stands in until per-product dimensions are captured.
var defaultParcel = shipping.Parcel{
	Length:       "12",
	Width:        "10",
	Height:       "6",
	DistanceUnit: "in",
	Weight:       "2",
	MassUnit:     "lb",
}

type rateClient interface {
	CreateShipment(ctx context.Context, req shipping.ShipmentRequest) ([]shipping.Rate, error)
	PurchaseLabel(ctx context.Context, rateID string) (*shipping.Transaction, error)
}

type profileLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Label is the purchased shipping label returned to the supplier.
type Label struct {
	OrderID        uuid.UUID `json:"order_id"`
	LabelURL       string    `json:"label_url"`
	TrackingNumber string    `json:"tracking_number"`
	Provider       string    `json:"provider"`
	ServiceLevel   string    `json:"service_level"`
	Amount         string    `json:"amount"`
	Currency       string    `json:"currency"`
}

// Service purchases shipping labels for materialized orders.
type Service interface {
	PurchaseLabel(ctx context.Context, orderID uuid.UUID) (*Label, error)
}

type service struct {
	client   rateClient
	orders   orders.Repository
	profiles profileLoader
	log      *logger.Logger
}

// NewService builds the label purchase service.
func NewService(client rateClient, ordersRepo orders.Repository, profiles profileLoader, log *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("shipping client required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile loader required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{client: client, orders: ordersRepo, profiles: profiles, log: log}, nil
}

// PurchaseLabel quotes the shipment for the order's supplier->buyer lane
// and buys the cheapest returned rate. Address validation happens before
// any provider call.
func (s *service) PurchaseLabel(ctx context.Context, orderID uuid.UUID) (*Label, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order.SupplierID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no supplier to ship from")
	}

	from, err := s.shipmentParty(ctx, *order.SupplierID, "supplier")
	if err != nil {
		return nil, err
	}
	to, err := s.shipmentParty(ctx, order.BuyerID, "buyer")
	if err != nil {
		return nil, err
	}

	rates, err := s.client.CreateShipment(ctx, shipping.ShipmentRequest{
		AddressFrom: from,
		AddressTo:   to,
		Parcels:     []shipping.Parcel{defaultParcel},
		Async:       false,
	})
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "no shipping rates available")
	}

	sort.Slice(rates, func(i, j int) bool {
		return rates[i].Amount.LessThan(rates[j].Amount)
	})
	cheapest := rates[0]

	transaction, err := s.client.PurchaseLabel(ctx, cheapest.ObjectID)
	if err != nil {
		return nil, err
	}
	if !transaction.Succeeded() {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "label purchase rejected by provider").
			WithDetails(map[string]any{"status": transaction.Status, "messages": transaction.Messages})
	}

	logCtx := s.log.WithOrderID(ctx, order.ID.String())
	logCtx = s.log.WithField(logCtx, "tracking_number", transaction.TrackingNumber)
	s.log.Info(logCtx, "shipping label purchased")

	return &Label{
		OrderID:        order.ID,
		LabelURL:       transaction.LabelURL,
		TrackingNumber: transaction.TrackingNumber,
		Provider:       cheapest.Provider,
		ServiceLevel:   cheapest.ServiceLevel,
		Amount:         cheapest.Amount.StringFixed(2),
		Currency:       cheapest.Currency,
	}, nil
}

// shipmentParty loads a profile and converts it to the provider-facing
// address, rejecting incomplete addresses with the missing field names.
func (s *service) shipmentParty(ctx context.Context, profileID uuid.UUID, role string) (shipping.ShipmentAddress, error) {
	profile, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shipping.ShipmentAddress{}, pkgerrors.New(pkgerrors.CodeNotFound, role+" profile not found")
		}
		return shipping.ShipmentAddress{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load "+role+" profile")
	}

	if missing := profile.Address.MissingFields(); len(missing) > 0 {
		return shipping.ShipmentAddress{}, pkgerrors.New(pkgerrors.CodeValidation, role+" address is incomplete").
			WithDetails(map[string]any{"missing_fields": missing})
	}

	name := profile.FullName
	if profile.BusinessName != nil && *profile.BusinessName != "" {
		name = *profile.BusinessName
	}
	address := shipping.ShipmentAddress{
		Name:    name,
		Street1: profile.Address.Line1,
		City:    profile.Address.City,
		State:   profile.Address.State,
		Zip:     profile.Address.PostalCode,
		Country: profile.Address.CountryOrDefault(),
		Email:   profile.Email,
	}
	if profile.Address.Line2 != nil {
		address.Street2 = *profile.Address.Line2
	}
	if profile.Phone != nil {
		address.Phone = *profile.Phone
	}
	return address, nil
}
