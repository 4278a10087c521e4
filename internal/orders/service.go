package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/localmarket-hq/localmarket-backend/pkg/db/models"
	"github.com/localmarket-hq/localmarket-backend/pkg/enums"
	pkgerrors "github.com/localmarket-hq/localmarket-backend/pkg/errors"
)

// Service defines order lifecycle operations beyond repository reads.
type Service interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	ListBuyerOrders(ctx context.Context, buyerID uuid.UUID) ([]OrderDTO, error)
	ListSupplierOrders(ctx context.Context, supplierID uuid.UUID) ([]OrderDTO, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error)
	MarkShipped(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
}

// allowedTransitions is the forward-only order lifecycle. Pending orders
// may jump straight to shipped when a supplier skips explicit confirmation.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:   {enums.OrderStatusConfirmed, enums.OrderStatusShipped},
	enums.OrderStatusConfirmed: {enums.OrderStatusShipped},
	enums.OrderStatusShipped:   {enums.OrderStatusDelivered},
	enums.OrderStatusDelivered: {},
}

// CanTransition reports whether the lifecycle permits moving from one
// status to the next.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

type service struct {
	repo Repository
}

// NewService builds the orders service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

func (s *service) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID) ([]OrderDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	list, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list buyer orders")
	}
	return NewOrderDTOs(list), nil
}

func (s *service) ListSupplierOrders(ctx context.Context, supplierID uuid.UUID) ([]OrderDTO, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	list, err := s.repo.ListBySupplier(ctx, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list supplier orders")
	}
	return NewOrderDTOs(list), nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
			WithDetails(map[string]any{"from": order.Status.String(), "to": next.String()})
	}

	if err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	order.Status = next
	return NewOrderDTO(order), nil
}

// MarkShipped advances the order after a label purchase.
func (s *service) MarkShipped(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	return s.UpdateStatus(ctx, orderID, enums.OrderStatusShipped)
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}
