package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localmarket-hq/localmarket-backend/pkg/db/models"
)

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID               uuid.UUID      `json:"id"`
	BuyerID          uuid.UUID      `json:"buyer_id"`
	SupplierID       *uuid.UUID     `json:"supplier_id,omitempty"`
	PaymentSessionID string         `json:"payment_session_id,omitempty"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Status           string         `json:"status"`
	PaymentTerm      string         `json:"payment_term"`
	PaymentStatus    string         `json:"payment_status"`
	Items            []OrderItemDTO `json:"items"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// OrderItemDTO is one purchased line on an order.
type OrderItemDTO struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Name            string          `json:"name"`
	ProducerLabel   string          `json:"producer_label,omitempty"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// NewOrderDTO maps the persisted order and its items.
func NewOrderDTO(order *models.Order) *OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:              item.ID,
			ProductID:       item.ProductID,
			Name:            item.Name,
			ProducerLabel:   item.ProducerLabel,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
		})
	}
	return &OrderDTO{
		ID:               order.ID,
		BuyerID:          order.BuyerID,
		SupplierID:       order.SupplierID,
		PaymentSessionID: order.PaymentSessionID,
		TotalAmount:      order.TotalAmount,
		Status:           order.Status.String(),
		PaymentTerm:      order.PaymentTerm.String(),
		PaymentStatus:    order.PaymentStatus.String(),
		Items:            items,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

// NewOrderDTOs maps a slice of orders.
func NewOrderDTOs(list []models.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, *NewOrderDTO(&list[i]))
	}
	return dtos
}
