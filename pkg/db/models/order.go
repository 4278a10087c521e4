package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localmarket-hq/localmarket-backend/pkg/enums"
)

// Order is the per-supplier order materialized from a completed checkout.
// SupplierID is nil for items that carried no supplier at snapshot time.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID          uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null"`
	SupplierID       *uuid.UUID          `gorm:"column:supplier_id;type:uuid"`
	PaymentSessionID string              `gorm:"column:payment_session_id;not null;default:''"`
	TotalAmount      decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status           enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	PaymentTerm      enums.PaymentTerm   `gorm:"column:payment_term;not null;default:'pay_now'"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	Items            []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
