package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product represents the canonical supplier listing.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID    uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null"`
	Name          string          `gorm:"column:name;not null"`
	Description   *string         `gorm:"column:description"`
	Category      string          `gorm:"column:category;not null"`
	Tags          pq.StringArray  `gorm:"column:tags;type:text[]"`
	ProducerLabel string          `gorm:"column:producer_label;not null;default:''"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock         int             `gorm:"column:stock;not null;default:0"`
	ImageURL      *string         `gorm:"column:image_url"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
