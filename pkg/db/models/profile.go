package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/localmarket-hq/localmarket-backend/pkg/types"
)

// Profile is the buyer or supplier account record.
type Profile struct {
	ID           uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string        `gorm:"column:email;not null"`
	FullName     string        `gorm:"column:full_name;not null"`
	BusinessName *string       `gorm:"column:business_name"`
	Phone        *string       `gorm:"column:phone"`
	IsSupplier   bool          `gorm:"column:is_supplier;not null;default:false"`
	Address      types.Address `gorm:"embedded"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy table name used by the hosted database.
func (Profile) TableName() string {
	return "profiles"
}
