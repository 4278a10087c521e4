package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localmarket-hq/localmarket-backend/pkg/db/models"
)

// ProductDTO represents the catalog payload returned to clients.
type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	Category      string          `json:"category"`
	Tags          []string        `json:"tags"`
	ProducerLabel string          `json:"producer_label"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	ImageURL      *string         `json:"image_url,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:            product.ID,
		SupplierID:    product.SupplierID,
		Name:          product.Name,
		Description:   product.Description,
		Category:      product.Category,
		Tags:          append([]string{}, product.Tags...),
		ProducerLabel: product.ProducerLabel,
		Price:         product.Price,
		Stock:         product.Stock,
		ImageURL:      product.ImageURL,
		IsActive:      product.IsActive,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}

// NewProductDTOs maps a slice of models.
func NewProductDTOs(list []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, *NewProductDTO(&list[i]))
	}
	return dtos
}
