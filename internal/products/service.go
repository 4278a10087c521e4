package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localmarket-hq/localmarket-backend/pkg/db/models"
	pkgerrors "github.com/localmarket-hq/localmarket-backend/pkg/errors"
)

// Service exposes supplier catalog management operations.
type Service interface {
	CreateProduct(ctx context.Context, supplierID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, supplierID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, supplierID, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListSupplierProducts(ctx context.Context, supplierID uuid.UUID) ([]ProductDTO, error)
	ListMarketplace(ctx context.Context, category string) ([]ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name          string
	Description   *string
	Category      string
	Tags          []string
	ProducerLabel string
	Price         decimal.Decimal
	Stock         int
	ImageURL      *string
	IsActive      bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Category      *string
	Tags          *[]string
	ProducerLabel *string
	Price         *decimal.Decimal
	Stock         *int
	ImageURL      *string
	IsActive      *bool
}

type service struct {
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateProduct(ctx context.Context, supplierID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		SupplierID:    supplierID,
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Category:      strings.ToLower(strings.TrimSpace(input.Category)),
		Tags:          input.Tags,
		ProducerLabel: strings.TrimSpace(input.ProducerLabel),
		Price:         input.Price,
		Stock:         input.Stock,
		ImageURL:      input.ImageURL,
		IsActive:      input.IsActive,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return NewProductDTO(created), nil
}

func (s *service) UpdateProduct(ctx context.Context, supplierID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.ownedProduct(ctx, supplierID, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = trimmed
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		product.Category = strings.ToLower(strings.TrimSpace(*input.Category))
	}
	if input.Tags != nil {
		product.Tags = *input.Tags
	}
	if input.ProducerLabel != nil {
		product.ProducerLabel = strings.TrimSpace(*input.ProducerLabel)
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.Stock = *input.Stock
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return NewProductDTO(updated), nil
}

func (s *service) DeleteProduct(ctx context.Context, supplierID, productID uuid.UUID) error {
	if _, err := s.ownedProduct(ctx, supplierID, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return NewProductDTO(product), nil
}

func (s *service) ListSupplierProducts(ctx context.Context, supplierID uuid.UUID) ([]ProductDTO, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	list, err := s.repo.ListBySupplier(ctx, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list supplier products")
	}
	return NewProductDTOs(list), nil
}

func (s *service) ListMarketplace(ctx context.Context, category string) ([]ProductDTO, error) {
	list, err := s.repo.ListActive(ctx, strings.ToLower(strings.TrimSpace(category)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list marketplace products")
	}
	return NewProductDTOs(list), nil
}

func (s *service) ownedProduct(ctx context.Context, supplierID, productID uuid.UUID) (*models.Product, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product.SupplierID != supplierID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func validateCreate(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product category required")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	return nil
}
