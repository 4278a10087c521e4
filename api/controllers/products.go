package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/localmarket-hq/localmarket-backend/api/responses"
	"github.com/localmarket-hq/localmarket-backend/api/validators"
	productsvc "github.com/localmarket-hq/localmarket-backend/internal/products"
	pkgerrors "github.com/localmarket-hq/localmarket-backend/pkg/errors"
	"github.com/localmarket-hq/localmarket-backend/pkg/logger"
)

type createProductRequest struct {
	SupplierID    uuid.UUID       `json:"supplier_id" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	Description   *string         `json:"description,omitempty"`
	Category      string          `json:"category" validate:"required"`
	Tags          []string        `json:"tags,omitempty"`
	ProducerLabel string          `json:"producer_label,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock" validate:"min=0"`
	ImageURL      *string         `json:"image_url,omitempty"`
	IsActive      *bool           `json:"is_active,omitempty"`
}

type updateProductRequest struct {
	SupplierID    uuid.UUID        `json:"supplier_id" validate:"required"`
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Category      *string          `json:"category,omitempty"`
	Tags          *[]string        `json:"tags,omitempty"`
	ProducerLabel *string          `json:"producer_label,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Stock         *int             `json:"stock,omitempty"`
	ImageURL      *string          `json:"image_url,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

type deleteProductRequest struct {
	SupplierID uuid.UUID `json:"supplier_id" validate:"required"`
}

// CreateProduct adds a listing to the supplier's catalog.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		isActive := true
		if payload.IsActive != nil {
			isActive = *payload.IsActive
		}

		product, err := svc.CreateProduct(r.Context(), payload.SupplierID, productsvc.CreateProductInput{
			Name:          payload.Name,
			Description:   payload.Description,
			Category:      payload.Category,
			Tags:          payload.Tags,
			ProducerLabel: payload.ProducerLabel,
			Price:         payload.Price,
			Stock:         payload.Stock,
			ImageURL:      payload.ImageURL,
			IsActive:      isActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateProduct mutates a listing owned by the supplier.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.UUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), payload.SupplierID, productID, productsvc.UpdateProductInput{
			Name:          payload.Name,
			Description:   payload.Description,
			Category:      payload.Category,
			Tags:          payload.Tags,
			ProducerLabel: payload.ProducerLabel,
			Price:         payload.Price,
			Stock:         payload.Stock,
			ImageURL:      payload.ImageURL,
			IsActive:      payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct removes a listing owned by the supplier.
func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.UUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload deleteProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), payload.SupplierID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GetProduct returns a single listing.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.UUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ListProducts returns the marketplace or one supplier's catalog.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		supplierID, err := validators.UUIDQuery(r, "supplier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var list []productsvc.ProductDTO
		if supplierID != uuid.Nil {
			list, err = svc.ListSupplierProducts(r.Context(), supplierID)
		} else {
			list, err = svc.ListMarketplace(r.Context(), r.URL.Query().Get("category"))
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
