package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/localmarket-hq/localmarket-backend/pkg/db/models"
	"github.com/localmarket-hq/localmarket-backend/pkg/enums"
)

// Repository defines persistence operations for order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateItems(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.Order, error)
	ExistsForSession(ctx context.Context, sessionID string) (bool, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
}
