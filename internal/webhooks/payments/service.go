package paymentswebhook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/localmarket-hq/localmarket-backend/internal/cart"
	"github.com/localmarket-hq/localmarket-backend/internal/checkout"
	"github.com/localmarket-hq/localmarket-backend/internal/orders"
	"github.com/localmarket-hq/localmarket-backend/internal/products"
	"github.com/localmarket-hq/localmarket-backend/pkg/db/models"
	"github.com/localmarket-hq/localmarket-backend/pkg/enums"
	pkgerrors "github.com/localmarket-hq/localmarket-backend/pkg/errors"
	"github.com/localmarket-hq/localmarket-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productRepository interface {
	WithTx(tx *gorm.DB) *products.Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// OrderNotifier delivers the post-payment confirmation. Failures must
// never affect order materialization.
type OrderNotifier interface {
	OrderConfirmed(ctx context.Context, order *models.Order, buyerEmail string)
}

// ServiceParams wires the materializer dependencies.
type ServiceParams struct {
	OrdersRepo        orders.Repository
	ProductsRepo      productRepository
	TransactionRunner txRunner
	Notifier          OrderNotifier
	Logger            *logger.Logger
}

// Service turns completed payment sessions into per-supplier orders.
type Service struct {
	ordersRepo   orders.Repository
	productsRepo productRepository
	txRunner     txRunner
	notifier     OrderNotifier
	log          *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.ProductsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "products repo required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		ordersRepo:   params.OrdersRepo,
		productsRepo: params.ProductsRepo,
		txRunner:     params.TransactionRunner,
		notifier:     params.Notifier,
		log:          params.Logger,
	}, nil
}

// HandleEvent processes a verified provider event. Unknown event types
// are acknowledged without work. Downstream failures after the session
// decodes are logged and swallowed so the provider does not retry into
// the same failure.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event data required")
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
	}
	if session.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
	}

	logCtx := s.log.WithField(ctx, "session_id", session.ID)

	exists, err := s.ordersRepo.ExistsForSession(ctx, session.ID)
	if err != nil {
		s.log.Error(logCtx, "session replay check failed", err)
		return nil
	}
	if exists {
		s.log.Info(logCtx, "orders already materialized for session")
		return nil
	}

	buyerID, err := buyerFromMetadata(session.Metadata)
	if err != nil {
		s.log.Error(logCtx, "buyer id missing on session", err)
		return nil
	}
	logCtx = s.log.WithBuyerID(logCtx, buyerID.String())

	items, err := s.itemsFromSession(ctx, &session)
	if err != nil {
		s.log.Error(logCtx, "cart snapshot unreadable", err)
		return nil
	}

	created := s.materializeOrders(logCtx, buyerID, session.ID, items)
	if len(created) == 0 {
		return nil
	}

	if s.notifier != nil {
		email := buyerEmail(&session)
		for _, order := range created {
			s.notifier.OrderConfirmed(ctx, order, email)
		}
	}
	return nil
}

// materializeOrders writes one order per supplier group. Each group gets
// its own transaction so one supplier's failure cannot roll back another's
// already-committed order.
func (s *Service) materializeOrders(ctx context.Context, buyerID uuid.UUID, sessionID string, items []cart.Item) []*models.Order {
	groups := cart.GroupBySupplier(items)
	created := make([]*models.Order, 0, len(groups))

	for _, group := range groups {
		order := &models.Order{
			BuyerID:          buyerID,
			SupplierID:       group.SupplierID,
			PaymentSessionID: sessionID,
			TotalAmount:      group.Subtotal,
			Status:           enums.OrderStatusPending,
			PaymentTerm:      enums.PaymentTermPayNow,
			PaymentStatus:    enums.PaymentStatusPaid,
		}

		err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
			ordersRepo := s.ordersRepo.WithTx(tx)
			productsRepo := s.productsRepo.WithTx(tx)

			persisted, err := ordersRepo.Create(ctx, order)
			if err != nil {
				return fmt.Errorf("create order: %w", err)
			}

			orderItems := make([]models.OrderItem, 0, len(group.Items))
			for _, item := range group.Items {
				orderItems = append(orderItems, models.OrderItem{
					OrderID:         persisted.ID,
					ProductID:       item.ProductID,
					Name:            item.Name,
					ProducerLabel:   item.ProducerLabel,
					Quantity:        item.Quantity,
					PriceAtPurchase: item.UnitPrice,
				})
			}
			if err := ordersRepo.CreateItems(ctx, orderItems); err != nil {
				return fmt.Errorf("create order items: %w", err)
			}
			order.Items = orderItems

			for _, item := range group.Items {
				if err := productsRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
					return fmt.Errorf("decrement stock for %s: %w", item.ProductID, err)
				}
			}
			return nil
		})
		if err != nil {
			groupCtx := ctx
			if group.SupplierID != nil {
				groupCtx = s.log.WithSupplierID(ctx, group.SupplierID.String())
			}
			s.log.Error(groupCtx, "order materialization failed for supplier group", err)
			continue
		}
		created = append(created, order)
	}
	return created
}

// itemsFromSession decodes the versioned snapshot, falling back to the
// legacy product-id list resolved against the live catalog.
func (s *Service) itemsFromSession(ctx context.Context, session *stripe.CheckoutSession) ([]cart.Item, error) {
	snap, snapErr := checkout.ParseMetadata(session.Metadata)
	if snapErr == nil {
		return snap.CartItems(), nil
	}

	legacy, legacyErr := checkout.ParseLegacyMetadata(session.Metadata)
	if legacyErr != nil {
		return nil, fmt.Errorf("snapshot: %v; legacy: %w", snapErr, legacyErr)
	}

	items := make([]cart.Item, 0, len(legacy.ProductIDs))
	for _, productID := range legacy.ProductIDs {
		product, err := s.productsRepo.FindByID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("resolve legacy product %s: %w", productID, err)
		}
		supplierID := product.SupplierID
		items = append(items, cart.Item{
			ProductID:     product.ID,
			SupplierID:    &supplierID,
			Name:          product.Name,
			ProducerLabel: product.ProducerLabel,
			UnitPrice:     product.Price,
			Quantity:      1,
		})
	}
	return items, nil
}

func buyerFromMetadata(metadata map[string]string) (uuid.UUID, error) {
	raw, ok := metadata[checkout.MetadataKeyBuyerID]
	if !ok || raw == "" {
		return uuid.Nil, fmt.Errorf("buyer_id metadata missing")
	}
	return uuid.Parse(raw)
}

func buyerEmail(session *stripe.CheckoutSession) string {
	if email := session.Metadata[checkout.MetadataKeyBuyerEmail]; email != "" {
		return email
	}
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	return session.CustomerEmail
}
