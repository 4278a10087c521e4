package paymentswebhook

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/localmarket-hq/localmarket-backend/internal/cart"
	"github.com/localmarket-hq/localmarket-backend/internal/checkout"
	"github.com/localmarket-hq/localmarket-backend/internal/orders"
	"github.com/localmarket-hq/localmarket-backend/internal/products"
	"github.com/localmarket-hq/localmarket-backend/pkg/db/models"
	"github.com/localmarket-hq/localmarket-backend/pkg/enums"
	"github.com/localmarket-hq/localmarket-backend/pkg/logger"
)

type stubTxRunner struct {
	db *gorm.DB
}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
}

type capturingNotifier struct {
	orders []*models.Order
	emails []string
}

func (c *capturingNotifier) OrderConfirmed(_ context.Context, order *models.Order, buyerEmail string) {
	c.orders = append(c.orders, order)
	c.emails = append(c.emails, buyerEmail)
}

func setupWebhookTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  supplier_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  tags TEXT,
  producer_label TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL DEFAULT 0,
  stock INTEGER NOT NULL DEFAULT 0,
  image_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  supplier_id TEXT,
  payment_session_id TEXT NOT NULL DEFAULT '',
  total_amount NUMERIC NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_term TEXT NOT NULL DEFAULT 'pay_now',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  producer_label TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL,
  price_at_purchase NUMERIC NOT NULL,
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func mustSeedProduct(t *testing.T, db *gorm.DB, supplierID uuid.UUID, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:            uuid.New(),
		SupplierID:    supplierID,
		Name:          "Seeded Product",
		Category:      "produce",
		Tags:          pq.StringArray{},
		ProducerLabel: "Foothill Farms",
		Price:         decimal.RequireFromString(price),
		Stock:         stock,
		IsActive:      true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func newWebhookService(t *testing.T, db *gorm.DB, notifier OrderNotifier) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		OrdersRepo:        orders.NewRepository(db),
		ProductsRepo:      products.NewRepository(db),
		TransactionRunner: &stubTxRunner{db: db},
		Notifier:          notifier,
		Logger:            testLogger(),
	})
	require.NoError(t, err)
	return svc
}

func buildSessionEvent(t *testing.T, sessionID string, metadata map[string]string) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":       sessionID,
		"metadata": metadata,
	})
	require.NoError(t, err)
	return &stripe.Event{
		ID:   "evt_" + uuid.NewString(),
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: raw},
	}
}

func snapshotMetadata(t *testing.T, buyerID uuid.UUID, buyerEmail string, items []cart.Item) map[string]string {
	t.Helper()
	metadata, err := checkout.EncodeMetadata(checkout.NewSnapshot(items))
	require.NoError(t, err)
	metadata[checkout.MetadataKeyBuyerID] = buyerID.String()
	if buyerEmail != "" {
		metadata[checkout.MetadataKeyBuyerEmail] = buyerEmail
	}
	return metadata
}

func TestHandleEventMaterializesOrderPerSupplier(t *testing.T) {
	db := setupWebhookTestDB(t)
	notifier := &capturingNotifier{}
	svc := newWebhookService(t, db, notifier)
	ctx := context.Background()

	supplierA := uuid.New()
	supplierB := uuid.New()
	productA := mustSeedProduct(t, db, supplierA, "4.00", 10)
	productB := mustSeedProduct(t, db, supplierB, "9.50", 5)
	buyerID := uuid.New()

	items := []cart.Item{
		{ProductID: productA.ID, SupplierID: &supplierA, Name: productA.Name, UnitPrice: productA.Price, Quantity: 3},
		{ProductID: productB.ID, SupplierID: &supplierB, Name: productB.Name, UnitPrice: productB.Price, Quantity: 2},
	}
	event := buildSessionEvent(t, "cs_test_split", snapshotMetadata(t, buyerID, "buyer@example.com", items))

	require.NoError(t, svc.HandleEvent(ctx, event))

	var persisted []models.Order
	require.NoError(t, db.Order("supplier_id").Find(&persisted).Error)
	require.Len(t, persisted, 2)

	totals := map[uuid.UUID]decimal.Decimal{
		supplierA: decimal.RequireFromString("12.00"),
		supplierB: decimal.RequireFromString("19.00"),
	}
	for _, order := range persisted {
		require.NotNil(t, order.SupplierID)
		assert.Equal(t, buyerID, order.BuyerID)
		assert.Equal(t, "cs_test_split", order.PaymentSessionID)
		assert.Equal(t, enums.OrderStatusPending, order.Status)
		assert.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
		assert.True(t, order.TotalAmount.Equal(totals[*order.SupplierID]),
			"total %s for supplier %s", order.TotalAmount, order.SupplierID)
	}

	var itemCount int64
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&itemCount).Error)
	assert.EqualValues(t, 2, itemCount)

	// Stock decremented per quantity.
	repo := products.NewRepository(db)
	gotA, err := repo.FindByID(ctx, productA.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, gotA.Stock)
	gotB, err := repo.FindByID(ctx, productB.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, gotB.Stock)

	require.Len(t, notifier.orders, 2)
	assert.Equal(t, "buyer@example.com", notifier.emails[0])
}

func TestHandleEventIsIdempotentPerSession(t *testing.T) {
	db := setupWebhookTestDB(t)
	svc := newWebhookService(t, db, nil)
	ctx := context.Background()

	supplier := uuid.New()
	product := mustSeedProduct(t, db, supplier, "4.00", 10)
	buyerID := uuid.New()

	items := []cart.Item{
		{ProductID: product.ID, SupplierID: &supplier, Name: product.Name, UnitPrice: product.Price, Quantity: 2},
	}
	metadata := snapshotMetadata(t, buyerID, "", items)

	require.NoError(t, svc.HandleEvent(ctx, buildSessionEvent(t, "cs_test_replay", metadata)))
	// Redelivery with a fresh event id but the same session.
	require.NoError(t, svc.HandleEvent(ctx, buildSessionEvent(t, "cs_test_replay", metadata)))

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	got, err := products.NewRepository(db).FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Stock, "stock decremented once")
}

func TestHandleEventOversellFloorsStockAtZero(t *testing.T) {
	db := setupWebhookTestDB(t)
	svc := newWebhookService(t, db, nil)
	ctx := context.Background()

	supplier := uuid.New()
	product := mustSeedProduct(t, db, supplier, "4.00", 1)
	items := []cart.Item{
		{ProductID: product.ID, SupplierID: &supplier, Name: product.Name, UnitPrice: product.Price, Quantity: 6},
	}
	event := buildSessionEvent(t, "cs_test_oversell", snapshotMetadata(t, uuid.New(), "", items))

	require.NoError(t, svc.HandleEvent(ctx, event))

	got, err := products.NewRepository(db).FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "order still materializes on oversell")
}

func TestHandleEventLegacyMetadataFallback(t *testing.T) {
	db := setupWebhookTestDB(t)
	svc := newWebhookService(t, db, nil)
	ctx := context.Background()

	supplier := uuid.New()
	product := mustSeedProduct(t, db, supplier, "15.00", 4)
	buyerID := uuid.New()

	event := buildSessionEvent(t, "cs_test_legacy", map[string]string{
		checkout.MetadataKeyBuyerID: buyerID.String(),
		"supplier_id":               supplier.String(),
		"supplier_name":             "Foothill Farms",
		"product_ids":               product.ID.String(),
	})

	require.NoError(t, svc.HandleEvent(ctx, event))

	var persisted []models.Order
	require.NoError(t, db.Find(&persisted).Error)
	require.Len(t, persisted, 1)
	require.NotNil(t, persisted[0].SupplierID)
	assert.Equal(t, supplier, *persisted[0].SupplierID)
	assert.True(t, persisted[0].TotalAmount.Equal(decimal.RequireFromString("15.00")))

	got, err := products.NewRepository(db).FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock, "legacy lines decrement a single unit")
}

func TestHandleEventIgnoresOtherEventTypes(t *testing.T) {
	db := setupWebhookTestDB(t)
	svc := newWebhookService(t, db, nil)

	event := &stripe.Event{
		Type: stripe.EventTypePaymentIntentSucceeded,
		Data: &stripe.EventData{Raw: []byte(`{}`)},
	}
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHandleEventUnreadableSnapshotIsAcked(t *testing.T) {
	db := setupWebhookTestDB(t)
	svc := newWebhookService(t, db, nil)

	event := buildSessionEvent(t, "cs_test_bad", map[string]string{
		checkout.MetadataKeyBuyerID: uuid.NewString(),
		"cart_version":              "2",
		"cart_chunks":               "1",
		"cart_0":                    "{not json",
	})
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}
