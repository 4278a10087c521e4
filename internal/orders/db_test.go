package orders

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/localmarket-hq/localmarket-backend/pkg/db/models"
	"github.com/localmarket-hq/localmarket-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ordersDDL := `
CREATE TABLE IF NOT EXISTS orders (
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
);`
	itemsDDL := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  producer_label TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL,
  price_at_purchase NUMERIC NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ordersDDL).Error)
	require.NoError(t, db.Exec(itemsDDL).Error)
	return db
}

func mustCreateTestOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus) *models.Order {
	t.Helper()
	supplier := uuid.New()
	order := &models.Order{
		ID:               uuid.New(),
		BuyerID:          uuid.New(),
		SupplierID:       &supplier,
		PaymentSessionID: "cs_test_" + uuid.NewString(),
		TotalAmount:      decimal.RequireFromString("25.50"),
		Status:           status,
		PaymentTerm:      enums.PaymentTermPayNow,
		PaymentStatus:    enums.PaymentStatusPaid,
	}
	require.NoError(t, db.Omit("Items").Create(order).Error)

	item := models.OrderItem{
		ID:              uuid.New(),
		OrderID:         order.ID,
		ProductID:       uuid.New(),
		Name:            "Raw Honey 500g",
		ProducerLabel:   "Hilltop Coop",
		Quantity:        2,
		PriceAtPurchase: decimal.RequireFromString("12.75"),
	}
	require.NoError(t, db.Create(&item).Error)
	order.Items = []models.OrderItem{item}
	return order
}
