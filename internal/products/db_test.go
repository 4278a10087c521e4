package products

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/localmarket-hq/localmarket-backend/pkg/db/models"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS products (
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
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func mustCreateTestProduct(t *testing.T, db *gorm.DB, supplierID uuid.UUID, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:            uuid.New(),
		SupplierID:    supplierID,
		Name:          fmt.Sprintf("Test Product %s", uuid.NewString()[:8]),
		Category:      "produce",
		Tags:          pq.StringArray{"organic"},
		ProducerLabel: "Foothill Farms",
		Price:         decimal.RequireFromString("4.25"),
		Stock:         stock,
		IsActive:      true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}
