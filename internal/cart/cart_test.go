package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(supplier *uuid.UUID, price string, qty int) Item {
	return Item{
		ProductID:  uuid.New(),
		SupplierID: supplier,
		Name:       "crate of apples",
		UnitPrice:  decimal.RequireFromString(price),
		Quantity:   qty,
	}
}

func TestNormalizeCoercesInvalidValues(t *testing.T) {
	i := Item{UnitPrice: decimal.RequireFromString("-4.50"), Quantity: 0}
	i.Normalize()

	assert.True(t, i.UnitPrice.IsZero())
	assert.Equal(t, 1, i.Quantity)
}

func TestAddMergesExistingProductLine(t *testing.T) {
	line := item(nil, "2.00", 2)
	c := New([]Item{line})
	c.Add(Item{ProductID: line.ProductID, UnitPrice: line.UnitPrice, Quantity: 3})

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestSetQuantityNormalizes(t *testing.T) {
	line := item(nil, "2.00", 2)
	c := New([]Item{line})
	c.SetQuantity(line.ProductID, -7)

	assert.Equal(t, 1, c.Items()[0].Quantity)
}

func TestRemoveDropsLine(t *testing.T) {
	line := item(nil, "2.00", 2)
	c := New([]Item{line})
	c.Remove(line.ProductID)

	assert.True(t, c.IsEmpty())
}

func TestSubtotalSumsNormalizedLines(t *testing.T) {
	c := New([]Item{
		item(nil, "10.00", 2),
		item(nil, "5.00", 1),
	})

	assert.True(t, c.Subtotal().Equal(decimal.RequireFromString("25.00")))
}

func TestGroupBySupplierSplitsAndOrders(t *testing.T) {
	supplierA := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	supplierB := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	items := []Item{
		item(&supplierB, "5.00", 1),
		item(&supplierA, "10.00", 2),
		item(nil, "3.00", 1),
		item(&supplierA, "1.00", 4),
	}

	groups := GroupBySupplier(items)
	require.Len(t, groups, 3)

	require.NotNil(t, groups[0].SupplierID)
	assert.Equal(t, supplierA, *groups[0].SupplierID)
	assert.Len(t, groups[0].Items, 2)
	assert.True(t, groups[0].Subtotal.Equal(decimal.RequireFromString("24.00")))

	require.NotNil(t, groups[1].SupplierID)
	assert.Equal(t, supplierB, *groups[1].SupplierID)
	assert.True(t, groups[1].Subtotal.Equal(decimal.RequireFromString("5.00")))

	assert.Nil(t, groups[2].SupplierID, "unknown bucket must be last")
	assert.True(t, groups[2].Subtotal.Equal(decimal.RequireFromString("3.00")))
}

func TestGroupBySupplierCollapsesUnknownIntoOneBucket(t *testing.T) {
	groups := GroupBySupplier([]Item{
		item(nil, "1.00", 1),
		item(nil, "2.00", 1),
	})

	require.Len(t, groups, 1)
	assert.Nil(t, groups[0].SupplierID)
	assert.Len(t, groups[0].Items, 2)
}
