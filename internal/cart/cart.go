package cart

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one client-held cart line. Carts live in the browser until
// checkout; the server only ever sees them as request payloads.
type Item struct {
	ProductID     uuid.UUID       `json:"product_id"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity"`
	ProducerLabel string          `json:"producer_label,omitempty"`
	ImageURL      string          `json:"image_url,omitempty"`
}

// Normalize coerces invalid quantity/price values to safe defaults.
func (i *Item) Normalize() {
	if i.Quantity < 1 {
		i.Quantity = 1
	}
	if i.UnitPrice.IsNegative() {
		i.UnitPrice = decimal.Zero
	}
}

// LineTotal is the normalized price × quantity for this line.
func (i Item) LineTotal() decimal.Decimal {
	qty := i.Quantity
	if qty < 1 {
		qty = 1
	}
	price := i.UnitPrice
	if price.IsNegative() {
		price = decimal.Zero
	}
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

// Cart aggregates line items and keeps them normalized across mutations.
type Cart struct {
	items []Item
}

// New builds a cart from the provided items, normalizing each.
func New(items []Item) *Cart {
	c := &Cart{}
	for _, item := range items {
		c.Add(item)
	}
	return c
}

// Add appends an item, merging quantity into an existing line for the
// same product.
func (c *Cart) Add(item Item) {
	item.Normalize()
	for idx := range c.items {
		if c.items[idx].ProductID == item.ProductID {
			c.items[idx].Quantity += item.Quantity
			return
		}
	}
	c.items = append(c.items, item)
}

// Remove drops the line for the given product, if present.
func (c *Cart) Remove(productID uuid.UUID) {
	for idx := range c.items {
		if c.items[idx].ProductID == productID {
			c.items = append(c.items[:idx], c.items[idx+1:]...)
			return
		}
	}
}

// SetQuantity replaces the quantity on an existing line, normalizing it.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) {
	for idx := range c.items {
		if c.items[idx].ProductID == productID {
			c.items[idx].Quantity = quantity
			c.items[idx].Normalize()
			return
		}
	}
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Subtotal sums every line total.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// SupplierGroup is the subset of items sharing one supplier. A nil
// SupplierID is the single "unknown supplier" bucket.
type SupplierGroup struct {
	SupplierID *uuid.UUID
	Items      []Item
	Subtotal   decimal.Decimal
}

// GroupBySupplier splits items into per-supplier groups. Groups are
// ordered by supplier id with the unknown bucket last, so downstream
// processing is deterministic.
func GroupBySupplier(items []Item) []SupplierGroup {
	grouped := make(map[uuid.UUID][]Item, len(items))
	var unknown []Item
	for _, item := range items {
		if item.SupplierID == nil {
			unknown = append(unknown, item)
			continue
		}
		grouped[*item.SupplierID] = append(grouped[*item.SupplierID], item)
	}

	supplierIDs := make([]uuid.UUID, 0, len(grouped))
	for id := range grouped {
		supplierIDs = append(supplierIDs, id)
	}
	sort.Slice(supplierIDs, func(i, j int) bool {
		return supplierIDs[i].String() < supplierIDs[j].String()
	})

	groups := make([]SupplierGroup, 0, len(supplierIDs)+1)
	for _, id := range supplierIDs {
		supplierID := id
		groups = append(groups, SupplierGroup{
			SupplierID: &supplierID,
			Items:      grouped[id],
			Subtotal:   sumLines(grouped[id]),
		})
	}
	if len(unknown) > 0 {
		groups = append(groups, SupplierGroup{
			Items:    unknown,
			Subtotal: sumLines(unknown),
		})
	}
	return groups
}

func sumLines(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
