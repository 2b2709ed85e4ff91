// Package cart is the client-held cart state machine: a pure function
// of prior state with no storage or network behind it. The server only
// ever prices a cart it is handed.
package cart

import "github.com/shopspring/decimal"

type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Qty       int     `json:"qty"`
}

type Cart struct {
	items []Item
}

func New() *Cart { return &Cart{} }

// FromItems builds a cart from an existing line set, clamping
// quantities to at least 1.
func FromItems(items []Item) *Cart {
	c := New()
	for _, it := range items {
		c.Add(it, it.Qty)
	}
	return c
}

// Add merges qty into an existing line when the product id matches,
// otherwise appends a new line.
func (c *Cart) Add(it Item, qty int) {
	if qty < 1 {
		qty = 1
	}
	for i := range c.items {
		if c.items[i].ProductID == it.ProductID {
			c.items[i].Qty += qty
			return
		}
	}
	it.Qty = qty
	c.items = append(c.items, it)
}

func (c *Cart) Increase(productID string) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Qty++
			return
		}
	}
}

// Decrease floors at 1; it never removes a line.
func (c *Cart) Decrease(productID string) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			if c.items[i].Qty > 1 {
				c.items[i].Qty--
			}
			return
		}
	}
}

func (c *Cart) Remove(productID string) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() { c.items = nil }

// Items returns a copy of the current lines.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int { return len(c.items) }

// Totals is a priced view of a cart at one tax rate and delivery fee.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Delivery float64 `json:"delivery"`
	Total    float64 `json:"total"`
}

// Totals recomputes from the current line set on every call; nothing
// is cached. Arithmetic runs in decimals so 0.1-style float noise
// never reaches the totals.
func (c *Cart) Totals(taxRate, deliveryFee float64) Totals {
	sub := decimal.Zero
	for _, it := range c.items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Qty)))
		sub = sub.Add(line)
	}
	tax := sub.Mul(decimal.NewFromFloat(taxRate)).Round(2)
	del := decimal.NewFromFloat(deliveryFee)
	if sub.IsZero() {
		del = decimal.Zero
	}
	total := sub.Add(tax).Add(del)

	return Totals{
		Subtotal: sub.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Delivery: del.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}
