// Package cart is the in-memory checkout basket: products in the order they
// were first added, with the price captured at add time.
package cart

import (
	"pdv/m/domain"
	"pdv/m/internal/money"
)

type Line struct {
	ProductID int64
	Name      string
	UnitPrice int64
	Quantity  int64
}

func (l Line) Total() int64 {
	return money.Multiply(l.UnitPrice, l.Quantity)
}

type Cart struct {
	order []int64
	lines map[int64]*Line
}

func New() *Cart {
	return &Cart{lines: make(map[int64]*Line)}
}

// AddItem adds one unit of p. A product already in the cart keeps the price
// it had when first added.
func (c *Cart) AddItem(p domain.Product) {
	if l, ok := c.lines[p.ID]; ok {
		l.Quantity++
		return
	}
	c.order = append(c.order, p.ID)
	c.lines[p.ID] = &Line{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price, Quantity: 1}
}

// SetQuantity replaces the quantity of a product already in the cart;
// quantity <= 0 removes it.
func (c *Cart) SetQuantity(productID, quantity int64) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	if l, ok := c.lines[productID]; ok {
		l.Quantity = quantity
	}
}

func (c *Cart) RemoveItem(productID int64) {
	if _, ok := c.lines[productID]; !ok {
		return
	}
	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cart) Total() int64 {
	totals := make([]int64, 0, len(c.order))
	for _, id := range c.order {
		totals = append(totals, c.lines[id].Total())
	}
	return money.Sum(totals...)
}

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

func (c *Cart) Len() int { return len(c.order) }

// Clear empties the cart after a successful checkout or a cancellation.
func (c *Cart) Clear() {
	c.order = nil
	c.lines = make(map[int64]*Line)
}
