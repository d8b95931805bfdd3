// Package cart implements the per-account shopping cart. Carts are keyed by
// the owning account id, or "guest" when no session exists, and the full
// snapshot is persisted on every mutation.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/resellhub/storefront/internal/models"
)

// GuestOwner keys the cart of an unauthenticated visitor.
const GuestOwner = "guest"

// Cart is the in-memory line-item collection. Lines are unique by item id;
// adding an existing id bumps the quantity instead of duplicating the row.
type Cart struct {
	Owner string
	Items []models.CartItem
}

func New(owner string) *Cart {
	if owner == "" {
		owner = GuestOwner
	}
	return &Cart{Owner: owner}
}

// Add appends a snapshot of a catalog item with quantity 1, or increments
// the quantity of the existing line with the same id.
func (c *Cart) Add(item models.CartItem) {
	for i := range c.Items {
		if c.Items[i].ID == item.ID {
			c.Items[i].Quantity++
			return
		}
	}
	item.Quantity = 1
	c.Items = append(c.Items, item)
}

// Remove deletes the line with the given id. Removing an id that is not in
// the cart is a no-op.
func (c *Cart) Remove(id int64) {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Items = nil
}

// Total is derived, never stored: sum of price*quantity over current lines.
// Lines with an unparseable price contribute nothing.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		p, err := decimal.NewFromString(it.Price)
		if err != nil {
			continue
		}
		total = total.Add(p.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Snapshot returns a deep copy of the current lines, safe to hand to the
// order lifecycle.
func (c *Cart) Snapshot() []models.CartItem {
	out := make([]models.CartItem, len(c.Items))
	copy(out, c.Items)
	return out
}
