// Package pricing derives the displayed price for a catalog item from the
// effective role. The discounted price is what gets captured into a cart
// line, so a price is locked at add-to-cart time and is immune to later role
// or catalog changes until checkout.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/resellhub/storefront/internal/fault"
	"github.com/resellhub/storefront/internal/models"
)

// DiscountPercent returns the discount applied for a role. Admins do not
// purchase, so no discount semantics apply to them.
func DiscountPercent(role models.Role) int64 {
	switch role {
	case models.RoleAdmin:
		return 0
	case models.RolePremium:
		return 30
	default:
		return 10
	}
}

// Quote is a priced view of a catalog item. Base is kept alongside the
// final price for struck-through display whenever a discount applies.
type Quote struct {
	Base            string `json:"base"`
	Price           string `json:"price"`
	DiscountPercent int64  `json:"discountPercent"`
}

// DisplayPrice computes round2(base * (1 - discount/100)) with half-up
// rounding. The base price must be a decimal string.
func DisplayPrice(base string, role models.Role) (Quote, error) {
	p, err := decimal.NewFromString(base)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: bad base price %q", fault.ErrValidation, base)
	}

	pct := DiscountPercent(role)
	factor := decimal.NewFromInt(100 - pct).Div(decimal.NewFromInt(100))
	final := p.Mul(factor).Round(2)

	return Quote{
		Base:            p.StringFixed(2),
		Price:           final.StringFixed(2),
		DiscountPercent: pct,
	}, nil
}
