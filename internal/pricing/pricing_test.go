package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/resellhub/storefront/internal/fault"
	"github.com/resellhub/storefront/internal/models"
)

func TestDisplayPriceTable(t *testing.T) {
	cases := []struct {
		name  string
		role  models.Role
		base  string
		price string
		pct   int64
	}{
		{"admin no discount", models.RoleAdmin, "100.00", "100.00", 0},
		{"premium 30", models.RolePremium, "100.00", "70.00", 30},
		{"free 10", models.RoleFree, "100.00", "90.00", 10},
		{"anonymous treated as free", models.Role(""), "100.00", "90.00", 10},
		{"premium rounds half up", models.RolePremium, "9.99", "6.99", 30},
		{"free rounds half up", models.RoleFree, "0.05", "0.05", 10},
		{"free on odd cents", models.RoleFree, "19.95", "17.96", 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := DisplayPrice(tc.base, tc.role)
			require.NoError(t, err)
			require.Equal(t, tc.price, q.Price)
			require.Equal(t, tc.pct, q.DiscountPercent)
		})
	}
}

func TestDisplayPriceKeepsBase(t *testing.T) {
	q, err := DisplayPrice("45.5", models.RolePremium)
	require.NoError(t, err)
	require.Equal(t, "45.50", q.Base)
	require.Equal(t, "31.85", q.Price)
}

func TestDisplayPriceBadInput(t *testing.T) {
	_, err := DisplayPrice("not-a-price", models.RoleFree)
	require.ErrorIs(t, err, fault.ErrValidation)
}
