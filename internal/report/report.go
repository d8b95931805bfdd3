// Package report is the admin back-office read model: eager snapshots of the
// account and order collections with derived counters and tabular exports.
package report

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/resellhub/storefront/internal/models"
)

type AccountLister interface {
	List(ctx context.Context) ([]models.Account, error)
}

type OrderLister interface {
	ListAll(ctx context.Context) ([]models.Order, error)
}

type Service struct {
	Accounts AccountLister
	Orders   OrderLister
}

// Snapshot is the eagerly loaded admin view: both collections read once on
// entry, orders newest first.
type Snapshot struct {
	Accounts []models.Account `json:"accounts"`
	Orders   []models.Order   `json:"orders"`
}

func (s *Service) Load(ctx context.Context) (*Snapshot, error) {
	accts, err := s.Accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.Orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Accounts: accts, Orders: orders}, nil
}

// Summary counters are derived from the loaded collections on every call,
// never cached separately.
type Summary struct {
	TotalOrders   int    `json:"totalOrders"`
	TotalAccounts int    `json:"totalAccounts"`
	TotalRevenue  string `json:"totalRevenue"`
	TotalPremium  int    `json:"totalPremium"`
}

func (s *Snapshot) Summarize() Summary {
	revenue := decimal.Zero
	for _, o := range s.Orders {
		if t, err := decimal.NewFromString(o.Total); err == nil {
			revenue = revenue.Add(t)
		}
	}

	premium := 0
	for _, a := range s.Accounts {
		if a.Role == models.RolePremium {
			premium++
		}
	}

	return Summary{
		TotalOrders:   len(s.Orders),
		TotalAccounts: len(s.Accounts),
		TotalRevenue:  revenue.StringFixed(2),
		TotalPremium:  premium,
	}
}

// FilterAccounts applies the role filter to the already-loaded set. An
// unknown or "all" filter returns everything.
func FilterAccounts(accts []models.Account, filter string) []models.Account {
	role, ok := models.ParseRole(filter)
	if !ok {
		return accts
	}
	out := make([]models.Account, 0, len(accts))
	for _, a := range accts {
		if a.Role == role {
			out = append(out, a)
		}
	}
	return out
}
