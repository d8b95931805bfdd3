package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/resellhub/storefront/internal/models"
)

type fixedAccounts []models.Account

func (f fixedAccounts) List(context.Context) ([]models.Account, error) { return f, nil }

type fixedOrders []models.Order

func (f fixedOrders) ListAll(context.Context) ([]models.Order, error) { return f, nil }

func ts(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleAccounts() []models.Account {
	return []models.Account{
		{
			ID: "u1", Email: "ann@example.com", FirstName: "Ann", LastName: "Smith",
			Role: models.RolePremium, CreatedAt: ts("2024-03-01"),
		},
		{
			ID: "u2", Email: "bob@example.com", FirstName: "Bob",
			Role: models.RoleFree,
		},
	}
}

func sampleOrders() []models.Order {
	return []models.Order{
		{
			ID: "ord-2", UserID: "u1", Name: "Ann Smith", Total: "70.00",
			Status: models.OrderStatusDelivered, CreatedAt: ts("2024-04-02"),
			Items: []models.CartItem{
				{ID: 1, Name: "Training Shirt", Quantity: 2},
				{ID: 2, Name: `Hoodie "Pro"`, Quantity: 1},
			},
		},
		{
			ID: "ord-1", UserID: "u2", Total: "9.00",
			CreatedAt: ts("2024-04-01"),
			Items:     []models.CartItem{{ID: 3, Name: "Socks", Quantity: 1}},
		},
	}
}

func TestSummarize(t *testing.T) {
	svc := &Service{Accounts: fixedAccounts(sampleAccounts()), Orders: fixedOrders(sampleOrders())}
	snap, err := svc.Load(context.Background())
	require.NoError(t, err)

	sum := snap.Summarize()
	require.Equal(t, 2, sum.TotalOrders)
	require.Equal(t, 2, sum.TotalAccounts)
	require.Equal(t, "79.00", sum.TotalRevenue)
	require.Equal(t, 1, sum.TotalPremium)
}

func TestFilterAccounts(t *testing.T) {
	accts := sampleAccounts()

	require.Len(t, FilterAccounts(accts, "all"), 2)
	require.Len(t, FilterAccounts(accts, ""), 2)

	premium := FilterAccounts(accts, "premium")
	require.Len(t, premium, 1)
	require.Equal(t, "u1", premium[0].ID)

	require.Empty(t, FilterAccounts(accts, "admin"))
}

func TestAccountsCSVByteExact(t *testing.T) {
	got := AccountsCSV(sampleAccounts())
	want := `"Name","Email","Role","Registered"` + "\r\n" +
		`"Ann Smith","ann@example.com","premium","2024-03-01"` + "\r\n" +
		`"Bob","bob@example.com","free","-"`
	require.Equal(t, want, got)
}

func TestOrdersCSVQuotingAndColumns(t *testing.T) {
	got := OrdersCSV(sampleOrders())
	want := `"Order ID","User","Total (£)","Date","Status","Products"` + "\r\n" +
		`"ord-2","Ann Smith","70.00","2024-04-02","Completed","Training Shirt (x2); Hoodie ""Pro"" (x1)"` + "\r\n" +
		`"ord-1","u2","9.00","2024-04-01","Completed","Socks (x1)"`
	require.Equal(t, want, got)
}

func TestHistoryCSVDefaultsPendingStatus(t *testing.T) {
	got := HistoryCSV(sampleOrders())
	want := `"Order ID","Date","Total (£)","Status","Products"` + "\r\n" +
		`"ord-2","2024-04-02","70.00","Delivered","Training Shirt (x2); Hoodie ""Pro"" (x1)"` + "\r\n" +
		`"ord-1","2024-04-01","9.00","Pending","Socks (x1)"`
	require.Equal(t, want, got)
}
