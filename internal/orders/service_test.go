package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/resellhub/storefront/internal/cart"
	"github.com/resellhub/storefront/internal/fault"
	"github.com/resellhub/storefront/internal/models"
)

type fakeStore struct {
	orders    []models.Order
	failWrite bool
}

func (f *fakeStore) Create(_ context.Context, order *models.Order) error {
	if f.failWrite {
		return errors.New("store unavailable")
	}
	order.ID = "order-1"
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeStore) ListAll(context.Context) ([]models.Order, error) { return f.orders, nil }

func (f *fakeStore) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, orderID string, status models.OrderStatus) error {
	for i := range f.orders {
		if f.orders[i].ID == orderID {
			f.orders[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

type fakeCarts struct {
	cleared []string
}

func (f *fakeCarts) Clear(_ context.Context, owner string) error {
	f.cleared = append(f.cleared, owner)
	return nil
}

func testAccount() *models.Account {
	return &models.Account{ID: "acct-1", Email: "reseller@example.com", Role: models.RoleFree}
}

func testCart() *cart.Cart {
	c := cart.New("acct-1")
	c.Add(models.CartItem{ID: 1, Name: "Shirt", Price: "17.96"})
	c.Add(models.CartItem{ID: 1, Name: "Shirt", Price: "17.96"})
	c.Add(models.CartItem{ID: 2, Name: "Shorts", Price: "9.00"})
	return c
}

func TestPlaceOrder(t *testing.T) {
	store := &fakeStore{}
	carts := &fakeCarts{}
	svc := &Service{Store: store, Carts: carts}

	c := testCart()
	want := c.Snapshot()

	order, err := svc.Place(context.Background(), testAccount(), models.DeliveryInfo{
		Name: "Jo Reseller", Address: "1 High St", Phone: "07000000000",
	}, c)
	require.NoError(t, err)

	require.Len(t, store.orders, 1)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.Equal(t, want, order.Items)
	require.Equal(t, "44.92", order.Total)
	require.False(t, order.CreatedAt.IsZero())
	require.Equal(t, []string{"acct-1"}, carts.cleared)
}

func TestPlaceOrderRequiresSession(t *testing.T) {
	svc := &Service{Store: &fakeStore{}, Carts: &fakeCarts{}}
	_, err := svc.Place(context.Background(), nil, models.DeliveryInfo{
		Name: "Jo", Address: "1 High St", Phone: "07000000000",
	}, testCart())
	require.ErrorIs(t, err, fault.ErrNotAuthenticated)
}

func TestPlaceOrderValidatesDeliveryInfo(t *testing.T) {
	store := &fakeStore{}
	carts := &fakeCarts{}
	svc := &Service{Store: store, Carts: carts}

	for _, info := range []models.DeliveryInfo{
		{Address: "1 High St", Phone: "07000000000"},
		{Name: "Jo", Phone: "07000000000"},
		{Name: "Jo", Address: "1 High St"},
		{Name: "  ", Address: "1 High St", Phone: "07000000000"},
	} {
		_, err := svc.Place(context.Background(), testAccount(), info, testCart())
		require.ErrorIs(t, err, fault.ErrValidation)
	}
	require.Empty(t, store.orders)
	require.Empty(t, carts.cleared)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	svc := &Service{Store: &fakeStore{}, Carts: &fakeCarts{}}
	_, err := svc.Place(context.Background(), testAccount(), models.DeliveryInfo{
		Name: "Jo", Address: "1 High St", Phone: "07000000000",
	}, cart.New("acct-1"))
	require.ErrorIs(t, err, fault.ErrValidation)
}

func TestPlaceOrderFailedWriteKeepsCart(t *testing.T) {
	store := &fakeStore{failWrite: true}
	carts := &fakeCarts{}
	svc := &Service{Store: store, Carts: carts}

	c := testCart()
	_, err := svc.Place(context.Background(), testAccount(), models.DeliveryInfo{
		Name: "Jo", Address: "1 High St", Phone: "07000000000",
	}, c)
	require.Error(t, err)
	require.Empty(t, store.orders)
	require.Empty(t, carts.cleared)
	require.Len(t, c.Items, 2)
}

func TestPlacedOrderIsSnapshot(t *testing.T) {
	store := &fakeStore{}
	svc := &Service{Store: store, Carts: &fakeCarts{}}

	c := testCart()
	order, err := svc.Place(context.Background(), testAccount(), models.DeliveryInfo{
		Name: "Jo", Address: "1 High St", Phone: "07000000000",
	}, c)
	require.NoError(t, err)

	c.Items[0].Quantity = 99
	require.Equal(t, 2, order.Items[0].Quantity)
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	store := &fakeStore{orders: []models.Order{{ID: "order-1", Status: models.OrderStatusPending}}}
	svc := &Service{Store: store, Carts: &fakeCarts{}}

	for _, role := range []models.Role{models.RoleFree, models.RolePremium, ""} {
		err := svc.UpdateStatus(context.Background(), "order-1", models.OrderStatusDone, role)
		require.ErrorIs(t, err, fault.ErrPermissionDenied)
	}
	require.Equal(t, models.OrderStatusPending, store.orders[0].Status)

	require.NoError(t, svc.UpdateStatus(context.Background(), "order-1", models.OrderStatusDone, models.RoleAdmin))
	require.Equal(t, models.OrderStatusDone, store.orders[0].Status)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	store := &fakeStore{orders: []models.Order{{ID: "order-1", Status: models.OrderStatusPending}}}
	svc := &Service{Store: store, Carts: &fakeCarts{}}

	err := svc.UpdateStatus(context.Background(), "order-1", models.OrderStatus("Shipped"), models.RoleAdmin)
	require.ErrorIs(t, err, fault.ErrValidation)
	require.Equal(t, models.OrderStatusPending, store.orders[0].Status)
}
