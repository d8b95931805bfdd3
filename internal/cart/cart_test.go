package cart

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/resellhub/storefront/internal/models"
)

func initTestStore(t *testing.T) *Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.CartSnapshot{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return &Store{DB: db}
}

func shirt() models.CartItem {
	return models.CartItem{ID: 42, Name: "Training Shirt", Price: "17.96", Image: "shirt.jpg"}
}

func TestAddCoalescesById(t *testing.T) {
	c := New("user-1")
	c.Add(shirt())
	c.Add(shirt())

	require.Len(t, c.Items, 1)
	require.Equal(t, 2, c.Items[0].Quantity)
}

func TestRemoveMissingIsNoOp(t *testing.T) {
	c := New("user-1")
	c.Add(shirt())

	c.Remove(999)
	require.Len(t, c.Items, 1)

	c.Remove(42)
	require.Empty(t, c.Items)
}

func TestTotalMatchesAccumulator(t *testing.T) {
	c := New("user-1")
	c.Add(models.CartItem{ID: 1, Name: "a", Price: "10.00"})
	c.Add(models.CartItem{ID: 2, Name: "b", Price: "2.50"})
	c.Add(models.CartItem{ID: 1, Name: "a", Price: "10.00"})
	c.Add(models.CartItem{ID: 3, Name: "c", Price: "0.99"})
	c.Remove(2)

	want := decimal.Zero
	for _, it := range c.Items {
		p, err := decimal.NewFromString(it.Price)
		require.NoError(t, err)
		want = want.Add(p.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	require.True(t, c.Total().Equal(want))
	require.Equal(t, "20.99", c.Total().StringFixed(2))
}

func TestServicePersistsEveryMutation(t *testing.T) {
	svc := &Service{Store: initTestStore(t)}
	ctx := context.Background()

	c, err := svc.AddItem(ctx, "user-1", shirt())
	require.NoError(t, err)
	require.Len(t, c.Items, 1)

	reloaded, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, c.Items, reloaded.Items)

	c, err = svc.RemoveItem(ctx, "user-1", 42)
	require.NoError(t, err)
	require.Empty(t, c.Items)

	reloaded, err = svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, reloaded.Items)
}

func TestCartsDoNotMergeAcrossOwners(t *testing.T) {
	svc := &Service{Store: initTestStore(t)}
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", shirt())
	require.NoError(t, err)

	guest, err := svc.Get(ctx, "")
	require.NoError(t, err)
	require.Equal(t, GuestOwner, guest.Owner)
	require.Empty(t, guest.Items)
}

func TestClearEmptiesPersistedCart(t *testing.T) {
	svc := &Service{Store: initTestStore(t)}
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", shirt())
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "user-1"))

	c, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, c.Items)
}
