package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/resellhub/storefront/internal/cart"
	"github.com/resellhub/storefront/internal/fault"
	"github.com/resellhub/storefront/internal/logging"
	"github.com/resellhub/storefront/internal/models"
)

type Store interface {
	Create(ctx context.Context, order *models.Order) error
	ListAll(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error
}

type CartClearer interface {
	Clear(ctx context.Context, owner string) error
}

type Publisher interface {
	Publish(ctx context.Context, key string, event map[string]any) error
}

type Recorder interface {
	RecordOrderPlaced(total string)
	RecordStatusChange(status string)
}

type Service struct {
	Store   Store
	Carts   CartClearer
	Events  Publisher
	Metrics Recorder
}

// Place writes a new order from the cart snapshot. The cart is only cleared
// after the write is durable; a failed write leaves it untouched. Clearing
// is best effort once the order exists.
func (s *Service) Place(ctx context.Context, acct *models.Account, info models.DeliveryInfo, c *cart.Cart) (*models.Order, error) {
	if acct == nil {
		return nil, fmt.Errorf("%w: checkout requires a signed-in account", fault.ErrNotAuthenticated)
	}
	if strings.TrimSpace(info.Name) == "" || strings.TrimSpace(info.Address) == "" || strings.TrimSpace(info.Phone) == "" {
		return nil, fmt.Errorf("%w: name, address and phone are required", fault.ErrValidation)
	}
	if len(c.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", fault.ErrValidation)
	}

	order := &models.Order{
		UserID:    acct.ID,
		Name:      info.Name,
		Address:   info.Address,
		Phone:     info.Phone,
		Items:     c.Snapshot(),
		Total:     c.Total().StringFixed(2),
		Status:    models.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.Store.Create(ctx, order); err != nil {
		return nil, err
	}

	l := logging.FromContext(ctx).With("order_id", order.ID, "user_id", acct.ID)

	if err := s.Carts.Clear(ctx, c.Owner); err != nil {
		l.Warn("cart clear after checkout failed", "error", err)
	}
	if s.Metrics != nil {
		s.Metrics.RecordOrderPlaced(order.Total)
	}
	s.publish(ctx, acct.ID, map[string]any{
		"type":    "order_placed",
		"orderID": order.ID,
		"userID":  acct.ID,
		"total":   order.Total,
	})

	l.Info("order placed", "total", order.Total, "items", len(order.Items))
	return order, nil
}

// UpdateStatus lets an admin set any of the three statuses in any order;
// progression is deliberately not enforced.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus, actor models.Role) error {
	if actor != models.RoleAdmin {
		return fmt.Errorf("%w: only admins may change order status", fault.ErrPermissionDenied)
	}
	if _, ok := models.ParseOrderStatus(string(status)); !ok {
		return fmt.Errorf("%w: unknown status %q", fault.ErrValidation, status)
	}

	if err := s.Store.UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}
	if s.Metrics != nil {
		s.Metrics.RecordStatusChange(string(status))
	}
	s.publish(ctx, orderID, map[string]any{
		"type":    "order_status_changed",
		"orderID": orderID,
		"status":  status,
	})
	return nil
}

func (s *Service) History(ctx context.Context, userID string) ([]models.Order, error) {
	return s.Store.ListByUser(ctx, userID)
}

func (s *Service) All(ctx context.Context) ([]models.Order, error) {
	return s.Store.ListAll(ctx)
}

func (s *Service) publish(ctx context.Context, key string, event map[string]any) {
	if s.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Events.Publish(ctx, key, event); err != nil {
		logging.FromContext(ctx).Error("event publish failed", "error", err)
	}
}
