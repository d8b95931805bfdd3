package cart

import (
	"context"

	"github.com/resellhub/storefront/internal/models"
)

// Service wraps the aggregate with its persistence contract: every mutation
// writes the full snapshot back under the owner key.
type Service struct {
	Store *Store
}

func (s *Service) Get(ctx context.Context, owner string) (*Cart, error) {
	return s.Store.Load(ctx, owner)
}

func (s *Service) AddItem(ctx context.Context, owner string, item models.CartItem) (*Cart, error) {
	c, err := s.Store.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	c.Add(item)
	if err := s.Store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) RemoveItem(ctx context.Context, owner string, id int64) (*Cart, error) {
	c, err := s.Store.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	c.Remove(id)
	if err := s.Store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Clear(ctx context.Context, owner string) error {
	return s.Store.Clear(ctx, owner)
}
