package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/resellhub/storefront/internal/fault"
	"github.com/resellhub/storefront/internal/models"
)

// Store persists cart snapshots, one row per owner key. Carts never merge
// across owners; switching accounts loads whatever was stored for the new
// key, defaulting to empty.
type Store struct {
	DB *gorm.DB
}

func (s *Store) Load(ctx context.Context, owner string) (*Cart, error) {
	c := New(owner)

	var snap models.CartSnapshot
	err := s.DB.WithContext(ctx).Where("owner_key = ?", ownerKey(c.Owner)).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load cart: %v", fault.ErrUpstream, err)
	}

	if err := json.Unmarshal([]byte(snap.Payload), &c.Items); err != nil {
		return nil, fmt.Errorf("%w: decode cart %s: %v", fault.ErrUpstream, c.Owner, err)
	}
	return c, nil
}

func (s *Store) Save(ctx context.Context, c *Cart) error {
	payload, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", c.Owner, err)
	}

	snap := models.CartSnapshot{OwnerKey: ownerKey(c.Owner), Payload: string(payload)}
	err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&snap).Error
	if err != nil {
		return fmt.Errorf("%w: save cart: %v", fault.ErrUpstream, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, owner string) error {
	c := New(owner)
	if err := s.DB.WithContext(ctx).Where("owner_key = ?", ownerKey(c.Owner)).Delete(&models.CartSnapshot{}).Error; err != nil {
		return fmt.Errorf("%w: clear cart: %v", fault.ErrUpstream, err)
	}
	return nil
}

// ownerKey namespaces snapshot rows the way the original client keyed its
// stored carts.
func ownerKey(owner string) string {
	return "cart_" + owner
}
