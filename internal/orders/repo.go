// Package orders owns the order lifecycle: the transition from cart contents
// to a persisted order document and the admin-driven status progression.
package orders

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resellhub/storefront/internal/fault"
	"github.com/resellhub/storefront/internal/models"
)

var ErrNotFound = errors.New("order not found")

const collectionName = "orders"

type Repo struct {
	col *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{col: db.Collection(collectionName)}
}

func (r *Repo) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.col.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("%w: create order: %v", fault.ErrUpstream, err)
	}
	return nil
}

// ListAll returns every order, newest first, for the admin read model.
func (r *Repo) ListAll(ctx context.Context) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", fault.ErrUpstream, err)
	}
	defer cursor.Close(ctx)

	var out []models.Order
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", fault.ErrUpstream, err)
	}
	return out, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", fault.ErrUpstream, err)
	}
	defer cursor.Close(ctx)

	var out []models.Order
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", fault.ErrUpstream, err)
	}
	return out, nil
}

// UpdateStatus writes only the status field. Last write wins; there is no
// version check between concurrent admins.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("%w: update status: %v", fault.ErrUpstream, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
