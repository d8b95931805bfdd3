// Package accounts is the document-store backed account repository. Accounts
// are keyed by the provider-issued id assigned at sign-up.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/resellhub/storefront/internal/fault"
	"github.com/resellhub/storefront/internal/models"
)

var ErrNotFound = errors.New("account not found")
var ErrEmailTaken = errors.New("email already registered")

const collectionName = "users"

type Repo struct {
	col *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{col: db.Collection(collectionName)}
}

func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *Repo) Create(ctx context.Context, acct *models.Account) error {
	count, err := r.col.CountDocuments(ctx, bson.M{"email": acct.Email})
	if err != nil {
		return fmt.Errorf("%w: check email: %v", fault.ErrUpstream, err)
	}
	if count > 0 {
		return ErrEmailTaken
	}

	acct.CreatedAt = time.Now().UTC()
	if _, err := r.col.InsertOne(ctx, acct); err != nil {
		return fmt.Errorf("%w: create account: %v", fault.ErrUpstream, err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var acct models.Account
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&acct)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get account: %v", fault.ErrUpstream, err)
	}
	return &acct, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var acct models.Account
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&acct)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get account: %v", fault.ErrUpstream, err)
	}
	return &acct, nil
}

// List returns every account, for the admin surface's eager read model.
func (r *Repo) List(ctx context.Context) ([]models.Account, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: list accounts: %v", fault.ErrUpstream, err)
	}
	defer cursor.Close(ctx)

	var accts []models.Account
	if err := cursor.All(ctx, &accts); err != nil {
		return nil, fmt.Errorf("%w: list accounts: %v", fault.ErrUpstream, err)
	}
	return accts, nil
}

// UpdateField writes a single status field on an account document. Only the
// fields the admin surface mutates are accepted.
func (r *Repo) UpdateField(ctx context.Context, id, field string, value any) error {
	switch field {
	case "role", "paymentStatus", "paymentIntentId":
	default:
		return fmt.Errorf("%w: field %q is not updatable", fault.ErrValidation, field)
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("%w: update account: %v", fault.ErrUpstream, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"passwordHash": passwordHash}})
	if err != nil {
		return fmt.Errorf("%w: update password: %v", fault.ErrUpstream, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
