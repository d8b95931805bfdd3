package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleFree    Role = "free"
	RolePremium Role = "premium"
	RoleAdmin   Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleFree, RolePremium, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

const PaymentCompleted = "completed"

// Account is a user document in the account store. The ID is issued once at
// sign-up and never changes.
type Account struct {
	ID              string    `bson:"_id"                       json:"id"`
	Email           string    `bson:"email"                     json:"email"`
	PasswordHash    string    `bson:"passwordHash"              json:"-"`
	FirstName       string    `bson:"firstName,omitempty"       json:"firstName,omitempty"`
	LastName        string    `bson:"lastName,omitempty"        json:"lastName,omitempty"`
	PhoneNumber     string    `bson:"phoneNumber,omitempty"     json:"phoneNumber,omitempty"`
	Role            Role      `bson:"role"                      json:"role"`
	PaymentStatus   string    `bson:"paymentStatus,omitempty"   json:"paymentStatus,omitempty"`
	PaymentIntentID string    `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time `bson:"createdAt"                 json:"createdAt"`
}

func (a *Account) DisplayName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// CatalogItem is owned by the external catalog and never persisted here
// except as cart/order snapshots.
type CatalogItem struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Images      []string `json:"images"`
	Description string   `json:"description"`
}

// CartItem carries the already-discounted price captured at add-to-cart
// time, as a decimal string. Lines are unique by ID within a cart.
type CartItem struct {
	ID       int64  `bson:"id"       json:"id"`
	Name     string `bson:"name"     json:"name"`
	Price    string `bson:"price"    json:"price"`
	Image    string `bson:"image"    json:"image"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusDone      OrderStatus = "Done"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusDelivered, OrderStatusDone:
		return OrderStatus(s), true
	}
	return "", false
}

type DeliveryInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Order is an immutable snapshot except for Status. Total is computed once
// at checkout and never recalculated from the items.
type Order struct {
	ID        string      `bson:"_id,omitempty" json:"id"`
	UserID    string      `bson:"userId"        json:"userId"`
	Name      string      `bson:"name"          json:"name"`
	Address   string      `bson:"address"       json:"address"`
	Phone     string      `bson:"phone"         json:"phone"`
	Items     []CartItem  `bson:"items"         json:"items"`
	Total     string      `bson:"total"         json:"total"`
	Status    OrderStatus `bson:"status"        json:"status"`
	CreatedAt time.Time   `bson:"createdAt"     json:"createdAt"`
}

// RefreshToken rows back the identity service's rotating refresh tokens.
type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    string `gorm:"index;not null"  json:"user_id"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

// CartSnapshot is the persisted form of a cart, one row per owner key.
type CartSnapshot struct {
	OwnerKey  string    `gorm:"primaryKey" json:"owner_key"`
	Payload   string    `gorm:"not null"   json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
}
