package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a recognized status value.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is a snapshot of product data frozen at purchase time. Later
// product mutations do not affect it.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
}

// ShippingAddress is the optional delivery destination of an order.
type ShippingAddress struct {
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// Order is a point-in-time purchase record. TotalAmount is computed
// server-side from the snapshot prices, never taken from the client.
type Order struct {
	ID              string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string           `json:"userId" gorm:"index;type:varchar(36)"`
	Email           string           `json:"email"`
	Items           []OrderItem      `json:"items" gorm:"serializer:json"`
	TotalAmount     float64          `json:"totalAmount"`
	Status          OrderStatus      `json:"status" gorm:"type:varchar(16);default:pending"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty" gorm:"serializer:json"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`

	// User is the purchaser summary attached to admin listings; never persisted.
	User *UserSummary `json:"user,omitempty" gorm:"-"`
}
