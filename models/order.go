package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is a plain label on the order, not a managed state
// machine. Admins may set any value from the set below.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
	OrderStatusReturned   OrderStatus = "Returned"
	OrderStatusFailed     OrderStatus = "Failed"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned,
		OrderStatusFailed:
		return true
	}
	return false
}

// PaymentStatus tracks payment independently of the fulfilment status.
type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusUnpaid   PaymentStatus = "Unpaid"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

type OrderItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
}

type ShippingAddress struct {
	Street     string `bson:"street" json:"street"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	Country    string `bson:"country" json:"country"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
}

// Order is one purchase transaction. The owner and the financial
// fields are fixed at creation; updates only touch status/tracking
// fields. Orders are never removed, only soft-deleted.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber     string             `bson:"orderNumber" json:"orderNumber"`
	User            primitive.ObjectID `bson:"user" json:"user"`
	Items           []OrderItem        `bson:"items" json:"items"`
	Subtotal        float64            `bson:"subtotal" json:"subtotal"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	Status          OrderStatus        `bson:"status" json:"status"`
	PaymentStatus   PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	TrackingNumber  string             `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	IsDeleted       bool               `bson:"isDeleted" json:"isDeleted"`
	DeletedAt       *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	DeletedBy       primitive.ObjectID `bson:"deletedBy,omitempty" json:"deletedBy,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
