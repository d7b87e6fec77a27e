package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wishlist holds the products a user has saved. One document per user.
type Wishlist struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID   `bson:"user" json:"user"`
	Products  []primitive.ObjectID `bson:"products" json:"products"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}
