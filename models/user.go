package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of account roles. Authorization checks go
// through the capability methods below instead of comparing role
// strings at call sites.
type Role string

const (
	RoleCustomer   Role = "Customer"
	RoleDoctor     Role = "Doctor"
	RoleInfluencer Role = "Influencer"
	RoleAdmin      Role = "Admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleDoctor, RoleInfluencer, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether the role carries admin privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// CanManageOrders gates order updates, soft deletes and admin reports.
func (r Role) CanManageOrders() bool {
	return r.IsAdmin()
}

// CanManageUsers gates the admin user directory endpoints.
func (r Role) CanManageUsers() bool {
	return r.IsAdmin()
}

// RoleForUserType maps the signup userType field to a role. Unknown
// values fall back to Customer.
func RoleForUserType(userType string) Role {
	switch userType {
	case "doctor":
		return RoleDoctor
	case "influencer":
		return RoleInfluencer
	case "admin":
		return RoleAdmin
	default:
		return RoleCustomer
	}
}

type Address struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type       string             `bson:"type" json:"type"` // shipping/billing
	Street     string             `bson:"street" json:"street"`
	City       string             `bson:"city" json:"city"`
	State      string             `bson:"state" json:"state"`
	Country    string             `bson:"country" json:"country"`
	PostalCode string             `bson:"postalCode" json:"postalCode"`
	IsDefault  bool               `bson:"isDefault" json:"isDefault"`
}

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName   string             `bson:"firstName" json:"firstName"`
	LastName    string             `bson:"lastName" json:"lastName"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password,omitempty" json:"-"`
	Phone       string             `bson:"phone" json:"phone"`
	Role        Role               `bson:"role" json:"role"`
	DateOfBirth time.Time          `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Bio         string             `bson:"bio,omitempty" json:"bio,omitempty"`
	ImageUrl    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
	City        string             `bson:"city,omitempty" json:"city,omitempty"`
	State       string             `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode     int                `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Addresses   []Address          `bson:"addresses" json:"addresses"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
