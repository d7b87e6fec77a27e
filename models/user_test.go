package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role    Role
		isAdmin bool
	}{
		{RoleCustomer, false},
		{RoleDoctor, false},
		{RoleInfluencer, false},
		{RoleAdmin, true},
		{RoleSuperAdmin, true},
		{Role("customer"), false},
		{Role("ADMIN"), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.isAdmin, tt.role.IsAdmin(), "role %q", tt.role)
		assert.Equal(t, tt.isAdmin, tt.role.CanManageOrders(), "role %q", tt.role)
		assert.Equal(t, tt.isAdmin, tt.role.CanManageUsers(), "role %q", tt.role)
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleCustomer.Valid())
	assert.True(t, RoleSuperAdmin.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("root").Valid())
}

func TestRoleForUserType(t *testing.T) {
	assert.Equal(t, RoleDoctor, RoleForUserType("doctor"))
	assert.Equal(t, RoleInfluencer, RoleForUserType("influencer"))
	assert.Equal(t, RoleAdmin, RoleForUserType("admin"))
	assert.Equal(t, RoleCustomer, RoleForUserType(""))
	assert.Equal(t, RoleCustomer, RoleForUserType("Doctor"))
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned,
		OrderStatusFailed,
	} {
		assert.True(t, s.Valid(), "status %q", s)
	}
	assert.False(t, OrderStatus("Completed").Valid())
	assert.False(t, OrderStatus("").Valid())
}
