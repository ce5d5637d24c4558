package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, OrderStatusPending.Valid())
	assert.True(t, OrderStatusCompleted.Valid())
	assert.True(t, OrderStatusCancelled.Valid())
	assert.False(t, OrderStatus("shipped").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestOrderItem_Subtotal(t *testing.T) {
	item := OrderItem{Quantity: 3, Price: decimal.RequireFromString("10.25")}

	assert.True(t, decimal.RequireFromString("30.75").Equal(item.Subtotal()))
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleCashier.Valid())
	assert.False(t, Role("manager").Valid())
}
