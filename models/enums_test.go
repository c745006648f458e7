package models_test

import (
	"testing"

	"github.com/mmdatafocus/storefront_backend/models"
)

func TestOrderStatusTransitions(t *testing.T) {
	allowed := []struct {
		from models.OrderStatus
		to   models.OrderStatus
	}{
		{models.OrderStatusPending, models.OrderStatusConfirmed},
		{models.OrderStatusPending, models.OrderStatusCancelled},
		{models.OrderStatusConfirmed, models.OrderStatusShipped},
		{models.OrderStatusConfirmed, models.OrderStatusCancelled},
		{models.OrderStatusShipped, models.OrderStatusDelivered},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from models.OrderStatus
		to   models.OrderStatus
	}{
		{models.OrderStatusPending, models.OrderStatusShipped},
		{models.OrderStatusPending, models.OrderStatusDelivered},
		{models.OrderStatusShipped, models.OrderStatusCancelled},
		{models.OrderStatusDelivered, models.OrderStatusPending},
		{models.OrderStatusCancelled, models.OrderStatusConfirmed},
		{models.OrderStatusConfirmed, models.OrderStatusConfirmed},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be denied", tc.from, tc.to)
		}
	}
}

func TestParseEnums(t *testing.T) {
	if _, err := models.ParseOrderStatus("refunded"); err == nil {
		t.Error("ParseOrderStatus should reject a payment status value")
	}
	if s, err := models.ParseOrderStatus("confirmed"); err != nil || s != models.OrderStatusConfirmed {
		t.Errorf("ParseOrderStatus(confirmed) = (%v, %v)", s, err)
	}

	if _, err := models.ParseDiscountType("bogof"); err == nil {
		t.Error("ParseDiscountType should reject unknown types")
	}
	if d, err := models.ParseDiscountType("fixed"); err != nil || d != models.DiscountTypeFixed {
		t.Errorf("ParseDiscountType(fixed) = (%v, %v)", d, err)
	}

	if _, err := models.ParseUserRole("superuser"); err == nil {
		t.Error("ParseUserRole should reject unknown roles")
	}
	if r, err := models.ParseUserRole("owner"); err != nil || r != models.UserRoleOwner {
		t.Errorf("ParseUserRole(owner) = (%v, %v)", r, err)
	}

	if _, err := models.ParseProductStatus(""); err == nil {
		t.Error("ParseProductStatus should reject empty input")
	}
	if p, err := models.ParsePageStatus("published"); err != nil || p != models.PageStatusPublished {
		t.Errorf("ParsePageStatus(published) = (%v, %v)", p, err)
	}
}
