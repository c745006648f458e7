package main

import (
	"errors"
	"testing"

	"github.com/mmdatafocus/storefront_backend/models"
)

func TestGroupActivityRefs(t *testing.T) {
	edge := func(refType string, refId int) *models.ActivitiesEdge {
		return &models.ActivitiesEdge{Node: &models.ActivityRecord{ReferenceType: refType, ReferenceID: refId}}
	}
	edges := []*models.ActivitiesEdge{
		edge("products", 3),
		edge("orders", 7),
		edge("products", 5),
		edge("", 9),
		edge("customers", 0),
	}

	got := groupActivityRefs(edges)

	if len(got) != 2 {
		t.Fatalf("grouped types = %d, want 2", len(got))
	}
	if idx := got["products"]; len(idx) != 2 || idx[0] != 0 || idx[1] != 2 {
		t.Errorf("products indexes = %v, want [0 2]", idx)
	}
	if idx := got["orders"]; len(idx) != 1 || idx[0] != 1 {
		t.Errorf("orders indexes = %v, want [1]", idx)
	}
	if _, ok := got["customers"]; ok {
		t.Error("zero reference id should not be grouped")
	}
}

func TestFirstLoaderErr(t *testing.T) {
	if err := firstLoaderErr([]error{nil, nil}); err != nil {
		t.Errorf("all nil = %v, want nil", err)
	}
	boom := errors.New("boom")
	if err := firstLoaderErr([]error{nil, boom, errors.New("later")}); err != boom {
		t.Errorf("first error = %v, want boom", err)
	}
}
