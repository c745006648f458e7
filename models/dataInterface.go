package models

import (
	"time"

	"github.com/mmdatafocus/storefront_backend/utils"
)

type Identifier interface {
	GetId() int
}

// interface for dataloader result
type Data interface {
	Identifier
	GetDefault(int) Data
}

// key
func (p Product) GetId() int {
	return p.ID
}

func (p Product) GetDefault(id int) Data {
	return Product{
		ID:         id,
		Status:     ProductStatusDraft,
		TrackStock: utils.NewTrue(),
		IsActive:   utils.NewFalse(),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func (pc ProductCategory) GetId() int {
	return pc.ID
}

func (pc ProductCategory) GetDefault(id int) Data {
	return ProductCategory{
		ID:        id,
		IsActive:  utils.NewFalse(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (c Customer) GetId() int {
	return c.ID
}

func (c Customer) GetDefault(id int) Data {
	return Customer{
		ID:        id,
		IsActive:  utils.NewFalse(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (d Discount) GetId() int {
	return d.ID
}

func (d Discount) GetDefault(id int) Data {
	return Discount{
		ID:        id,
		Type:      DiscountTypePercentage,
		IsActive:  utils.NewFalse(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (o Order) GetId() int {
	return o.ID
}

func (o Order) GetDefault(id int) Data {
	return Order{
		ID:            id,
		Status:        OrderStatusPending,
		PaymentStatus: PaymentStatusUnpaid,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func (p Page) GetId() int {
	return p.ID
}

func (p Page) GetDefault(id int) Data {
	return Page{
		ID:         id,
		Status:     PageStatusDraft,
		IsHomePage: utils.NewFalse(),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func (v VoucherCode) GetId() int {
	return v.ID
}

func (u User) GetId() int {
	return u.ID
}

func (c Cart) GetId() int {
	return c.ID
}

// loader loading more than one model by one id
type RelatedData interface {
	GetReferenceId() int
}

func (i Image) GetReferenceId() int {
	return i.ReferenceID
}

func (ci CartItem) GetReferenceId() int {
	return ci.CartId
}

func (oi OrderItem) GetReferenceId() int {
	return oi.OrderId
}

func (ps PageSection) GetReferenceId() int {
	return ps.PageId
}

func (sr ShippingRate) GetReferenceId() int {
	return sr.ShippingZoneId
}
