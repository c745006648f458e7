package models

import "errors"

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// convert input to enum type
func ParseDiscountType(s string) (DiscountType, error) {
	switch s {
	case "percentage":
		return DiscountTypePercentage, nil
	case "fixed":
		return DiscountTypeFixed, nil
	default:
		return "", errors.New("invalid discount type")
	}
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch s {
	case "pending":
		return OrderStatusPending, nil
	case "confirmed":
		return OrderStatusConfirmed, nil
	case "shipped":
		return OrderStatusShipped, nil
	case "delivered":
		return OrderStatusDelivered, nil
	case "cancelled":
		return OrderStatusCancelled, nil
	default:
		return "", errors.New("invalid order status")
	}
}

// orderStatusTransitions lists the allowed next statuses for each status.
// Terminal statuses have no entries.
var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch s {
	case "unpaid":
		return PaymentStatusUnpaid, nil
	case "paid":
		return PaymentStatusPaid, nil
	case "refunded":
		return PaymentStatusRefunded, nil
	default:
		return "", errors.New("invalid payment status")
	}
}

type CartStatus string

const (
	CartStatusActive     CartStatus = "active"
	CartStatusCheckedOut CartStatus = "checked_out"
	CartStatusAbandoned  CartStatus = "abandoned"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusArchived ProductStatus = "archived"
)

func ParseProductStatus(s string) (ProductStatus, error) {
	switch s {
	case "active":
		return ProductStatusActive, nil
	case "draft":
		return ProductStatusDraft, nil
	case "archived":
		return ProductStatusArchived, nil
	default:
		return "", errors.New("invalid product status")
	}
}

type PageStatus string

const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "published"
)

func ParsePageStatus(s string) (PageStatus, error) {
	switch s {
	case "draft":
		return PageStatusDraft, nil
	case "published":
		return PageStatusPublished, nil
	default:
		return "", errors.New("invalid page status")
	}
}

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleOwner UserRole = "owner"
	UserRoleStaff UserRole = "staff"
)

func ParseUserRole(s string) (UserRole, error) {
	switch s {
	case "admin":
		return UserRoleAdmin, nil
	case "owner":
		return UserRoleOwner, nil
	case "staff":
		return UserRoleStaff, nil
	default:
		return "", errors.New("invalid user role")
	}
}

// FieldType identifies a section field's editing widget and validation rules.
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeSelect  FieldType = "select"
	FieldTypeImage   FieldType = "image"
	FieldTypeProduct FieldType = "product"
	FieldTypeArray   FieldType = "array"
	FieldTypeObject  FieldType = "object"
)

// ReferenceType tags activity records and outbox rows with the entity kind.
type ReferenceType string

const (
	ReferenceTypeStore       ReferenceType = "STR"
	ReferenceTypeProduct     ReferenceType = "PRD"
	ReferenceTypeCategory    ReferenceType = "CAT"
	ReferenceTypeCart        ReferenceType = "CRT"
	ReferenceTypeOrder       ReferenceType = "ORD"
	ReferenceTypeDiscount    ReferenceType = "DIS"
	ReferenceTypeVoucherCode ReferenceType = "VCH"
	ReferenceTypeCustomer    ReferenceType = "CUS"
	ReferenceTypeShipping    ReferenceType = "SHP"
	ReferenceTypePage        ReferenceType = "PGE"
	ReferenceTypePageSection ReferenceType = "SEC"
	ReferenceTypeUser        ReferenceType = "USR"
)

// Event types published through the outbox.
const (
	EventTypeOrderCreated        = "order.created"
	EventTypeOrderStatusChanged  = "order.status_changed"
	EventTypeOrderPaymentChanged = "order.payment_changed"
	EventTypeVoucherRedeemed     = "voucher.redeemed"
)

// Outbox publish statuses for StorefrontEventRecord.Status.
// Keep these as strings (DB values) for backwards compatibility.
const (
	OutboxStatusPending    = "PENDING"
	OutboxStatusProcessing = "PROCESSING"
	OutboxStatusPublished  = "PUBLISHED"
	OutboxStatusFailed     = "FAILED"
	OutboxStatusDead       = "DEAD"
)
