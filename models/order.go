package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID               int             `gorm:"primary_key" json:"id"`
	StoreId          string          `gorm:"index;not null" json:"store_id"`
	OrderNumber      string          `gorm:"uniqueIndex:idx_orders_store_number,composite:store_id;size:20;not null" json:"order_number"`
	SequenceNo       int64           `gorm:"index;not null" json:"sequence_no"`
	CustomerId       int             `gorm:"index;not null;default:0" json:"customer_id"`
	Email            string          `gorm:"size:100;not null" json:"email"`
	Status           OrderStatus     `gorm:"type:enum('pending','confirmed','shipped','delivered','cancelled');not null;default:'pending'" json:"status"`
	PaymentStatus    PaymentStatus   `gorm:"type:enum('unpaid','paid','refunded');not null;default:'unpaid'" json:"payment_status"`
	SubTotal         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sub_total"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	ShippingAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"shipping_amount"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	VoucherCodeId    int             `gorm:"not null;default:0" json:"voucher_code_id"`
	VoucherCode      string          `gorm:"size:12" json:"voucher_code"`
	CustomerName     string          `gorm:"size:100" json:"customer_name"`
	Phone            string          `gorm:"size:20" json:"phone"`
	ShippingCountry  string          `gorm:"size:2" json:"shipping_country"`
	ShippingCity     string          `gorm:"size:100" json:"shipping_city"`
	ShippingAddress  string          `gorm:"type:text" json:"shipping_address"`
	ShippingRateId   int             `gorm:"not null;default:0" json:"shipping_rate_id"`
	ShippingRateName string          `gorm:"size:100" json:"shipping_rate_name"`
	Notes            string          `gorm:"type:text" json:"notes"`
	CartId           int             `gorm:"index;not null;default:0" json:"cart_id"`
	Details          []*OrderItem    `gorm:"foreignkey:OrderId" json:"details"`
	Customer         *Customer       `gorm:"-" json:"customer,omitempty"`
	CreatedAt        time.Time       `gorm:"index;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (o Order) GetStoreId() string {
	return o.StoreId
}

// returns decoded cursor string
func (o Order) GetCursor() string {
	return o.CreatedAt.String()
}

type OrderItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	StoreId     string          `gorm:"index;not null" json:"store_id"`
	OrderId     int             `gorm:"index;not null" json:"order_id"`
	ProductId   int             `gorm:"index;not null" json:"product_id"`
	ProductName string          `gorm:"size:100;not null" json:"product_name"`
	Sku         string          `gorm:"size:100" json:"sku"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"line_total"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type OrdersEdge Edge[Order]
type OrdersConnection struct {
	Edges    []*OrdersEdge `json:"edges"`
	PageInfo *PageInfo     `json:"pageInfo"`
}

type CheckoutInput struct {
	Email           string `json:"email" binding:"required"`
	CustomerName    string `json:"customer_name" binding:"required"`
	Phone           string `json:"phone"`
	ShippingCountry string `json:"shipping_country" binding:"required"`
	ShippingCity    string `json:"shipping_city"`
	ShippingAddress string `json:"shipping_address" binding:"required"`
	ShippingRateId  int    `json:"shipping_rate_id" binding:"required"`
	Notes           string `json:"notes"`
}

func formatOrderNumber(prefix string, seq int64) string {
	if prefix == "" {
		prefix = "ORD"
	}
	return fmt.Sprintf("%s-%06d", prefix, seq)
}

// CheckoutCart converts an active cart into an order. The cart token is
// locked for the duration so double-submits collapse into one order; inside
// the transaction everything is re-read and re-validated at current values.
func CheckoutCart(ctx context.Context, storeId string, token string, input *CheckoutInput) (*Order, error) {

	logger := config.GetLogger()

	store, err := GetStoreById(ctx, storeId)
	if err != nil {
		return nil, err
	}
	if !utils.DereferencePtr(store.IsActive, false) {
		return nil, errors.New("store is not active")
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if !utils.IsValidEmail(input.Email) {
		config.MetricCheckoutFailuresTotal.WithLabelValues("invalid_email").Inc()
		return nil, errors.New("invalid email")
	}

	// one checkout per cart at a time
	locker := config.GetRedisLock()
	if locker == nil {
		return nil, errors.New("service not ready (redis lock not initialized)")
	}
	lock, err := locker.Obtain(ctx, "checkout:"+token, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.MetricCheckoutFailuresTotal.WithLabelValues("locked").Inc()
		return nil, errors.New("checkout already in progress")
	} else if err != nil {
		return nil, err
	}
	defer func() {
		_ = lock.Release(ctx)
	}()

	db := config.GetDB()
	tx := db.Begin()

	cart, err := getActiveCart(ctx, tx, storeId, token)
	if err != nil {
		tx.Rollback()
		config.MetricCheckoutFailuresTotal.WithLabelValues("cart_unavailable").Inc()
		return nil, err
	}

	var items []*CartItem
	if err := tx.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Order("id").
		Find(&items).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if len(items) == 0 {
		tx.Rollback()
		config.MetricCheckoutFailuresTotal.WithLabelValues("empty_cart").Inc()
		return nil, utils.ErrCartEmpty
	}

	// re-snapshot prices and decrement stock at current values
	subTotal := decimal.Zero
	orderItems := make([]*OrderItem, 0, len(items))
	for _, item := range items {
		var product Product
		if err := tx.WithContext(ctx).
			Where("store_id = ? AND id = ? AND status = ? AND is_active = true", storeId, item.ProductId, ProductStatusActive).
			First(&product).Error; err != nil {
			tx.Rollback()
			config.MetricCheckoutFailuresTotal.WithLabelValues("product_unavailable").Inc()
			return nil, fmt.Errorf("product %q is no longer available", item.ProductName)
		}

		if utils.DereferencePtr(product.TrackStock, false) {
			result := tx.WithContext(ctx).Model(&Product{}).
				Where("store_id = ? AND id = ? AND stock_quantity >= ?", storeId, product.ID, item.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
			if result.Error != nil {
				tx.Rollback()
				return nil, result.Error
			}
			if result.RowsAffected == 0 {
				tx.Rollback()
				config.MetricCheckoutFailuresTotal.WithLabelValues("insufficient_stock").Inc()
				return nil, fmt.Errorf("insufficient stock for %q", product.Name)
			}
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subTotal = subTotal.Add(lineTotal)
		orderItems = append(orderItems, &OrderItem{
			StoreId:     storeId,
			ProductId:   product.ID,
			ProductName: product.Name,
			Sku:         product.Sku,
			UnitPrice:   product.Price,
			Quantity:    item.Quantity,
			LineTotal:   lineTotal,
		})
	}

	// voucher is re-validated against the fresh subtotal
	var voucher *VoucherCode
	var discount *Discount
	if cart.VoucherCodeId > 0 {
		voucher, discount, err = ValidateVoucherCode(ctx, storeId, cart.VoucherCode, subTotal, input.Email)
		if err != nil {
			tx.Rollback()
			config.MetricCheckoutFailuresTotal.WithLabelValues("voucher_invalid").Inc()
			return nil, err
		}
	}

	rate, shippingAmount, err := ResolveShippingRate(ctx, tx, storeId, input.ShippingRateId, input.ShippingCountry, subTotal)
	if err != nil {
		tx.Rollback()
		config.MetricCheckoutFailuresTotal.WithLabelValues("shipping_unavailable").Inc()
		return nil, err
	}

	totals := computeCartTotals(cartLinesFromOrderItems(orderItems), discount, store.TaxRate, utils.DereferencePtr(store.IsTaxInclusive, false), shippingAmount)

	customer, err := GetOrCreateCustomerByEmail(ctx, tx, storeId, input.CustomerName, input.Email, input.Phone)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	seqNo, err := utils.GetSequence[Order](ctx, storeId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	order := Order{
		StoreId:          storeId,
		OrderNumber:      formatOrderNumber(store.OrderPrefix, seqNo),
		SequenceNo:       seqNo,
		CustomerId:       customer.ID,
		Email:            input.Email,
		Status:           OrderStatusPending,
		PaymentStatus:    PaymentStatusUnpaid,
		SubTotal:         totals.SubTotal,
		DiscountAmount:   totals.DiscountAmount,
		TaxAmount:        totals.TaxAmount,
		ShippingAmount:   totals.ShippingAmount,
		TotalAmount:      totals.TotalAmount,
		CustomerName:     input.CustomerName,
		Phone:            input.Phone,
		ShippingCountry:  strings.ToUpper(strings.TrimSpace(input.ShippingCountry)),
		ShippingCity:     input.ShippingCity,
		ShippingAddress:  input.ShippingAddress,
		ShippingRateId:   rate.ID,
		ShippingRateName: rate.Name,
		Notes:            input.Notes,
		CartId:           cart.ID,
		Details:          orderItems,
	}
	if voucher != nil {
		order.VoucherCodeId = voucher.ID
		order.VoucherCode = voucher.Code
	}

	if err := tx.WithContext(ctx).Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if voucher != nil {
		if err := RedeemVoucher(ctx, tx, voucher, discount, order.ID, customer.ID, input.Email); err != nil {
			tx.Rollback()
			config.MetricCheckoutFailuresTotal.WithLabelValues("voucher_exhausted").Inc()
			return nil, err
		}
	}

	// close the cart
	if err := tx.WithContext(ctx).Model(&Cart{}).
		Where("id = ? AND status = ?", cart.ID, CartStatusActive).
		Updates(map[string]interface{}{
			"Status":     CartStatusCheckedOut,
			"CustomerId": customer.ID,
			"Email":      input.Email,
		}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// customer lifetime stats
	now := time.Now().UTC()
	customerUpdates := map[string]interface{}{
		"OrdersCount": gorm.Expr("orders_count + 1"),
		"TotalSpent":  gorm.Expr("total_spent + ?", order.TotalAmount),
		"LastOrderAt": now,
	}
	if customer.FirstOrderAt == nil {
		customerUpdates["FirstOrderAt"] = now
	}
	if err := tx.WithContext(ctx).Model(&Customer{}).
		Where("id = ?", customer.ID).
		Updates(customerUpdates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := CreateSystemActivity(tx.WithContext(ctx), storeId, "CREATE", order.ID, "orders",
		"placed order "+order.OrderNumber); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := PublishStorefrontEvent(ctx, tx, storeId, EventTypeOrderCreated, order.ID, ReferenceTypeOrder, order); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	config.MetricOrdersPlacedTotal.WithLabelValues(storeId).Inc()
	logger.WithField("order_number", order.OrderNumber).
		WithField("store_id", storeId).
		Info("order placed")

	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagOrders, utils.CacheTagProducts, utils.CacheTagCustomers, utils.CacheTagReports); err != nil {
		return nil, err
	}

	return &order, nil
}

// checkout reuses the cart totals math on freshly snapshotted lines
func cartLinesFromOrderItems(items []*OrderItem) []*CartItem {
	lines := make([]*CartItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, &CartItem{
			ProductId: item.ProductId,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

func GetOrder(ctx context.Context, id int) (*Order, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	return utils.FetchModel[Order](ctx, storeId, id, "Details")
}

func GetOrderByNumber(ctx context.Context, storeId string, orderNumber string) (*Order, error) {

	db := config.GetDB()
	var result Order

	err := db.WithContext(ctx).
		Where("store_id = ? AND order_number = ?", storeId, orderNumber).
		Preload("Details").
		First(&result).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

func PaginateOrders(ctx context.Context, limit *int, after *string, status *string, paymentStatus *string, customerId *int, search *string) (*OrdersConnection, error) {

	db := config.GetDB()
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	dbCtx := db.WithContext(ctx).Where("store_id = ?", storeId)

	if status != nil && *status != "" {
		parsed, err := ParseOrderStatus(*status)
		if err != nil {
			return nil, err
		}
		dbCtx.Where("status = ?", parsed)
	}
	if paymentStatus != nil && *paymentStatus != "" {
		parsed, err := ParsePaymentStatus(*paymentStatus)
		if err != nil {
			return nil, err
		}
		dbCtx.Where("payment_status = ?", parsed)
	}
	if customerId != nil && *customerId > 0 {
		dbCtx.Where("customer_id = ?", *customerId)
	}
	if search != nil && *search != "" {
		term := "%" + *search + "%"
		dbCtx.Where("order_number LIKE ? OR email LIKE ? OR customer_name LIKE ?", term, term, term)
	}

	pageLimit := config.SearchLimit
	if limit != nil && *limit > 0 {
		pageLimit = *limit
	}
	edges, pageInfo, err := FetchPageCompositeCursor[Order](dbCtx, pageLimit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var conn OrdersConnection
	conn.PageInfo = pageInfo
	for _, edge := range edges {
		orderEdge := OrdersEdge(edge)
		conn.Edges = append(conn.Edges, &orderEdge)
	}
	return &conn, nil
}

// UpdateOrderStatus moves the order along the allowed transitions.
// Cancelling restocks tracked products and returns any voucher use.
func UpdateOrderStatus(ctx context.Context, id int, status string) (*Order, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	next, err := ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()

	var order Order
	if err := tx.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeId, id).
		Preload("Details").
		First(&order).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}

	if !order.Status.CanTransitionTo(next) {
		tx.Rollback()
		return nil, fmt.Errorf("cannot change status from %s to %s", order.Status, next)
	}

	previous := order.Status
	if err := tx.WithContext(ctx).Model(&order).
		UpdateColumn("status", next).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if next == OrderStatusCancelled {
		// return stock for tracked products
		for _, item := range order.Details {
			if err := tx.WithContext(ctx).Model(&Product{}).
				Where("store_id = ? AND id = ? AND track_stock = true", storeId, item.ProductId).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
		if err := ReverseVoucherRedemption(ctx, tx, storeId, order.ID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := createActivity(tx.WithContext(ctx), "UPDATE", order.ID, "orders", previous, next,
		fmt.Sprintf("changed order %s status to %s", order.OrderNumber, next)); err != nil {
		tx.Rollback()
		return nil, err
	}

	payload := map[string]interface{}{
		"order_number": order.OrderNumber,
		"from":         previous,
		"to":           next,
	}
	if err := PublishStorefrontEvent(ctx, tx, storeId, EventTypeOrderStatusChanged, order.ID, ReferenceTypeOrder, payload); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	order.Status = next
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagOrders, utils.CacheTagProducts, utils.CacheTagReports); err != nil {
		return nil, err
	}
	return &order, nil
}

func UpdateOrderPaymentStatus(ctx context.Context, id int, paymentStatus string) (*Order, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	next, err := ParsePaymentStatus(paymentStatus)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()

	var order Order
	if err := tx.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeId, id).
		First(&order).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}

	if order.PaymentStatus == next {
		tx.Rollback()
		return &order, nil
	}
	// refunds only make sense after payment
	if next == PaymentStatusRefunded && order.PaymentStatus != PaymentStatusPaid {
		tx.Rollback()
		return nil, errors.New("only paid orders can be refunded")
	}

	previous := order.PaymentStatus
	if err := tx.WithContext(ctx).Model(&order).
		UpdateColumn("payment_status", next).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := createActivity(tx.WithContext(ctx), "UPDATE", order.ID, "orders", previous, next,
		fmt.Sprintf("changed order %s payment to %s", order.OrderNumber, next)); err != nil {
		tx.Rollback()
		return nil, err
	}

	payload := map[string]interface{}{
		"order_number": order.OrderNumber,
		"from":         previous,
		"to":           next,
	}
	if err := PublishStorefrontEvent(ctx, tx, storeId, EventTypeOrderPaymentChanged, order.ID, ReferenceTypeOrder, payload); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	order.PaymentStatus = next
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagOrders, utils.CacheTagReports); err != nil {
		return nil, err
	}
	return &order, nil
}
