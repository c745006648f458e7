package models

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Cart struct {
	ID               int             `gorm:"primary_key" json:"id"`
	StoreId          string          `gorm:"index;not null" json:"store_id"`
	Token            string          `gorm:"uniqueIndex;size:36;not null" json:"token"`
	CustomerId       int             `gorm:"index;not null;default:0" json:"customer_id"`
	Email            string          `gorm:"size:100" json:"email"`
	Status           CartStatus      `gorm:"type:enum('active','checked_out','abandoned');not null;default:'active'" json:"status"`
	VoucherCodeId    int             `gorm:"not null;default:0" json:"voucher_code_id"`
	VoucherCode      string          `gorm:"size:12" json:"voucher_code"`
	ShippingCountry  string          `gorm:"size:2" json:"shipping_country"`
	ShippingRateId   int             `gorm:"not null;default:0" json:"shipping_rate_id"`
	ShippingRateName string          `gorm:"size:100" json:"shipping_rate_name"`
	SubTotal         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sub_total"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	ShippingAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"shipping_amount"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Details          []*CartItem     `gorm:"foreignkey:CartId" json:"details"`
	LastActivityAt   time.Time       `gorm:"index;not null" json:"last_activity_at"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// VoucherWarning surfaces a voucher dropped during recompute. Not stored.
	VoucherWarning string `gorm:"-" json:"voucher_warning,omitempty"`
}

func (c Cart) GetStoreId() string {
	return c.StoreId
}

// returns decoded cursor string
func (c Cart) GetCursor() string {
	return c.LastActivityAt.String()
}

type CartsEdge Edge[Cart]
type CartsConnection struct {
	Edges    []*CartsEdge `json:"edges"`
	PageInfo *PageInfo    `json:"pageInfo"`
}

type CartItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	StoreId     string          `gorm:"index;not null" json:"store_id"`
	CartId      int             `gorm:"index;not null" json:"cart_id"`
	ProductId   int             `gorm:"index;not null" json:"product_id"`
	ProductName string          `gorm:"size:100;not null" json:"product_name"`
	Sku         string          `gorm:"size:100" json:"sku"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"line_total"`
	Product     *AllProduct     `gorm:"-" json:"product,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func cartTTL() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("CART_TTL_HOURS"))
	if err != nil || hours <= 0 {
		hours = 72
	}
	return time.Duration(hours) * time.Hour
}

/* totals */

type CartTotals struct {
	SubTotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	ShippingAmount decimal.Decimal
	TotalAmount    decimal.Decimal
}

// computeCartTotals derives every money field from the line snapshots.
// Discount applies to the subtotal, tax to the discounted goods value, and
// shipping is added last, untaxed.
func computeCartTotals(items []*CartItem, discount *Discount, taxRate decimal.Decimal, taxInclusive bool, shipping decimal.Decimal) CartTotals {

	subTotal := decimal.Zero
	for _, item := range items {
		subTotal = subTotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	discountAmount := decimal.Zero
	if discount != nil {
		discountAmount = utils.CalculateDiscountAmount(subTotal, discount.Value, string(discount.Type))
	}

	taxable := subTotal.Sub(discountAmount)
	taxAmount := utils.CalculateTaxAmount(taxable, taxRate, taxInclusive)

	total := taxable.Add(shipping)
	if !taxInclusive {
		total = total.Add(taxAmount)
	}

	return CartTotals{
		SubTotal:       subTotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		ShippingAmount: shipping,
		TotalAmount:    total,
	}
}

// recomputeCart refreshes line totals, revalidates any applied voucher and
// rewrites the cart's money columns. A voucher that no longer validates is
// dropped and the reason surfaced on the returned cart.
func recomputeCart(ctx context.Context, tx *gorm.DB, cart *Cart, store *Store) error {

	var items []*CartItem
	if err := tx.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Order("id").
		Find(&items).Error; err != nil {
		return err
	}

	// line totals follow quantity changes
	for _, item := range items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if !lineTotal.Equal(item.LineTotal) {
			if err := tx.WithContext(ctx).Model(&item).
				UpdateColumn("line_total", lineTotal).Error; err != nil {
				return err
			}
			item.LineTotal = lineTotal
		}
	}

	subTotal := decimal.Zero
	for _, item := range items {
		subTotal = subTotal.Add(item.LineTotal)
	}

	var discount *Discount
	cart.VoucherWarning = ""
	if cart.VoucherCodeId > 0 {
		_, validDiscount, err := ValidateVoucherCode(ctx, cart.StoreId, cart.VoucherCode, subTotal, cart.Email)
		if err != nil {
			// drop the voucher but keep the cart usable
			cart.VoucherWarning = err.Error()
			cart.VoucherCodeId = 0
			cart.VoucherCode = ""
		} else {
			discount = validDiscount
		}
	}

	shipping := decimal.Zero
	if cart.ShippingRateId > 0 && cart.ShippingCountry != "" {
		_, amount, err := ResolveShippingRate(ctx, tx, cart.StoreId, cart.ShippingRateId, cart.ShippingCountry, subTotal)
		if err != nil {
			// selected rate no longer applies, clear it
			cart.ShippingRateId = 0
			cart.ShippingRateName = ""
		} else {
			shipping = amount
		}
	}

	totals := computeCartTotals(items, discount, store.TaxRate, utils.DereferencePtr(store.IsTaxInclusive, false), shipping)

	cart.SubTotal = totals.SubTotal
	cart.DiscountAmount = totals.DiscountAmount
	cart.TaxAmount = totals.TaxAmount
	cart.ShippingAmount = totals.ShippingAmount
	cart.TotalAmount = totals.TotalAmount
	cart.Details = items
	cart.LastActivityAt = time.Now().UTC()

	return tx.WithContext(ctx).Model(&Cart{}).
		Where("id = ?", cart.ID).
		Updates(map[string]interface{}{
			"VoucherCodeId":    cart.VoucherCodeId,
			"VoucherCode":      cart.VoucherCode,
			"ShippingRateId":   cart.ShippingRateId,
			"ShippingRateName": cart.ShippingRateName,
			"SubTotal":         cart.SubTotal,
			"DiscountAmount":   cart.DiscountAmount,
			"TaxAmount":        cart.TaxAmount,
			"ShippingAmount":   cart.ShippingAmount,
			"TotalAmount":      cart.TotalAmount,
			"LastActivityAt":   cart.LastActivityAt,
		}).Error
}

/* operations */

// GetOrCreateCart resolves the shopper's cart from the token in context,
// minting a new cart (and token) when absent or expired.
func GetOrCreateCart(ctx context.Context, storeId string) (*Cart, error) {

	db := config.GetDB()

	token, _ := utils.GetCartTokenFromContext(ctx)
	if token != "" {
		var cart Cart
		err := db.WithContext(ctx).
			Where("store_id = ? AND token = ? AND status = ?", storeId, token, CartStatusActive).
			Preload("Details").
			First(&cart).Error
		if err == nil {
			return &cart, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	cart := Cart{
		StoreId:        storeId,
		Token:          uuid.NewString(),
		Status:         CartStatusActive,
		LastActivityAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// getActiveCart loads the cart by token for mutation, inside tx.
func getActiveCart(ctx context.Context, tx *gorm.DB, storeId string, token string) (*Cart, error) {
	var cart Cart
	err := tx.WithContext(ctx).
		Where("store_id = ? AND token = ?", storeId, token).
		First(&cart).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if cart.Status == CartStatusCheckedOut {
		return nil, utils.ErrCartCheckedOut
	}
	if cart.Status == CartStatusAbandoned {
		// shopper came back, revive it
		if err := tx.WithContext(ctx).Model(&cart).
			UpdateColumn("status", CartStatusActive).Error; err != nil {
			return nil, err
		}
		cart.Status = CartStatusActive
	}
	return &cart, nil
}

type NewCartItem struct {
	ProductId int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required"`
}

func AddCartItem(ctx context.Context, storeId string, token string, input *NewCartItem) (*Cart, error) {

	if input.Quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}

	store, err := GetStoreById(ctx, storeId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	cart, err := getActiveCart(ctx, tx, storeId, token)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var product Product
	if err := tx.WithContext(ctx).
		Where("store_id = ? AND id = ? AND status = ? AND is_active = true", storeId, input.ProductId, ProductStatusActive).
		First(&product).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("product not available")
	}

	var item CartItem
	err = tx.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cart.ID, input.ProductId).
		First(&item).Error
	newQty := input.Quantity
	if err == nil {
		newQty += item.Quantity
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return nil, err
	}

	if utils.DereferencePtr(product.TrackStock, false) && newQty > product.StockQuantity {
		tx.Rollback()
		return nil, utils.ErrInsufficientStock
	}

	if item.ID > 0 {
		if err := tx.WithContext(ctx).Model(&item).Updates(map[string]interface{}{
			"Quantity":    newQty,
			"UnitPrice":   product.Price,
			"ProductName": product.Name,
			"Sku":         product.Sku,
		}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	} else {
		item = CartItem{
			StoreId:     storeId,
			CartId:      cart.ID,
			ProductId:   product.ID,
			ProductName: product.Name,
			Sku:         product.Sku,
			UnitPrice:   product.Price,
			Quantity:    newQty,
		}
		if err := tx.WithContext(ctx).Create(&item).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := recomputeCart(ctx, tx, cart, store); err != nil {
		tx.Rollback()
		return nil, err
	}
	return cart, tx.Commit().Error
}

func UpdateCartItemQuantity(ctx context.Context, storeId string, token string, itemId int, quantity int) (*Cart, error) {

	if quantity < 0 {
		return nil, errors.New("quantity cannot be negative")
	}

	store, err := GetStoreById(ctx, storeId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	cart, err := getActiveCart(ctx, tx, storeId, token)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var item CartItem
	if err := tx.WithContext(ctx).
		Where("cart_id = ? AND id = ?", cart.ID, itemId).
		First(&item).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}

	if quantity == 0 {
		if err := tx.WithContext(ctx).Delete(&item).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	} else {
		var product Product
		if err := tx.WithContext(ctx).
			Where("store_id = ? AND id = ?", storeId, item.ProductId).
			First(&product).Error; err != nil {
			tx.Rollback()
			return nil, errors.New("product not available")
		}
		if utils.DereferencePtr(product.TrackStock, false) && quantity > product.StockQuantity {
			tx.Rollback()
			return nil, utils.ErrInsufficientStock
		}
		if err := tx.WithContext(ctx).Model(&item).
			UpdateColumn("quantity", quantity).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := recomputeCart(ctx, tx, cart, store); err != nil {
		tx.Rollback()
		return nil, err
	}
	return cart, tx.Commit().Error
}

func RemoveCartItem(ctx context.Context, storeId string, token string, itemId int) (*Cart, error) {
	return UpdateCartItemQuantity(ctx, storeId, token, itemId, 0)
}

func ClearCart(ctx context.Context, storeId string, token string) (*Cart, error) {

	store, err := GetStoreById(ctx, storeId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	cart, err := getActiveCart(ctx, tx, storeId, token)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Delete(&CartItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	cart.VoucherCodeId = 0
	cart.VoucherCode = ""

	if err := recomputeCart(ctx, tx, cart, store); err != nil {
		tx.Rollback()
		return nil, err
	}
	return cart, tx.Commit().Error
}

func ApplyVoucherToCart(ctx context.Context, storeId string, token string, code string) (*Cart, error) {

	store, err := GetStoreById(ctx, storeId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	cart, err := getActiveCart(ctx, tx, storeId, token)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var items []*CartItem
	if err := tx.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Find(&items).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	subTotal := decimal.Zero
	for _, item := range items {
		subTotal = subTotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	voucher, _, err := ValidateVoucherCode(ctx, storeId, code, subTotal, cart.Email)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	cart.VoucherCodeId = voucher.ID
	cart.VoucherCode = voucher.Code

	if err := recomputeCart(ctx, tx, cart, store); err != nil {
		tx.Rollback()
		return nil, err
	}
	return cart, tx.Commit().Error
}

func RemoveVoucherFromCart(ctx context.Context, storeId string, token string) (*Cart, error) {

	store, err := GetStoreById(ctx, storeId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	cart, err := getActiveCart(ctx, tx, storeId, token)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	cart.VoucherCodeId = 0
	cart.VoucherCode = ""

	if err := recomputeCart(ctx, tx, cart, store); err != nil {
		tx.Rollback()
		return nil, err
	}
	return cart, tx.Commit().Error
}

// SetCartShipping records the destination and chosen rate.
func SetCartShipping(ctx context.Context, storeId string, token string, country string, rateId int) (*Cart, error) {

	store, err := GetStoreById(ctx, storeId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	cart, err := getActiveCart(ctx, tx, storeId, token)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		tx.Rollback()
		return nil, errors.New("country is required")
	}

	var items []*CartItem
	if err := tx.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Find(&items).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	subTotal := decimal.Zero
	for _, item := range items {
		subTotal = subTotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	rate, _, err := ResolveShippingRate(ctx, tx, storeId, rateId, country, subTotal)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	cart.ShippingCountry = country
	cart.ShippingRateId = rate.ID
	cart.ShippingRateName = rate.Name
	if err := tx.WithContext(ctx).Model(&Cart{}).
		Where("id = ?", cart.ID).
		UpdateColumn("shipping_country", country).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := recomputeCart(ctx, tx, cart, store); err != nil {
		tx.Rollback()
		return nil, err
	}
	return cart, tx.Commit().Error
}

// AttachCustomerToCart links the shopper's identity to the active cart, so
// checkout and per-customer voucher limits see who is buying.
func AttachCustomerToCart(ctx context.Context, storeId string, token string, name string, email string, phone string) (*Cart, error) {

	email = strings.ToLower(strings.TrimSpace(email))
	if !utils.IsValidEmail(email) {
		return nil, errors.New("invalid email")
	}

	db := config.GetDB()
	tx := db.Begin()
	cart, err := getActiveCart(ctx, tx, storeId, token)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	customer, err := GetOrCreateCustomerByEmail(ctx, tx, storeId, name, email, phone)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	cart.CustomerId = customer.ID
	cart.Email = email
	if err := tx.WithContext(ctx).Model(&Cart{}).
		Where("id = ?", cart.ID).
		Updates(map[string]interface{}{
			"CustomerId": customer.ID,
			"Email":      email,
		}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	return cart, tx.Commit().Error
}

// PaginateCarts lists carts for the dashboard, newest activity first.
// Used for abandoned cart recovery.
func PaginateCarts(ctx context.Context, limit *int, after *string, status *string) (*CartsConnection, error) {

	db := config.GetDB()
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	dbCtx := db.WithContext(ctx).Where("store_id = ?", storeId)

	if status != nil && *status != "" {
		switch CartStatus(*status) {
		case CartStatusActive, CartStatusCheckedOut, CartStatusAbandoned:
			dbCtx.Where("status = ?", *status)
		default:
			return nil, errors.New("invalid cart status")
		}
	}

	pageLimit := config.SearchLimit
	if limit != nil && *limit > 0 {
		pageLimit = *limit
	}
	edges, pageInfo, err := FetchPageCompositeCursor[Cart](dbCtx, pageLimit, after, "last_activity_at", "<")
	if err != nil {
		return nil, err
	}
	var conn CartsConnection
	conn.PageInfo = pageInfo
	for _, edge := range edges {
		cartEdge := CartsEdge(edge)
		conn.Edges = append(conn.Edges, &cartEdge)
	}
	return &conn, nil
}

// MarkAbandonedCarts flips active carts idle past the TTL to abandoned.
// Run periodically by the sweeper.
func MarkAbandonedCarts(ctx context.Context) (int64, error) {

	db := config.GetDB()
	cutoff := time.Now().UTC().Add(-cartTTL())

	result := db.WithContext(ctx).Model(&Cart{}).
		Where("status = ? AND last_activity_at < ?", CartStatusActive, cutoff).
		UpdateColumn("status", CartStatusAbandoned)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
