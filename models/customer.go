package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Customer struct {
	ID           int             `gorm:"primary_key" json:"id"`
	StoreId      string          `gorm:"index;not null" json:"store_id"`
	Name         string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Email        string          `gorm:"index;size:100" json:"email"`
	Phone        string          `gorm:"size:20" json:"phone"`
	Country      string          `gorm:"size:2" json:"country"`
	City         string          `gorm:"size:100" json:"city"`
	Address      string          `gorm:"type:text" json:"address"`
	Notes        string          `gorm:"type:text" json:"notes"`
	OrdersCount  int             `gorm:"not null;default:0" json:"orders_count"`
	TotalSpent   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_spent"`
	FirstOrderAt *time.Time      `json:"first_order_at"`
	LastOrderAt  *time.Time      `json:"last_order_at"`
	IsActive     *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c Customer) GetStoreId() string {
	return c.StoreId
}

type NewCustomer struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
	City    string `json:"city"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type CustomersEdge Edge[Customer]
type CustomersConnection struct {
	Edges    []*CustomersEdge `json:"edges"`
	PageInfo *PageInfo        `json:"pageInfo"`
}

// returns decoded cursor string
func (c Customer) GetCursor() string {
	return c.CreatedAt.String()
}

func (input *NewCustomer) validate(ctx context.Context, storeId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, storeId, id); err != nil {
			return err
		}
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return errors.New("invalid email")
		}
		if err := utils.ValidateUnique[Customer](ctx, storeId, "email", input.Email, id); err != nil {
			return err
		}
	}
	if input.Phone != "" {
		if err := utils.ValidateUnique[Customer](ctx, storeId, "phone", input.Phone, id); err != nil {
			return err
		}
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	if err := input.validate(ctx, storeId, 0); err != nil {
		return nil, err
	}

	customer := Customer{
		StoreId:  storeId,
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Country:  strings.ToUpper(input.Country),
		City:     input.City,
		Address:  input.Address,
		Notes:    input.Notes,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&customer).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveActivityCreate(tx.WithContext(ctx), customer.ID, customer, "created customer "+customer.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagCustomers); err != nil {
		return nil, err
	}

	return &customer, nil
}

func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	if err := input.validate(ctx, storeId, id); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, storeId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	before := *customer
	if err := tx.WithContext(ctx).Model(&customer).Updates(map[string]interface{}{
		"Name":    input.Name,
		"Email":   input.Email,
		"Phone":   input.Phone,
		"Country": strings.ToUpper(input.Country),
		"City":    input.City,
		"Address": input.Address,
		"Notes":   input.Notes,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createActivity(tx.WithContext(ctx), "UPDATE", id, "customers", before, customer, "updated customer "+input.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*customer); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagCustomers); err != nil {
		return nil, err
	}
	return customer, nil
}

func DeleteCustomer(ctx context.Context, id int) (*Customer, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	db := config.GetDB()
	result, err := utils.FetchModel[Customer](ctx, storeId, id)
	if err != nil {
		return nil, err
	}

	// don't delete customers with order history
	count, err := utils.ResourceCountWhere[Order](ctx, storeId, "customer_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("customer has orders")
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Delete(&result).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveActivityDelete(tx.WithContext(ctx), id, result, "deleted customer "+result.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagCustomers); err != nil {
		return nil, err
	}

	return result, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {

	return GetResource[Customer](ctx, id)
}

func GetCustomers(ctx context.Context, search *string) ([]*Customer, error) {

	db := config.GetDB()
	var results []*Customer

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	dbCtx := db.WithContext(ctx).Where("store_id = ?", storeId)
	if search != nil && len(*search) > 0 {
		term := "%" + *search + "%"
		dbCtx = dbCtx.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", term, term, term)
	}
	err := dbCtx.Order("name").Limit(100).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveCustomer(ctx context.Context, id int, isActive bool) (*Customer, error) {
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	return ToggleActiveModel[Customer](ctx, storeId, id, isActive)
}

func PaginateCustomers(ctx context.Context, limit *int, after *string, search *string) (*CustomersConnection, error) {

	db := config.GetDB()
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	dbCtx := db.WithContext(ctx).Where("store_id = ?", storeId)

	if search != nil && *search != "" {
		term := "%" + *search + "%"
		dbCtx.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", term, term, term)
	}

	pageLimit := config.SearchLimit
	if limit != nil && *limit > 0 {
		pageLimit = *limit
	}
	edges, pageInfo, err := FetchPageCompositeCursor[Customer](dbCtx, pageLimit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var conn CustomersConnection
	conn.PageInfo = pageInfo
	for _, edge := range edges {
		customerEdge := CustomersEdge(edge)
		conn.Edges = append(conn.Edges, &customerEdge)
	}
	return &conn, nil
}

// GetOrCreateCustomerByEmail finds the store's customer by email, creating a
// bare record when missing. Runs inside the checkout transaction.
func GetOrCreateCustomerByEmail(ctx context.Context, tx *gorm.DB, storeId string, name string, email string, phone string) (*Customer, error) {

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email is required")
	}
	if !utils.IsValidEmail(email) {
		return nil, errors.New("invalid email")
	}

	var customer Customer
	err := tx.WithContext(ctx).
		Where("store_id = ? AND email = ?", storeId, email).
		First(&customer).Error
	if err == nil {
		// refresh contact details opportunistically
		updates := map[string]interface{}{}
		if name != "" && customer.Name != name {
			updates["Name"] = name
		}
		if phone != "" && customer.Phone == "" {
			updates["Phone"] = phone
		}
		if len(updates) > 0 {
			if err := tx.WithContext(ctx).Model(&customer).Updates(updates).Error; err != nil {
				return nil, err
			}
		}
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if name == "" {
		name = email
	}
	customer = Customer{
		StoreId:  storeId,
		Name:     name,
		Email:    email,
		Phone:    phone,
		IsActive: utils.NewTrue(),
	}
	if err := tx.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}
