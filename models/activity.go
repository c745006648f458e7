package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/utils"
	"gorm.io/gorm"
)

type ActivityRecord struct {
	ID            int       `gorm:"primary_key" json:"id"`
	StoreId       string    `gorm:"index;not null" json:"store_id"`
	ActionType    string    `gorm:"size:10;not null" json:"action_type" binding:"required"`
	Before        string    `gorm:"type:text" json:"before"`
	After         string    `gorm:"type:text" json:"after"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	ReferenceID   int       `gorm:"index" json:"reference_id"`
	ReferenceType string    `gorm:"size:255" json:"reference_type"`
	UserId        int       `gorm:"index;not null" json:"user_id"`
	UserName      string    `gorm:"size:100" json:"user_name"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Subject is the referenced record, resolved per request. Not stored.
	Subject interface{} `gorm:"-" json:"subject,omitempty"`
}

func createActivity(tx *gorm.DB,
	actionType string,
	referenceId int,
	referenceType string,
	before interface{},
	after interface{},
	description string) (err error) {

	var activity ActivityRecord

	b, _ := json.Marshal(before)
	a, _ := json.Marshal(after)

	ctx := tx.Statement.Context
	// get storeId, userId, userName from context
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return errors.New("store id is required")
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return errors.New("user id is required")
	}
	userName, ok := utils.GetUserNameFromContext(ctx)
	if !ok {
		return errors.New("user id is required")
	}

	activity.StoreId = storeId
	activity.ActionType = actionType
	activity.Before = string(b)
	activity.After = string(a)
	activity.Description = description
	activity.ReferenceID = referenceId
	activity.ReferenceType = referenceType
	activity.UserId = userId
	activity.UserName = userName

	err = tx.Create(&activity).Error
	return err
}

func SaveActivityCreate(tx *gorm.DB, id int, obj interface{}, description string) error {
	return createActivity(tx, "CREATE", id, tx.Statement.Table, nil, obj, description)
}

func SaveActivityUpdate(tx *gorm.DB, id int, currentValue interface{}, description string) error {

	var newValue = tx.Statement.Dest

	return createActivity(tx, "UPDATE", id, tx.Statement.Table, currentValue, newValue, description)
}

func SaveActivityDelete(tx *gorm.DB, id int, obj interface{}, description string) error {
	return createActivity(tx, "DELETE", id, tx.Statement.Table, obj, nil, description)
}

// CreateSystemActivity records an activity from a worker context where no user is present.
func CreateSystemActivity(tx *gorm.DB, storeId string, actionType string, referenceId int, referenceType string, description string) error {
	activity := ActivityRecord{
		StoreId:       storeId,
		ActionType:    actionType,
		Description:   description,
		ReferenceID:   referenceId,
		ReferenceType: referenceType,
		UserId:        0,
		UserName:      "system",
	}
	return tx.Create(&activity).Error
}

type ActivitiesConnection struct {
	Edges    []*ActivitiesEdge `json:"edges"`
	PageInfo *PageInfo         `json:"pageInfo"`
}

type ActivitiesEdge Edge[ActivityRecord]

func (obj ActivityRecord) GetId() int {
	return obj.ID
}

func (a ActivityRecord) GetCursor() string {
	return a.CreatedAt.String()
}

func GetActivity(ctx context.Context, id int) (*ActivityRecord, error) {

	db := config.GetDB()
	var result ActivityRecord

	err := db.WithContext(ctx).First(&result, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

func GetActivities(ctx context.Context, referenceId *int, referenceType *string, userId *int) ([]*ActivityRecord, error) {

	db := config.GetDB()
	var results []*ActivityRecord

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	dbCtx := db.WithContext(ctx).Where("store_id = ?", storeId)
	if referenceId != nil && *referenceId > 0 {
		dbCtx = dbCtx.Where("reference_id = ?", referenceId)
	}
	if referenceType != nil && len(*referenceType) > 0 {
		dbCtx = dbCtx.Where("reference_type = ?", referenceType)
	}
	if userId != nil && *userId > 0 {
		dbCtx = dbCtx.Where("user_id = ?", userId)
	}

	err := dbCtx.Order("id DESC").Limit(100).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func PaginateActivities(ctx context.Context, limit int, after *string, referenceId *int, referenceType *string) (*ActivitiesConnection, error) {

	db := config.GetDB()

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	if limit <= 0 {
		limit = config.SearchLimit
	}

	dbCtx := db.WithContext(ctx).Model(&ActivityRecord{}).Where("store_id = ?", storeId)
	if referenceId != nil && *referenceId > 0 {
		dbCtx = dbCtx.Where("reference_id = ?", referenceId)
	}
	if referenceType != nil && len(*referenceType) > 0 {
		dbCtx = dbCtx.Where("reference_type = ?", referenceType)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[ActivityRecord](dbCtx, limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}

	conn := ActivitiesConnection{PageInfo: pageInfo}
	for i := range edges {
		edge := ActivitiesEdge(edges[i])
		conn.Edges = append(conn.Edges, &edge)
	}
	return &conn, nil
}
