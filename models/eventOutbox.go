package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/utils"
	"gorm.io/gorm"
)

type StorefrontEventRecord struct {
	ID            int           `gorm:"primary_key;index:idx_outbox_dispatch,priority:3" json:"id"`
	EventId       string        `gorm:"size:64;uniqueIndex;not null" json:"event_id"`
	StoreId       string        `gorm:"size:64;not null;index" json:"store_id"`
	EventType     string        `gorm:"size:50;not null;index" json:"event_type"`
	ReferenceId   int           `gorm:"index" json:"reference_id"`
	ReferenceType ReferenceType `gorm:"type:enum('STR','PRD','CAT','CRT','ORD','DIS','VCH','CUS','SHP','PGE','SEC','USR')" json:"reference_type"`
	Payload       []byte        `gorm:"type:blob" json:"payload"`
	// Publish happens after commit via the dispatcher.
	Status          string     `gorm:"size:20;index;not null;default:'PENDING';index:idx_outbox_dispatch,priority:1" json:"status"` // PENDING|PROCESSING|PUBLISHED|FAILED|DEAD
	PublishedAt     *time.Time `gorm:"index" json:"published_at"`
	PubSubMessageId *string    `gorm:"size:255" json:"pubsub_message_id"`
	Attempts        int        `gorm:"not null;default:0" json:"attempts"`
	NextAttemptAt   *time.Time `gorm:"index;index:idx_outbox_dispatch,priority:2" json:"next_attempt_at"`
	LockedAt        *time.Time `gorm:"index" json:"locked_at"`
	LockedBy        *string    `gorm:"size:100" json:"locked_by"`
	LastError       *string    `gorm:"type:text" json:"last_error"`
	CorrelationId   string     `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func ConvertToStorefrontEvent(record StorefrontEventRecord) config.StorefrontEvent {
	return config.StorefrontEvent{
		EventId:       record.EventId,
		StoreId:       record.StoreId,
		EventType:     record.EventType,
		ReferenceType: string(record.ReferenceType),
		ReferenceId:   record.ReferenceId,
		Payload:       record.Payload,
		OccurredAt:    record.CreatedAt,
		CorrelationId: record.CorrelationId,
	}
}

// GetOutboxStatus returns the latest outbox row for a document, for the admin UI.
func GetOutboxStatus(ctx context.Context, referenceType ReferenceType, referenceId int) (*StorefrontEventRecord, error) {
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	db := config.GetDB()
	var rec StorefrontEventRecord
	if err := db.WithContext(ctx).
		Where("store_id = ? AND reference_type = ? AND reference_id = ?", storeId, referenceType, referenceId).
		Order("id DESC").
		First(&rec).Error; err != nil {
		return nil, err
	}

	return &rec, nil
}

// ReprocessOutbox resets stuck or DEAD rows for a document so the dispatcher retries them.
func ReprocessOutbox(ctx context.Context, referenceType ReferenceType, referenceId int) (*StorefrontEventRecord, error) {
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	now := time.Now().UTC()
	db := config.GetDB()

	res := db.WithContext(ctx).
		Model(&StorefrontEventRecord{}).
		Where("store_id = ? AND reference_type = ? AND reference_id = ? AND status <> ?", storeId, referenceType, referenceId, OutboxStatusPublished).
		Updates(map[string]interface{}{
			"locked_at":       nil,
			"locked_by":       nil,
			"status":          OutboxStatusPending,
			"attempts":        0,
			"next_attempt_at": &now,
			"last_error":      nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return GetOutboxStatus(ctx, referenceType, referenceId)
}
