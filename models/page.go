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

type Page struct {
	ID          int            `gorm:"primary_key" json:"id"`
	StoreId     string         `gorm:"index;not null" json:"store_id"`
	Title       string         `gorm:"size:100;not null" json:"title" binding:"required"`
	Slug        string         `gorm:"index;size:120;not null" json:"slug"`
	Status      PageStatus     `gorm:"type:enum('draft','published');not null;default:'draft'" json:"status"`
	IsHomePage  *bool          `gorm:"not null;default:false" json:"is_home_page"`
	PublishedAt *time.Time     `json:"published_at"`
	Sections    []*PageSection `gorm:"foreignkey:PageId" json:"sections"`
	Images      []*Image       `gorm:"-" json:"images,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p Page) GetStoreId() string {
	return p.StoreId
}

// returns decoded cursor string
func (p Page) GetCursor() string {
	return p.CreatedAt.String()
}

type PageSection struct {
	ID          int       `gorm:"primary_key" json:"id"`
	StoreId     string    `gorm:"index;not null" json:"store_id"`
	PageId      int       `gorm:"index;not null" json:"page_id"`
	SectionType string    `gorm:"size:50;not null" json:"section_type"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	IsVisible   *bool     `gorm:"not null;default:true" json:"is_visible"`
	Config      string    `gorm:"type:text" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s PageSection) GetStoreId() string {
	return s.StoreId
}

// MarshalJSON inlines the stored config document.
func (s PageSection) MarshalJSON() ([]byte, error) {
	type alias PageSection
	cfg := map[string]interface{}{}
	if s.Config != "" {
		if err := json.Unmarshal([]byte(s.Config), &cfg); err != nil {
			return nil, err
		}
	}
	return json.Marshal(struct {
		alias
		ConfigDoc map[string]interface{} `json:"config"`
	}{alias(s), cfg})
}

type NewPage struct {
	Title string `json:"title" binding:"required"`
	Slug  string `json:"slug"`
}

type NewPageSection struct {
	SectionType string                 `json:"section_type" binding:"required"`
	Position    int                    `json:"position"`
	IsVisible   *bool                  `json:"is_visible"`
	Config      map[string]interface{} `json:"config"`
}

func (input *NewPage) validate(ctx context.Context, storeId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Page](ctx, storeId, id); err != nil {
			return err
		}
	}
	if input.Slug == "" {
		input.Slug = utils.Slugify(input.Title)
	}
	if err := utils.ValidateUnique[Page](ctx, storeId, "slug", input.Slug, id); err != nil {
		return err
	}
	return nil
}

func CreatePage(ctx context.Context, input *NewPage) (*Page, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	if err := input.validate(ctx, storeId, 0); err != nil {
		return nil, err
	}

	page := Page{
		StoreId:    storeId,
		Title:      input.Title,
		Slug:       input.Slug,
		Status:     PageStatusDraft,
		IsHomePage: utils.NewFalse(),
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&page).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveActivityCreate(tx.WithContext(ctx), page.ID, page, "created page "+page.Title); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagPages); err != nil {
		return nil, err
	}

	return &page, nil
}

func UpdatePage(ctx context.Context, id int, input *NewPage) (*Page, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	if err := input.validate(ctx, storeId, id); err != nil {
		return nil, err
	}

	page, err := utils.FetchModel[Page](ctx, storeId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	before := *page
	if err := tx.WithContext(ctx).Model(&page).Updates(map[string]interface{}{
		"Title": input.Title,
		"Slug":  input.Slug,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createActivity(tx.WithContext(ctx), "UPDATE", id, "pages", before, page, "updated page "+input.Title); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*page); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagPages); err != nil {
		return nil, err
	}
	return page, nil
}

func DeletePage(ctx context.Context, id int) (*Page, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	db := config.GetDB()
	result, err := utils.FetchModel[Page](ctx, storeId, id)
	if err != nil {
		return nil, err
	}

	if utils.DereferencePtr(result.IsHomePage, false) {
		return nil, errors.New("cannot delete the home page")
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).
		Where("store_id = ? AND page_id = ?", storeId, id).
		Delete(&PageSection{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(&result).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveActivityDelete(tx.WithContext(ctx), id, result, "deleted page "+result.Title); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagPages); err != nil {
		return nil, err
	}

	return result, nil
}

func GetPage(ctx context.Context, id int) (*Page, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	db := config.GetDB()
	var result Page
	err := db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeId, id).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		First(&result).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

func GetPages(ctx context.Context, title *string) ([]*Page, error) {

	db := config.GetDB()
	var results []*Page

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	dbCtx := db.WithContext(ctx).Where("store_id = ?", storeId)
	if title != nil && len(*title) > 0 {
		dbCtx = dbCtx.Where("title LIKE ?", "%"+*title+"%")
	}
	err := dbCtx.Order("title").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

/* sections */

func loadPageForEdit(ctx context.Context, tx *gorm.DB, storeId string, pageId int) (*Page, error) {
	var page Page
	err := tx.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeId, pageId).
		First(&page).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &page, nil
}

func AddPageSection(ctx context.Context, pageId int, input *NewPageSection) (*PageSection, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	if err := ValidateSectionConfig(input.SectionType, input.Config); err != nil {
		return nil, err
	}
	configJSON, err := json.Marshal(input.Config)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	page, err := loadPageForEdit(ctx, tx, storeId, pageId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	position := input.Position
	if position <= 0 {
		// append to the end
		var maxPosition int
		if err := tx.WithContext(ctx).Model(&PageSection{}).
			Where("page_id = ?", pageId).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPosition).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		position = maxPosition + 1
	}

	isVisible := utils.NewTrue()
	if input.IsVisible != nil {
		isVisible = input.IsVisible
	}
	section := PageSection{
		StoreId:     storeId,
		PageId:      pageId,
		SectionType: input.SectionType,
		Position:    position,
		IsVisible:   isVisible,
		Config:      string(configJSON),
	}
	if err := tx.WithContext(ctx).Create(&section).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createActivity(tx.WithContext(ctx), "CREATE", section.ID, "page_sections", nil, section,
		"added "+input.SectionType+" section to "+page.Title); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*page); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagPages); err != nil {
		return nil, err
	}

	return &section, nil
}

func UpdatePageSection(ctx context.Context, pageId int, sectionId int, input *NewPageSection) (*PageSection, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	db := config.GetDB()
	tx := db.Begin()
	page, err := loadPageForEdit(ctx, tx, storeId, pageId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var section PageSection
	if err := tx.WithContext(ctx).
		Where("page_id = ? AND id = ?", pageId, sectionId).
		First(&section).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}

	// section type is fixed after creation, configs validate against it
	if input.SectionType != "" && input.SectionType != section.SectionType {
		tx.Rollback()
		return nil, errors.New("section type cannot be changed")
	}
	if err := ValidateSectionConfig(section.SectionType, input.Config); err != nil {
		tx.Rollback()
		return nil, err
	}
	configJSON, err := json.Marshal(input.Config)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	before := section
	updates := map[string]interface{}{
		"Config": string(configJSON),
	}
	if input.IsVisible != nil {
		updates["IsVisible"] = input.IsVisible
	}
	if err := tx.WithContext(ctx).Model(&section).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createActivity(tx.WithContext(ctx), "UPDATE", section.ID, "page_sections", before, section,
		"updated "+section.SectionType+" section on "+page.Title); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*page); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagPages); err != nil {
		return nil, err
	}

	return &section, nil
}

func RemovePageSection(ctx context.Context, pageId int, sectionId int) (*PageSection, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	db := config.GetDB()
	tx := db.Begin()
	page, err := loadPageForEdit(ctx, tx, storeId, pageId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var section PageSection
	if err := tx.WithContext(ctx).
		Where("page_id = ? AND id = ?", pageId, sectionId).
		First(&section).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}

	if err := tx.WithContext(ctx).Delete(&section).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createActivity(tx.WithContext(ctx), "DELETE", sectionId, "page_sections", section, nil,
		"removed "+section.SectionType+" section from "+page.Title); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*page); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagPages); err != nil {
		return nil, err
	}

	return &section, nil
}

// ReorderPageSections rewrites positions from the given id order.
// Every section of the page must appear exactly once.
func ReorderPageSections(ctx context.Context, pageId int, sectionIds []int) (*Page, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	db := config.GetDB()
	tx := db.Begin()
	page, err := loadPageForEdit(ctx, tx, storeId, pageId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var existingIds []int
	if err := tx.WithContext(ctx).Model(&PageSection{}).
		Where("page_id = ?", pageId).
		Pluck("id", &existingIds).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if len(existingIds) != len(utils.UniqueSlice(sectionIds)) || len(existingIds) != len(sectionIds) {
		tx.Rollback()
		return nil, errors.New("section ids must match the page's sections")
	}
	existing := make(map[int]bool, len(existingIds))
	for _, id := range existingIds {
		existing[id] = true
	}
	for _, id := range sectionIds {
		if !existing[id] {
			tx.Rollback()
			return nil, errors.New("section ids must match the page's sections")
		}
	}

	for position, id := range sectionIds {
		if err := tx.WithContext(ctx).Model(&PageSection{}).
			Where("id = ?", id).
			UpdateColumn("position", position+1).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := createActivity(tx.WithContext(ctx), "UPDATE", pageId, "pages", nil, sectionIds,
		"reordered sections on "+page.Title); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*page); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagPages); err != nil {
		return nil, err
	}

	return GetPage(ctx, pageId)
}

// PublishPage flips a draft live. A page needs at least one visible section
// to publish.
func PublishPage(ctx context.Context, id int) (*Page, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	db := config.GetDB()
	tx := db.Begin()
	page, err := loadPageForEdit(ctx, tx, storeId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var visibleCount int64
	if err := tx.WithContext(ctx).Model(&PageSection{}).
		Where("page_id = ? AND is_visible = true", id).
		Count(&visibleCount).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if visibleCount == 0 {
		tx.Rollback()
		return nil, errors.New("page needs at least one visible section")
	}

	now := time.Now().UTC()
	if err := tx.WithContext(ctx).Model(&page).Updates(map[string]interface{}{
		"Status":      PageStatusPublished,
		"PublishedAt": now,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createActivity(tx.WithContext(ctx), "UPDATE", id, "pages", nil, nil,
		"published page "+page.Title); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*page); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagPages); err != nil {
		return nil, err
	}

	return GetPage(ctx, id)
}

func UnpublishPage(ctx context.Context, id int) (*Page, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	db := config.GetDB()
	tx := db.Begin()
	page, err := loadPageForEdit(ctx, tx, storeId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if utils.DereferencePtr(page.IsHomePage, false) {
		tx.Rollback()
		return nil, errors.New("cannot unpublish the home page")
	}

	if err := tx.WithContext(ctx).Model(&page).Updates(map[string]interface{}{
		"Status":      PageStatusDraft,
		"PublishedAt": nil,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createActivity(tx.WithContext(ctx), "UPDATE", id, "pages", nil, nil,
		"unpublished page "+page.Title); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*page); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagPages); err != nil {
		return nil, err
	}

	return GetPage(ctx, id)
}

/* storefront (public) reads */

// GetPublishedPageBySlug serves the public site. Hidden sections are
// filtered out. Results are cached under the pages tag.
func GetPublishedPageBySlug(ctx context.Context, storeId string, slug string) (*Page, error) {

	cacheKey := "PublishedPage:" + storeId + ":" + slug
	var cached *Page
	exists, err := config.GetRedisObject(cacheKey, &cached)
	if err == nil && exists {
		return cached, nil
	}

	db := config.GetDB()
	var result Page
	dbCtx := db.WithContext(ctx).
		Where("store_id = ? AND status = ?", storeId, PageStatusPublished)
	if slug == "" {
		dbCtx = dbCtx.Where("is_home_page = true")
	} else {
		dbCtx = dbCtx.Where("slug = ?", slug)
	}
	err = dbCtx.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_visible = true").Order("position")
		}).
		First(&result).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if err := utils.StoreRedisObjectTagged(cacheKey, &result, utils.GetCacheLifespan(), storeId, utils.CacheTagPages); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateDefaultHomePage seeds a published home page with a hero section.
// Runs inside the store-creation transaction.
func CreateDefaultHomePage(tx *gorm.DB, ctx context.Context, storeId string, storeName string) error {

	heroConfig, err := json.Marshal(map[string]interface{}{
		"heading":   "Welcome to " + storeName,
		"alignment": "center",
	})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	page := Page{
		StoreId:     storeId,
		Title:       "Home",
		Slug:        "home",
		Status:      PageStatusPublished,
		IsHomePage:  utils.NewTrue(),
		PublishedAt: &now,
		Sections: []*PageSection{
			{
				StoreId:     storeId,
				SectionType: "hero",
				Position:    1,
				IsVisible:   utils.NewTrue(),
				Config:      string(heroConfig),
			},
		},
	}
	return tx.WithContext(ctx).Create(&page).Error
}
