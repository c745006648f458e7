package models

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/utils"
	"gorm.io/gorm"
)

type Image struct {
	ID            int    `gorm:"primary_key" json:"id"`
	ImageUrl      string `json:"image_url"`
	ThumbnailUrl  string `json:"thumbnail_url"`
	ReferenceType string `gorm:"index:idx_images_reference" json:"reference_type"`
	ReferenceID   int    `gorm:"index:idx_images_reference" json:"reference_id"`
}

type NewImage struct {
	HasId
	HasIsDeleted
	ImageUrl     string `json:"image_url"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

type UploadResponse struct {
	ImageUrl     string `json:"image_url"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

func mapNewImages(imageInput []*NewImage, referenceType string, referenceId int) ([]*Image, error) {

	var images []*Image

	for _, input := range imageInput {
		image, err := input.MapInput(referenceType, referenceId)
		if err != nil {
			return nil, err
		}

		images = append(images, image)
	}
	return images, nil
}

// UploadImageBytes stores the original under images/ and a 200px-wide
// thumbnail under images/thumbnails/, returning both public URLs.
func UploadImageBytes(ctx context.Context, storeId string, filename string, data []byte) (string, string, error) {

	if len(data) == 0 {
		return "", "", errors.New("empty file provided")
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		return "", "", errors.New("file has no extension")
	}
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	storagePath := "images/"
	uniqueFilename := storeId + "-" + utils.GenerateUniqueFilename() + ext
	originalObjectKey := filepath.Join(storagePath, uniqueFilename)
	thumbnailObjectKey := filepath.Join(storagePath, "thumbnails", uniqueFilename)

	if err := utils.UploadBytesToGCS(ctx, originalObjectKey, data, contentType); err != nil {
		return "", "", err
	}

	thumbnailData, err := generateThumbnail(data)
	if err != nil {
		return "", "", err
	}
	if err := utils.UploadBytesToGCS(ctx, thumbnailObjectKey, thumbnailData, "image/jpeg"); err != nil {
		return "", "", err
	}

	return utils.BuildObjectAccessURL(originalObjectKey), utils.BuildObjectAccessURL(thumbnailObjectKey), nil
}

// remove single image, including thumbnail
func RemoveImage(ctx context.Context, fullUrl string) (*UploadResponse, error) {

	// only remove image if not used in database
	var count int64
	db := config.GetDB()

	if err := db.Model(&Image{}).WithContext(ctx).Where("image_url = ?", fullUrl).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("cannot delete image associated with database")
	}

	objectKey := utils.ExtractObjectKeyFromURL(fullUrl)
	if objectKey == "" {
		return nil, errors.New("invalid url")
	}
	if ok, err := utils.ObjectExistsInGCS(ctx, objectKey); !ok || err != nil {
		return nil, errors.New("object does not exist")
	}

	if err := utils.DeleteImageFromGCS(ctx, objectKey); err != nil {
		return nil, err
	}
	parts := strings.SplitN(objectKey, "/", 2)
	if len(parts) != 2 {
		return nil, errors.New("invalid object key")
	}
	thumbnailObjectKey := filepath.Join(parts[0], "thumbnails", parts[1])
	if err := utils.DeleteImageFromGCS(ctx, thumbnailObjectKey); err != nil {
		return nil, err
	}

	return &UploadResponse{
		ImageUrl:     utils.BuildObjectAccessURL(objectKey),
		ThumbnailUrl: utils.BuildObjectAccessURL(thumbnailObjectKey),
	}, nil
}

func generateThumbnail(originalData []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(originalData))
	if err != nil {
		return nil, err
	}

	thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)

	var thumbnailBuffer bytes.Buffer
	err = imaging.Encode(&thumbnailBuffer, thumbnail, imaging.JPEG)
	if err != nil {
		return nil, err
	}

	return thumbnailBuffer.Bytes(), nil
}

func (img *Image) Store(tx *gorm.DB, ctx context.Context) error {
	if err := tx.WithContext(ctx).Create(&img).Error; err != nil {
		return err
	}
	return nil
}

func (img *Image) Update(tx *gorm.DB, ctx context.Context, data map[string]interface{}) error {
	// update existing image
	if err := tx.WithContext(ctx).Model(&img).Updates(data).Error; err != nil {
		return err
	}
	return nil
}

// expected img is loaded from db
func (img *Image) Delete(tx *gorm.DB, ctx context.Context) error {

	if err := tx.WithContext(ctx).Delete(&img).Error; err != nil {
		return err
	}
	if err := utils.DeleteImageFromGCS(ctx, utils.ExtractObjectKeyFromURL(img.ImageUrl)); err != nil {
		return err
	}
	if img.ThumbnailUrl != "" {
		if err := utils.DeleteImageFromGCS(ctx, utils.ExtractObjectKeyFromURL(img.ThumbnailUrl)); err != nil {
			return err
		}
	}
	return nil
}

// map newImage to Image, for db.Create(&image)
func (input NewImage) MapInput(referenceType string, referenceId int) (*Image, error) {
	if err := utils.CheckImageExistInGCS(input.ImageUrl); err != nil {
		fmt.Println("Error checking image existence:", err)
		return nil, err
	}
	if input.ThumbnailUrl != "" {
		if err := utils.CheckImageExistInGCS(input.ThumbnailUrl); err != nil {
			fmt.Println("Error checking thumbnail existence:", err)
			return nil, err
		}
	}
	return &Image{
		ReferenceType: referenceType,
		ReferenceID:   referenceId,
		ImageUrl:      input.ImageUrl,
		ThumbnailUrl:  input.ThumbnailUrl,
	}, nil
}

func (input NewImage) Fillable() (map[string]interface{}, error) {
	if err := utils.CheckImageExistInGCS(input.ImageUrl); err != nil {
		fmt.Println("Error checking image existence:", err)
		return nil, err
	}
	if input.ThumbnailUrl != "" {
		if err := utils.CheckImageExistInGCS(input.ThumbnailUrl); err != nil {
			fmt.Println("Error checking thumbnail existence:", err)
			return nil, err
		}
	}
	return map[string]interface{}{
		"ImageUrl":     input.ImageUrl,
		"ThumbnailUrl": input.ThumbnailUrl,
	}, nil
}

func UpsertImages(ctx context.Context, tx *gorm.DB, inputImages []*NewImage, referenceType string, referenceId int) ([]*Image, error) {
	return UpsertPolymorphicAssociation(ctx, tx, inputImages, referenceType, referenceId)
}
