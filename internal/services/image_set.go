package services

import (
	"fmt"
	"mime/multipart"
	"strings"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/storage"
)

// ImageConstraints bound what an uploaded product photo may be.
type ImageConstraints struct {
	AllowedTypePrefix string
	MaxSizeKB         int
}

// ImageSetBuilder turns a batch of uploaded photos into stored ProductImage
// records. The whole batch is validated before any file is written, so a
// rejected batch leaves no partial side effects on disk.
type ImageSetBuilder struct {
	store       storage.FileStore
	imageDir    string
	constraints ImageConstraints
}

func NewImageSetBuilder(store storage.FileStore, imageDir string, constraints ImageConstraints) *ImageSetBuilder {
	return &ImageSetBuilder{
		store:       store,
		imageDir:    imageDir,
		constraints: constraints,
	}
}

// Build validates and stores a photo batch, returning one ProductImage per
// payload in input order. The first record carries IsMain.
func (b *ImageSetBuilder) Build(photos []*multipart.FileHeader) ([]models.ProductImage, error) {
	if len(photos) == 0 {
		return nil, models.ErrNoImages
	}

	for _, photo := range photos {
		contentType := photo.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, b.constraints.AllowedTypePrefix) {
			return nil, models.NewFieldError(models.ErrCodeInvalidType, "photos",
				"File type must be %s*, got %q for %s", b.constraints.AllowedTypePrefix, contentType, photo.Filename)
		}
		if photo.Size > int64(b.constraints.MaxSizeKB)*1024 {
			return nil, models.NewFieldError(models.ErrCodeFileTooLarge, "photos",
				"Image size must be max %dkb, %s is too large", b.constraints.MaxSizeKB, photo.Filename)
		}
	}

	images := make([]models.ProductImage, 0, len(photos))
	for _, photo := range photos {
		src, err := photo.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open uploaded file %s: %w", photo.Filename, err)
		}
		storedName, err := b.store.Save(b.imageDir, photo.Filename, src)
		src.Close()
		if err != nil {
			return nil, err
		}
		images = append(images, models.ProductImage{FileName: storedName})
	}

	images[0].IsMain = true
	return images, nil
}
