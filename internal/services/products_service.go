package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strconv"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/repository"
	"catalog-admin-service/internal/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProductsServiceInterface is the operation surface the handlers consume.
type ProductsServiceInterface interface {
	List(ctx context.Context, page, limit int) ([]models.ProductSummary, *models.PaginationInfo, error)
	ListAll(ctx context.Context) ([]models.Product, error)
	Detail(ctx context.Context, id string) (*models.ProductSummary, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, req models.CreateProductRequest, photos []*multipart.FileHeader) (*models.Product, error)
	Update(ctx context.Context, id string, req models.UpdateProductRequest, photos []*multipart.FileHeader) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

// ProductsService sequences validation, image processing and repository
// mutation for the product write flows. Persistence and IO failures propagate
// to the caller unmodified; only input errors are turned into DomainErrors.
type ProductsService struct {
	repo     repository.ProductsRepositoryInterface
	images   *ImageSetBuilder
	store    storage.FileStore
	imageDir string
	logger   *logrus.Logger
}

var _ ProductsServiceInterface = (*ProductsService)(nil)

func NewProductsService(repo repository.ProductsRepositoryInterface, images *ImageSetBuilder, store storage.FileStore, imageDir string, logger *logrus.Logger) *ProductsService {
	return &ProductsService{
		repo:     repo,
		images:   images,
		store:    store,
		imageDir: imageDir,
		logger:   logger,
	}
}

func parseProductID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, models.ErrInvalidProductID
	}
	return parsed, nil
}

// validateFields checks the scalar form fields shared by create and edit.
// The category existence check hits the repository; a missing category is an
// input error, not a persistence failure.
func (s *ProductsService) validateFields(ctx context.Context, name, price, categoryID string, count int) (uuid.UUID, error) {
	if name == "" {
		return uuid.Nil, models.NewFieldError(models.ErrCodeValidation, "name", "Product name is required")
	}
	parsedPrice, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return uuid.Nil, models.NewFieldError(models.ErrCodeValidation, "price", "Price must be a decimal number")
	}
	if parsedPrice < 0 {
		return uuid.Nil, models.NewFieldError(models.ErrCodeValidation, "price", "Price must not be negative")
	}
	if count < 0 {
		return uuid.Nil, models.NewFieldError(models.ErrCodeValidation, "count", "Count must not be negative")
	}
	if categoryID == "" {
		return uuid.Nil, models.NewFieldError(models.ErrCodeValidation, "categoryId", "Category is required")
	}
	parsedCategory, err := uuid.Parse(categoryID)
	if err != nil {
		return uuid.Nil, models.NewFieldError(models.ErrCodeValidation, "categoryId", "Invalid category ID format")
	}
	if _, err := s.repo.GetCategoryByID(ctx, parsedCategory); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, models.NewFieldError(models.ErrCodeValidation, "categoryId", "Category does not exist")
		}
		return uuid.Nil, err
	}
	return parsedCategory, nil
}

// Summarize maps a product aggregate to its display projection, resolving
// the category name and main image and sanitizing the description.
func Summarize(product *models.Product) *models.ProductSummary {
	summary := &models.ProductSummary{
		ID:          product.ID,
		Name:        product.Name,
		Description: SanitizeDescription(product.Description),
		Price:       product.Price,
		Count:       product.Count,
		MainImage:   product.MainImage(),
	}
	if product.Category != nil {
		summary.CategoryName = product.Category.Name
	}
	return summary
}

// List returns one page of product summaries plus the pagination envelope.
func (s *ProductsService) List(ctx context.Context, page, limit int) ([]models.ProductSummary, *models.PaginationInfo, error) {
	products, total, err := s.repo.GetProducts(ctx, page, limit)
	if err != nil {
		return nil, nil, err
	}

	summaries := make([]models.ProductSummary, 0, len(products))
	for i := range products {
		summaries = append(summaries, *Summarize(&products[i]))
	}

	return summaries, models.NewPaginationInfo(total, page, limit), nil
}

// ListAll returns the full catalog, used by export.
func (s *ProductsService) ListAll(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAllProducts(ctx)
}

// GetProduct fetches the full aggregate by its string id.
func (s *ProductsService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	productID, err := parseProductID(id)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// Detail returns the display projection of a product with its description
// sanitized.
func (s *ProductsService) Detail(ctx context.Context, id string) (*models.ProductSummary, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return Summarize(product), nil
}

// Categories returns the category options for product forms.
func (s *ProductsService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.repo.GetCategories(ctx)
}

// Create validates the submission, stores the photo batch and persists the
// new aggregate. The photo batch is required: an empty batch is rejected
// before any file is written.
func (s *ProductsService) Create(ctx context.Context, req models.CreateProductRequest, photos []*multipart.FileHeader) (*models.Product, error) {
	categoryID, err := s.validateFields(ctx, req.Name, req.Price, req.CategoryID, req.Count)
	if err != nil {
		return nil, err
	}
	if len(photos) == 0 {
		return nil, models.ErrNoImages
	}

	images, err := s.images.Build(photos)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Count:       req.Count,
		CategoryID:  categoryID,
		Images:      images,
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"productId": product.ID,
		"images":    len(images),
	}).Info("Product created")

	return product, nil
}

// Update applies an edit submission to a stored product. When the submission
// is invalid the stored, unchanged product is returned alongside the error so
// the caller can re-display the pre-edit values. A supplied photo batch
// replaces the whole image set, files included; no batch leaves the images
// untouched.
func (s *ProductsService) Update(ctx context.Context, id string, req models.UpdateProductRequest, photos []*multipart.FileHeader) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	categoryID, err := s.validateFields(ctx, req.Name, req.Price, req.CategoryID, req.Count)
	if err != nil {
		return product, err
	}

	var newImages []models.ProductImage
	if len(photos) > 0 {
		newImages, err = s.images.Build(photos)
		if err != nil {
			return product, err
		}
		// New files are on disk; the old set is now garbage either way.
		for _, img := range product.Images {
			if err := s.store.Delete(s.imageDir, img.FileName); err != nil {
				s.logger.WithError(err).WithField("file", img.FileName).Warn("Failed to delete replaced image file")
			}
		}
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Count = req.Count
	product.CategoryID = categoryID

	if err := s.repo.UpdateProduct(ctx, product, newImages); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"productId":      product.ID,
		"imagesReplaced": newImages != nil,
	}).Info("Product updated")

	return product, nil
}

// Delete removes a product, its image rows and its image files. File deletes
// are best-effort: the adapter treats missing files as success and real IO
// errors are logged without blocking the row removal.
func (s *ProductsService) Delete(ctx context.Context, id string) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	for _, img := range product.Images {
		if err := s.store.Delete(s.imageDir, img.FileName); err != nil {
			s.logger.WithError(err).WithField("file", img.FileName).Warn("Failed to delete image file")
		}
	}

	if err := s.repo.DeleteProduct(ctx, product); err != nil {
		return err
	}

	s.logger.WithField("productId", product.ID).Info("Product deleted")
	return nil
}
