package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalog-admin-service/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Cache TTL constants
const (
	ProductCacheTTL  = 5 * time.Minute  // Single product cache
	CategoryCacheTTL = 30 * time.Minute // Categories rarely change
)

// ProductsRepositoryInterface is implemented by the gorm-backed repository
// and by test mocks.
type ProductsRepositoryInterface interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	GetProducts(ctx context.Context, page, limit int) ([]models.Product, int64, error)
	GetAllProducts(ctx context.Context) ([]models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product, newImages []models.ProductImage) error
	DeleteProduct(ctx context.Context, product *models.Product) error
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, categoryID uuid.UUID) (*models.Category, error)
}

type ProductsRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

var _ ProductsRepositoryInterface = (*ProductsRepository)(nil)

func NewProductsRepository(db *gorm.DB, redisClient *redis.Client) *ProductsRepository {
	return &ProductsRepository{
		db:    db,
		redis: redisClient,
	}
}

func productCacheKey(productID uuid.UUID) string {
	return fmt.Sprintf("catalog:product:%s", productID.String())
}

const categoriesCacheKey = "catalog:categories"

// invalidateProductCache drops the cached copy of a product after a write.
func (r *ProductsRepository) invalidateProductCache(ctx context.Context, productID uuid.UUID) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Del(ctx, productCacheKey(productID)).Err()
}

// Product CRUD Operations

// CreateProduct inserts a product together with its image rows as one
// transaction (gorm persists the Images association in the same unit of work).
func (r *ProductsRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	for i := range product.Images {
		if product.Images[i].ID == uuid.Nil {
			product.Images[i].ID = uuid.New()
		}
		product.Images[i].ProductID = product.ID
	}

	return r.db.WithContext(ctx).Create(product).Error
}

// GetProductByID retrieves a product with its category and images, caching
// the result in Redis when a client is configured.
func (r *ProductsRepository) GetProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	cacheKey := productCacheKey(productID)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var product models.Product
			if err := json.Unmarshal([]byte(val), &product); err == nil {
				return &product, nil
			}
		}
	}

	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&product, "id = ?", productID).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(product); err == nil {
			r.redis.Set(ctx, cacheKey, data, ProductCacheTTL)
		}
	}

	return &product, nil
}

// GetProducts retrieves one page of products with categories and images
// resolved, plus the total row count for pagination.
func (r *ProductsRepository) GetProducts(ctx context.Context, page, limit int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// GetAllProducts retrieves the full catalog, used by export.
func (r *ProductsRepository) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images").
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateProduct applies scalar field updates and, when newImages is non-nil,
// replaces the whole image collection, as one transaction.
func (r *ProductsRepository) UpdateProduct(ctx context.Context, product *models.Product, newImages []models.ProductImage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if newImages != nil {
			if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
				return err
			}
			for i := range newImages {
				if newImages[i].ID == uuid.Nil {
					newImages[i].ID = uuid.New()
				}
				newImages[i].ProductID = product.ID
			}
			if err := tx.Create(&newImages).Error; err != nil {
				return err
			}
			product.Images = newImages
		}

		updates := map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"count":       product.Count,
			"category_id": product.CategoryID,
			"updated_at":  time.Now(),
		}
		return tx.Model(&models.Product{}).Where("id = ?", product.ID).Updates(updates).Error
	})

	if err == nil {
		r.invalidateProductCache(ctx, product.ID)
	}
	return err
}

// DeleteProduct removes a product row and cascades its image rows in one
// transaction.
func (r *ProductsRepository) DeleteProduct(ctx context.Context, product *models.Product) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", product.ID).Error
	})

	if err == nil {
		r.invalidateProductCache(ctx, product.ID)
	}
	return err
}

// Category read access (categories are owned by another part of the admin
// panel; this repository never writes them)

// GetCategories returns all categories ordered by name, cached in Redis.
func (r *ProductsRepository) GetCategories(ctx context.Context) ([]models.Category, error) {
	if r.redis != nil {
		val, err := r.redis.Get(ctx, categoriesCacheKey).Result()
		if err == nil {
			var categories []models.Category
			if err := json.Unmarshal([]byte(val), &categories); err == nil {
				return categories, nil
			}
		}
	}

	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(categories); err == nil {
			r.redis.Set(ctx, categoriesCacheKey, data, CategoryCacheTTL)
		}
	}

	return categories, nil
}

// GetCategoryByID retrieves a single category.
func (r *ProductsRepository) GetCategoryByID(ctx context.Context, categoryID uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", categoryID).Error; err != nil {
		return nil, err
	}
	return &category, nil
}
