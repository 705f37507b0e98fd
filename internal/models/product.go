package models

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a product category. Categories are managed elsewhere in
// the admin panel; this service only reads them for product association.
type Category struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Product represents a product entity with its owned image records.
type Product struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	Price       string         `json:"price" gorm:"not null"`
	Count       int            `json:"count" gorm:"not null;default:0"`
	CategoryID  uuid.UUID      `json:"categoryId" gorm:"type:uuid;not null;index"`
	Category    *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Images      []ProductImage `json:"images,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// ProductImage represents a stored image file belonging to a product.
// Exactly one image per product carries IsMain whenever the product has any.
type ProductImage struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;index"`
	FileName  string    `json:"fileName" gorm:"not null"`
	IsMain    bool      `json:"isMain" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
}

// MainImage returns the file name of the image flagged as main, or "".
func (p *Product) MainImage() string {
	for _, img := range p.Images {
		if img.IsMain {
			return img.FileName
		}
	}
	return ""
}

// CreateProductRequest represents the create form submission. Photos arrive
// separately as multipart file parts.
type CreateProductRequest struct {
	Name        string `form:"name" json:"name"`
	Description string `form:"description" json:"description"`
	Price       string `form:"price" json:"price"`
	Count       int    `form:"count" json:"count"`
	CategoryID  string `form:"categoryId" json:"categoryId"`
}

// UpdateProductRequest represents the edit form submission. Scalar fields are
// applied unconditionally; photos are optional and replace the whole image
// set when present.
type UpdateProductRequest struct {
	Name        string `form:"name" json:"name"`
	Description string `form:"description" json:"description"`
	Price       string `form:"price" json:"price"`
	Count       int    `form:"count" json:"count"`
	CategoryID  string `form:"categoryId" json:"categoryId"`
}

// ProductSummary is the listing/detail projection of a product.
type ProductSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        string    `json:"price"`
	Count        int       `json:"count"`
	CategoryName string    `json:"categoryName"`
	MainImage    string    `json:"mainImage,omitempty"`
}

// Response types
type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// NewPaginationInfo computes the page envelope for a listing. The total page
// count uses integer ceiling division; the requested page is passed through
// unclamped, so an out-of-range page simply yields an empty data slice.
func NewPaginationInfo(total int64, page, limit int) *PaginationInfo {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &PaginationInfo{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

type ProductResponse struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data"`
	Message *string  `json:"message,omitempty"`
}

type ProductDetailResponse struct {
	Success bool            `json:"success"`
	Data    *ProductSummary `json:"data"`
}

type ProductListResponse struct {
	Success    bool             `json:"success"`
	Data       []ProductSummary `json:"data"`
	Pagination *PaginationInfo  `json:"pagination"`
}

type CategoryListResponse struct {
	Success bool       `json:"success"`
	Data    []Category `json:"data"`
}

// ProductFormResponse carries what the admin UI needs to render a create or
// edit form: category options plus, for edit, the stored product values.
type ProductFormResponse struct {
	Success    bool            `json:"success"`
	Categories []Category      `json:"categories"`
	Product    *ProductSummary `json:"product,omitempty"`
	Images     []ProductImage  `json:"images,omitempty"`
}

type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
	// Echo carries the rejected create submission back for re-display, or the
	// stored pre-edit values when an edit submission is rejected.
	Echo interface{} `json:"echo,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// ExportProductsRequest represents a catalog export request.
type ExportProductsRequest struct {
	Format string `json:"format" binding:"required"` // csv, xlsx
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// TableName returns the table name for the ProductImage model
func (ProductImage) TableName() string {
	return "product_images"
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
