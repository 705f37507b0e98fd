package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"catalog-admin-service/internal/events"
	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/services"
)

type ProductsHandler struct {
	svc             services.ProductsServiceInterface
	eventsPublisher *events.Publisher
	defaultPageSize int
	maxPageSize     int
}

// NewProductsHandler wires the product service into gin. eventsPublisher may
// be nil when NATS is not configured.
func NewProductsHandler(svc services.ProductsServiceInterface, eventsPublisher *events.Publisher, defaultPageSize, maxPageSize int) *ProductsHandler {
	return &ProductsHandler{
		svc:             svc,
		eventsPublisher: eventsPublisher,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// respondError maps service errors onto the HTTP surface. DomainErrors are
// recoverable input errors (400/404 with the error envelope, optionally
// echoing a display model); anything else is a fatal 500.
func respondError(c *gin.Context, err error, echo interface{}) {
	var domainErr *models.DomainError
	if errors.As(err, &domainErr) {
		status := http.StatusBadRequest
		if domainErr.Code == models.ErrCodeNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    domainErr.Code,
				Message: domainErr.Message,
				Field:   domainErr.Field,
			},
			Echo: echo,
		})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "INTERNAL_ERROR",
			Message: err.Error(),
		},
	})
}

// requestPhotos extracts the "photos" file parts, tolerating non-multipart
// requests.
func requestPhotos(c *gin.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File["photos"]
}

func (h *ProductsHandler) pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.defaultPageSize)))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > h.maxPageSize {
		limit = h.defaultPageSize
	}
	return page, limit
}

// GetProducts returns a page of product summaries
// @Summary List products
// @Description Get one page of products with category and main image resolved
// @Tags Products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(4)
// @Success 200 {object} models.ProductListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /products [get]
func (h *ProductsHandler) GetProducts(c *gin.Context) {
	page, limit := h.pageParams(c)

	summaries, pagination, err := h.svc.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Success:    true,
		Data:       summaries,
		Pagination: pagination,
	})
}

// GetCreateForm returns the category options needed to render a create form
// @Summary Create form data
// @Description Get category options for the product create form
// @Tags Products
// @Produce json
// @Success 200 {object} models.ProductFormResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /products/new [get]
func (h *ProductsHandler) GetCreateForm(c *gin.Context) {
	categories, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, models.ProductFormResponse{
		Success:    true,
		Categories: categories,
	})
}

// CreateProduct creates a new product from a multipart form submission
// @Summary Create product
// @Description Create a product with a non-empty photo batch; the first photo becomes the main image
// @Tags Products
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Product name"
// @Param description formData string false "Rich-text description"
// @Param price formData string true "Non-negative decimal price"
// @Param count formData int false "Stock count"
// @Param categoryId formData string true "Category ID"
// @Param photos formData file true "Product photos"
// @Success 201 {object} models.ProductResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /products [post]
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    models.ErrCodeValidation,
				Message: err.Error(),
			},
		})
		return
	}

	// A non-multipart submission simply has no photos, which Create rejects.
	photos := requestPhotos(c)

	product, err := h.svc.Create(c.Request.Context(), req, photos)
	if err != nil {
		// A rejected create echoes the submitted values for re-display.
		respondError(c, err, req)
		return
	}

	if h.eventsPublisher != nil {
		h.eventsPublisher.PublishProductCreated(c.Request.Context(), product)
	}

	c.JSON(http.StatusCreated, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// GetProduct returns a single product detail
// @Summary Get product
// @Description Get a product by ID with its description markup stripped
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.ProductDetailResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	summary, err := h.svc.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, models.ProductDetailResponse{
		Success: true,
		Data:    summary,
	})
}

// GetEditForm returns the stored product values and category options for the
// edit form
// @Summary Edit form data
// @Description Get current product values plus category options for the edit form
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.ProductFormResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id}/edit [get]
func (h *ProductsHandler) GetEditForm(c *gin.Context) {
	product, err := h.svc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, nil)
		return
	}

	categories, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, models.ProductFormResponse{
		Success:    true,
		Categories: categories,
		Product:    services.Summarize(product),
		Images:     product.Images,
	})
}

// UpdateProduct applies an edit form submission
// @Summary Update product
// @Description Update product fields; an optional photo batch replaces the whole image set
// @Tags Products
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Product ID"
// @Param name formData string true "Product name"
// @Param description formData string false "Rich-text description"
// @Param price formData string true "Non-negative decimal price"
// @Param count formData int false "Stock count"
// @Param categoryId formData string true "Category ID"
// @Param photos formData file false "Replacement photos"
// @Success 200 {object} models.ProductResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /products/{id} [put]
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    models.ErrCodeValidation,
				Message: err.Error(),
			},
		})
		return
	}

	// Photos are optional on edit; a missing multipart section means the
	// existing image set stays untouched.
	photos := requestPhotos(c)

	product, err := h.svc.Update(c.Request.Context(), c.Param("id"), req, photos)
	if err != nil {
		// A rejected edit echoes the STORED values, not the submission.
		var echo interface{}
		if product != nil {
			echo = services.Summarize(product)
		}
		respondError(c, err, echo)
		return
	}

	if h.eventsPublisher != nil {
		h.eventsPublisher.PublishProductUpdated(c.Request.Context(), product)
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// DeleteProduct removes a product, its image rows and its stored files
// @Summary Delete product
// @Description Delete a product; associated image files are removed best-effort
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")

	product, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, nil)
		return
	}

	if h.eventsPublisher != nil {
		h.eventsPublisher.PublishProductDeleted(c.Request.Context(), product)
	}

	message := "Product deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: &message,
	})
}

// GetCategories returns all categories
// @Summary List categories
// @Description Get all categories available for product association
// @Tags Categories
// @Produce json
// @Success 200 {object} models.CategoryListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /categories [get]
func (h *ProductsHandler) GetCategories(c *gin.Context) {
	categories, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, models.CategoryListResponse{
		Success: true,
		Data:    categories,
	})
}
