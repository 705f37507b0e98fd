package services

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/repository"
	"catalog-admin-service/internal/storage"
)

// MockProductsRepository is a mock implementation of ProductsRepositoryInterface
type MockProductsRepository struct {
	mock.Mock
}

var _ repository.ProductsRepositoryInterface = (*MockProductsRepository)(nil)

func (m *MockProductsRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	if args.Error(0) == nil && product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockProductsRepository) GetProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductsRepository) GetProducts(ctx context.Context, page, limit int) ([]models.Product, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductsRepository) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductsRepository) UpdateProduct(ctx context.Context, product *models.Product, newImages []models.ProductImage) error {
	args := m.Called(ctx, product, newImages)
	return args.Error(0)
}

func (m *MockProductsRepository) DeleteProduct(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductsRepository) GetCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockProductsRepository) GetCategoryByID(ctx context.Context, categoryID uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

type serviceFixture struct {
	svc      *ProductsService
	repo     *MockProductsRepository
	store    storage.FileStore
	root     string
	category *models.Category
}

func newServiceFixture(t *testing.T) *serviceFixture {
	root := t.TempDir()
	store := storage.NewLocalFileStore(root)
	builder := NewImageSetBuilder(store, "img", ImageConstraints{
		AllowedTypePrefix: "image/",
		MaxSizeKB:         200,
	})
	repo := new(MockProductsRepository)
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.ErrorLevel)

	return &serviceFixture{
		svc:   NewProductsService(repo, builder, store, "img", logger),
		repo:  repo,
		store: store,
		root:  root,
		category: &models.Category{
			ID:   uuid.New(),
			Name: "Electronics",
		},
	}
}

func (f *serviceFixture) createRequest() models.CreateProductRequest {
	return models.CreateProductRequest{
		Name:       "Keyboard",
		Price:      "49.90",
		Count:      10,
		CategoryID: f.category.ID.String(),
	}
}

func (f *serviceFixture) updateRequest() models.UpdateProductRequest {
	return models.UpdateProductRequest{
		Name:       "Keyboard v2",
		Price:      "59.90",
		Count:      5,
		CategoryID: f.category.ID.String(),
	}
}

// storedProduct builds a persisted product whose image files exist on disk.
func (f *serviceFixture) storedProduct(t *testing.T, imageNames ...string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:          uuid.New(),
		Name:        "Keyboard",
		Description: "<p>Old</p>",
		Price:       "49.90",
		Count:       10,
		CategoryID:  f.category.ID,
		Category:    f.category,
	}
	for i, name := range imageNames {
		require.NoError(t, os.MkdirAll(f.root+"/img", 0o755))
		require.NoError(t, os.WriteFile(f.store.Path("img", name), []byte("old"), 0o644))
		product.Images = append(product.Images, models.ProductImage{
			ID:        uuid.New(),
			ProductID: product.ID,
			FileName:  name,
			IsMain:    i == 0,
		})
	}
	return product
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestCreateProduct(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.On("GetCategoryByID", ctx, f.category.ID).Return(f.category, nil)

	var persisted *models.Product
	f.repo.On("CreateProduct", ctx, mock.AnythingOfType("*models.Product")).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*models.Product)
		}).Return(nil)

	photos := makePhotoBatch(t, []photoSpec{
		{name: "front.png", contentType: "image/png", content: []byte("a")},
		{name: "back.png", contentType: "image/png", content: []byte("b")},
	})

	product, err := f.svc.Create(ctx, f.createRequest(), photos)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, product, persisted)

	require.Len(t, product.Images, 2)
	assert.True(t, product.Images[0].IsMain)
	assert.False(t, product.Images[1].IsMain)
	assert.Equal(t, f.category.ID, product.CategoryID)
	assert.True(t, fileExists(f.store.Path("img", product.Images[0].FileName)))
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	req := f.createRequest()
	req.Price = "-1.00"

	_, err := f.svc.Create(ctx, req, makePhotoBatch(t, []photoSpec{
		{name: "front.png", contentType: "image/png", content: []byte("a")},
	}))

	var domainErr *models.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, models.ErrCodeValidation, domainErr.Code)
	assert.Equal(t, "price", domainErr.Field)
	f.repo.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	assert.Equal(t, 0, storedFileCount(t, f.root))
}

func TestCreateProductRequiresPhotos(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.On("GetCategoryByID", ctx, f.category.ID).Return(f.category, nil)

	_, err := f.svc.Create(ctx, f.createRequest(), nil)

	var domainErr *models.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, models.ErrCodeNoImages, domainErr.Code)
	f.repo.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestUpdateProductWithoutPhotosKeepsImages(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	stored := f.storedProduct(t, "old-main.png", "old-extra.png")
	f.repo.On("GetProductByID", ctx, stored.ID).Return(stored, nil)
	f.repo.On("GetCategoryByID", ctx, f.category.ID).Return(f.category, nil)
	f.repo.On("UpdateProduct", ctx, stored, []models.ProductImage(nil)).Return(nil)

	product, err := f.svc.Update(ctx, stored.ID.String(), f.updateRequest(), nil)
	require.NoError(t, err)

	assert.Equal(t, "Keyboard v2", product.Name)
	assert.Equal(t, "59.90", product.Price)
	require.Len(t, product.Images, 2)
	assert.True(t, fileExists(f.store.Path("img", "old-main.png")))
	assert.True(t, fileExists(f.store.Path("img", "old-extra.png")))
	f.repo.AssertExpectations(t)
}

func TestUpdateProductWithPhotosReplacesImageSet(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	stored := f.storedProduct(t, "old-main.png", "old-extra.png")
	f.repo.On("GetProductByID", ctx, stored.ID).Return(stored, nil)
	f.repo.On("GetCategoryByID", ctx, f.category.ID).Return(f.category, nil)

	var replacement []models.ProductImage
	f.repo.On("UpdateProduct", ctx, stored, mock.AnythingOfType("[]models.ProductImage")).
		Run(func(args mock.Arguments) {
			replacement = args.Get(2).([]models.ProductImage)
		}).Return(nil)

	photos := makePhotoBatch(t, []photoSpec{
		{name: "new-main.png", contentType: "image/png", content: []byte("n1")},
		{name: "new-extra.png", contentType: "image/png", content: []byte("n2")},
	})

	_, err := f.svc.Update(ctx, stored.ID.String(), f.updateRequest(), photos)
	require.NoError(t, err)

	// Old files are gone, new files exist, first new photo is main.
	assert.False(t, fileExists(f.store.Path("img", "old-main.png")))
	assert.False(t, fileExists(f.store.Path("img", "old-extra.png")))
	require.Len(t, replacement, 2)
	assert.True(t, replacement[0].IsMain)
	assert.False(t, replacement[1].IsMain)
	assert.Contains(t, replacement[0].FileName, "new-main.png")
	assert.True(t, fileExists(f.store.Path("img", replacement[0].FileName)))
}

func TestUpdateProductInvalidSubmissionEchoesStoredValues(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	stored := f.storedProduct(t, "old-main.png")
	f.repo.On("GetProductByID", ctx, stored.ID).Return(stored, nil)

	req := f.updateRequest()
	req.Price = "-5"

	product, err := f.svc.Update(ctx, stored.ID.String(), req, nil)

	var domainErr *models.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "price", domainErr.Field)
	// The pre-edit record comes back for re-display, not the submission.
	require.NotNil(t, product)
	assert.Equal(t, "Keyboard", product.Name)
	assert.Equal(t, "49.90", product.Price)
	f.repo.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateProductNotFound(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	missing := uuid.New()
	f.repo.On("GetProductByID", ctx, missing).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.svc.Update(ctx, missing.String(), f.updateRequest(), nil)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestUpdateProductMalformedID(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Update(context.Background(), "not-a-uuid", f.updateRequest(), nil)
	assert.ErrorIs(t, err, models.ErrInvalidProductID)
}

func TestDeleteProductRemovesFilesAndRow(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	stored := f.storedProduct(t, "main.png", "extra.png")
	f.repo.On("GetProductByID", ctx, stored.ID).Return(stored, nil)
	f.repo.On("DeleteProduct", ctx, stored).Return(nil)

	require.NoError(t, f.svc.Delete(ctx, stored.ID.String()))

	assert.False(t, fileExists(f.store.Path("img", "main.png")))
	assert.False(t, fileExists(f.store.Path("img", "extra.png")))
	f.repo.AssertExpectations(t)
}

func TestDeleteProductNotFound(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	missing := uuid.New()
	f.repo.On("GetProductByID", ctx, missing).Return(nil, gorm.ErrRecordNotFound)

	err := f.svc.Delete(ctx, missing.String())
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestDetailSanitizesDescription(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	stored := f.storedProduct(t, "main.png")
	stored.Description = "<p>Hello <b>World</b></p>"
	f.repo.On("GetProductByID", ctx, stored.ID).Return(stored, nil)

	summary, err := f.svc.Detail(ctx, stored.ID.String())
	require.NoError(t, err)

	assert.Equal(t, "Hello World", summary.Description)
	assert.Equal(t, "Electronics", summary.CategoryName)
	assert.Equal(t, "main.png", summary.MainImage)
}

func TestListMapsSummariesAndPaginates(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	products := []models.Product{
		*f.storedProduct(t, "a.png"),
		*f.storedProduct(t, "b.png"),
	}
	f.repo.On("GetProducts", ctx, 1, 4).Return(products, int64(10), nil)

	summaries, pagination, err := f.svc.List(ctx, 1, 4)
	require.NoError(t, err)

	require.Len(t, summaries, 2)
	assert.Equal(t, "a.png", summaries[0].MainImage)
	assert.Equal(t, "Electronics", summaries[0].CategoryName)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, int64(10), pagination.Total)
}
