package products

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRepository para testes que não precisam de banco real
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListProducts(ctx context.Context) ([]*Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Product), args.Error(1)
}

func (m *MockRepository) GetProduct(ctx context.Context, id string) (*Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) FindProducts(ctx context.Context, ids []string) (map[string]*Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*Product), args.Error(1)
}

func (m *MockRepository) CreateProduct(ctx context.Context, product *Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockRepository) CreateIfNotExists(ctx context.Context, product *Product) (bool, error) {
	args := m.Called(ctx, product)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) SaveProduct(ctx context.Context, product *Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockRepository) DeleteProduct(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestNewProductRepository(t *testing.T) {
	// Arrange
	var db *pgxpool.Pool

	// Act
	repo := NewProductRepository(db)

	// Assert
	assert.NotNil(t, repo)
	assert.IsType(t, &ProductRepository{}, repo)
}

func TestProductUseCase_CreateProduct(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	uc := NewProductUseCase(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("CreateProduct", ctx, mock.MatchedBy(func(p *Product) bool {
		return p.ID == "vitamin-d-90-100" && p.Currency == "DKK"
	})).Return(nil)

	// Act
	product, err := uc.CreateProduct(ctx, validRequest())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "vitamin-d-90-100", product.ID)
	mockRepo.AssertExpectations(t)
}

func TestProductUseCase_CreateProduct_Invalid(t *testing.T) {
	mockRepo := new(MockRepository)
	uc := NewProductUseCase(mockRepo, zap.NewNop())

	req := validRequest()
	req.Price = decimal.NewFromInt(-10)
	_, err := uc.CreateProduct(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidProduct)
	mockRepo.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
}

func TestProductUseCase_CreateProduct_Duplicate(t *testing.T) {
	mockRepo := new(MockRepository)
	uc := NewProductUseCase(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("CreateProduct", ctx, mock.Anything).Return(existsError("vitamin-d-90-100"))

	_, err := uc.CreateProduct(ctx, validRequest())

	assert.ErrorIs(t, err, ErrProductExists)
	assert.EqualError(t, err, "Product vitamin-d-90-100 already exists")
}

func TestProductUseCase_ReplaceProduct_Existing(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	uc := NewProductUseCase(mockRepo, zap.NewNop())
	ctx := context.Background()

	existing, err := NewProduct(validRequest())
	require.NoError(t, err)
	createdAt := existing.CreatedAt

	mockRepo.On("GetProduct", ctx, "vitamin-d-90-100").Return(existing, nil)
	mockRepo.On("SaveProduct", ctx, existing).Return(nil)

	req := validRequest()
	req.ID = "other-id"
	req.Price = decimal.NewFromInt(99)

	// Act
	product, err := uc.ReplaceProduct(ctx, "vitamin-d-90-100", req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "vitamin-d-90-100", product.ID)
	assert.True(t, product.Price.Equal(decimal.NewFromInt(99)))
	assert.Equal(t, createdAt, product.CreatedAt)
	mockRepo.AssertExpectations(t)
}

func TestProductUseCase_ReplaceProduct_Missing(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	uc := NewProductUseCase(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("GetProduct", ctx, "new-id").Return(nil, NotFoundError("new-id"))
	mockRepo.On("SaveProduct", ctx, mock.MatchedBy(func(p *Product) bool { return p.ID == "new-id" })).Return(nil)

	// Act
	product, err := uc.ReplaceProduct(ctx, "new-id", validRequest())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "new-id", product.ID)
	mockRepo.AssertExpectations(t)
}

func TestProductUseCase_ReplaceProduct_RepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	uc := NewProductUseCase(mockRepo, zap.NewNop())
	ctx := context.Background()
	boom := errors.New("connection reset")

	mockRepo.On("GetProduct", ctx, "p1").Return(nil, boom)

	_, err := uc.ReplaceProduct(ctx, "p1", validRequest())

	assert.ErrorIs(t, err, boom)
	mockRepo.AssertNotCalled(t, "SaveProduct", mock.Anything, mock.Anything)
}

func TestProductUseCase_DeleteProduct(t *testing.T) {
	mockRepo := new(MockRepository)
	uc := NewProductUseCase(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("DeleteProduct", ctx, "missing").Return(nil)

	assert.NoError(t, uc.DeleteProduct(ctx, "missing"))
	mockRepo.AssertExpectations(t)
}

func TestProductUseCase_Seed(t *testing.T) {
	// Arrange
	mockRepo := new(MockRepository)
	uc := NewProductUseCase(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("CreateIfNotExists", ctx, mock.MatchedBy(func(p *Product) bool { return p.ID == "vitamin-d-90-100" })).Return(true, nil)
	mockRepo.On("CreateIfNotExists", ctx, mock.MatchedBy(func(p *Product) bool { return p.ID == "vitamin-c-500-250" })).Return(false, nil)

	// Act
	inserted, err := uc.Seed(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	mockRepo.AssertExpectations(t)
}

func TestProductUseCase_Seed_Error(t *testing.T) {
	mockRepo := new(MockRepository)
	uc := NewProductUseCase(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("CreateIfNotExists", ctx, mock.Anything).Return(false, errors.New("db down"))

	inserted, err := uc.Seed(ctx)

	assert.Equal(t, 0, inserted)
	assert.EqualError(t, err, "failed to seed product vitamin-d-90-100: db down")
}
