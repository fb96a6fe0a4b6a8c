package baskets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/matheusmosca/webshop/internal/hal"
	"github.com/matheusmosca/webshop/internal/problem"
)

type MockUseCase struct {
	mock.Mock
}

func (m *MockUseCase) GetBasket(ctx context.Context, id int64) (*Basket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Basket), args.Error(1)
}

func (m *MockUseCase) GetBasketProduct(ctx context.Context, basketID, basketProductID int64) (*BasketProduct, error) {
	args := m.Called(ctx, basketID, basketProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BasketProduct), args.Error(1)
}

type lineDocument struct {
	ID        int64           `json:"id"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	Links     hal.Links       `json:"_links"`
}

func setupRouter(uc BasketUseCaseInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewBasketHandler(uc, noop.NewTracerProvider().Tracer("test")).RegisterRoutes(r)
	return r
}

func storedBasket() *Basket {
	return &Basket{
		ID:      3,
		OrderID: 8,
		Products: []*BasketProduct{
			{ID: 21, BasketID: 3, ProductID: "vitamin-d-90-100", Quantity: 3, Price: decimal.NewFromInt(116), Currency: "DKK", RebateQuantity: 3, RebatePercent: 10},
		},
		NumberOfProducts: 1,
	}
}

func TestBasketHandler_GetBasket(t *testing.T) {
	// Arrange
	uc := new(MockUseCase)
	uc.On("GetBasket", mock.Anything, int64(3)).Return(storedBasket(), nil)
	r := setupRouter(uc)

	req := httptest.NewRequest(http.MethodGet, "/basket/3", nil)
	req.Host = "shop.test"
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		ID               int64           `json:"id"`
		NumberOfProducts int             `json:"numberOfProducts"`
		TotalPrice       decimal.Decimal `json:"totalPrice"`
		Links            hal.Links       `json:"_links"`
		Embedded         struct {
			Products []lineDocument `json:"products"`
		} `json:"_embedded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, int64(3), doc.ID)
	assert.Equal(t, 1, doc.NumberOfProducts)
	assert.Equal(t, "313.20", doc.TotalPrice.StringFixed(2))

	self, _ := doc.Links.Get("self")
	assert.Equal(t, "http://shop.test/basket/3", self.Href)
	order, _ := doc.Links.Get("order")
	assert.Equal(t, "http://shop.test/orders/8", order.Href)

	require.Len(t, doc.Embedded.Products, 1)
	lineSelf, _ := doc.Embedded.Products[0].Links.Get("self")
	assert.Equal(t, "http://shop.test/basket/3/products/21", lineSelf.Href)
}

func TestBasketHandler_GetBasket_BadID(t *testing.T) {
	uc := new(MockUseCase)
	r := setupRouter(uc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/basket/abc", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNotCalled(t, "GetBasket", mock.Anything, mock.Anything)
}

func TestBasketHandler_GetBasket_NotFound(t *testing.T) {
	uc := new(MockUseCase)
	uc.On("GetBasket", mock.Anything, int64(404)).Return(nil, notFoundError(404))
	r := setupRouter(uc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/basket/404", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var details problem.Details
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, "Could not find basket 404", details.Detail)
}

func TestBasketHandler_GetBasketProduct(t *testing.T) {
	// Arrange
	uc := new(MockUseCase)
	uc.On("GetBasketProduct", mock.Anything, int64(3), int64(21)).Return(storedBasket().Products[0], nil)
	r := setupRouter(uc)

	req := httptest.NewRequest(http.MethodGet, "/basket/3/products/21", nil)
	req.Host = "shop.test"
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)

	var doc lineDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "vitamin-d-90-100", doc.ProductID)
	assert.Equal(t, "313.20", doc.Total.StringFixed(2))

	basket, _ := doc.Links.Get("basket")
	assert.Equal(t, "http://shop.test/basket/3", basket.Href)
	product, _ := doc.Links.Get("product")
	assert.Equal(t, "http://shop.test/products/vitamin-d-90-100", product.Href)
}

func TestBasketHandler_GetBasketProduct_NotFound(t *testing.T) {
	uc := new(MockUseCase)
	uc.On("GetBasketProduct", mock.Anything, int64(3), int64(99)).Return(nil, productNotFoundError(3, 99))
	r := setupRouter(uc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/basket/3/products/99", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
