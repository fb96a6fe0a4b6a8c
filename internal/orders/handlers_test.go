package orders

import (
	"bytes"
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

	"github.com/matheusmosca/webshop/internal/baskets"
	"github.com/matheusmosca/webshop/internal/hal"
	"github.com/matheusmosca/webshop/internal/problem"
)

type MockUseCase struct {
	mock.Mock
}

func (m *MockUseCase) result(args mock.Arguments) (*Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockUseCase) ListOrders(ctx context.Context) ([]*Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockUseCase) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return m.result(m.Called(ctx, id))
}

func (m *MockUseCase) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	return m.result(m.Called(ctx, req))
}

func (m *MockUseCase) CompleteOrder(ctx context.Context, id int64) (*Order, error) {
	return m.result(m.Called(ctx, id))
}

func (m *MockUseCase) CancelOrder(ctx context.Context, id int64) (*Order, error) {
	return m.result(m.Called(ctx, id))
}

type orderDocument struct {
	ID         int64           `json:"id"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     Status          `json:"status"`
	Currency   string          `json:"currency"`
	Links      hal.Links       `json:"_links"`
}

func setupRouter(uc OrderUseCaseInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewOrderHandler(uc, noop.NewTracerProvider().Tracer("test")).RegisterRoutes(r)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Host = "shop.test"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func inProgress() *Order {
	return &Order{ID: 9, BasketID: 30, TotalPrice: decimal.RequireFromString("313.2"), Status: StatusInProgress, Currency: "DKK"}
}

func TestOrderHandler_GetOrder(t *testing.T) {
	// Arrange
	uc := new(MockUseCase)
	uc.On("GetOrder", mock.Anything, int64(9)).Return(inProgress(), nil)
	r := setupRouter(uc)

	// Act
	w := serve(r, http.MethodGet, "/orders/9", "")

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, hal.ContentType, w.Header().Get("Content-Type"))

	var doc orderDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, StatusInProgress, doc.Status)
	assert.Equal(t, "313.20", doc.TotalPrice.StringFixed(2))

	for rel, href := range map[string]string{
		"self":     "http://shop.test/orders/9",
		"basket":   "http://shop.test/basket/30",
		"complete": "http://shop.test/orders/9/complete",
		"cancel":   "http://shop.test/orders/9/cancel",
	} {
		link, ok := doc.Links.Get(rel)
		assert.True(t, ok, rel)
		assert.Equal(t, href, link.Href, rel)
	}
}

func TestOrderHandler_GetOrder_BadID(t *testing.T) {
	uc := new(MockUseCase)
	r := setupRouter(uc)

	w := serve(r, http.MethodGet, "/orders/abc", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var details problem.Details
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, `Failed to convert value of type 'string' to required type 'int64'; For input string: "abc"`, details.Detail)
	uc.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything)
}

func TestOrderHandler_GetOrder_NotFound(t *testing.T) {
	uc := new(MockUseCase)
	uc.On("GetOrder", mock.Anything, int64(77)).Return(nil, NotFoundError(77))
	r := setupRouter(uc)

	w := serve(r, http.MethodGet, "/orders/77", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var details problem.Details
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, "Could not find order 77", details.Detail)
}

func TestOrderHandler_ListOrders(t *testing.T) {
	// Arrange
	uc := new(MockUseCase)
	completed := &Order{ID: 10, BasketID: 31, Status: StatusCompleted, Currency: "DKK"}
	uc.On("ListOrders", mock.Anything).Return([]*Order{inProgress(), completed}, nil)
	r := setupRouter(uc)

	// Act
	w := serve(r, http.MethodGet, "/orders", "")

	// Assert
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		Links    hal.Links `json:"_links"`
		Embedded struct {
			OrderList []orderDocument `json:"orderList"`
		} `json:"_embedded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))

	find, _ := doc.Links.Get("find")
	assert.Equal(t, "http://shop.test/orders/{id}", find.Href)
	assert.True(t, find.Templated)

	orderLinks := doc.Links.All("order")
	require.Len(t, orderLinks, 2)
	assert.Equal(t, "9", orderLinks[0].Title)
	assert.Equal(t, "http://shop.test/orders/10", orderLinks[1].Href)

	require.Len(t, doc.Embedded.OrderList, 2)
	_, ok := doc.Embedded.OrderList[1].Links.Get("complete")
	assert.False(t, ok)
}

func TestOrderHandler_ListOrders_Empty(t *testing.T) {
	uc := new(MockUseCase)
	uc.On("ListOrders", mock.Anything).Return([]*Order{}, nil)
	r := setupRouter(uc)

	w := serve(r, http.MethodGet, "/orders", "")

	require.Equal(t, http.StatusOK, w.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	links := doc["_links"].(map[string]any)
	assert.Equal(t, []any{}, links["order"])
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	// Arrange
	uc := new(MockUseCase)
	uc.On("CreateOrder", mock.Anything, OrderRequest{
		Items: []baskets.Line{{ProductID: "vitamin-d-90-100", Quantity: 3}},
	}).Return(inProgress(), nil)
	r := setupRouter(uc)

	// Act
	w := serve(r, http.MethodPost, "/orders", `{"items":[{"productId":"vitamin-d-90-100","quantity":3}]}`)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "http://shop.test/orders/9", w.Header().Get("Location"))
	uc.AssertExpectations(t)
}

func TestOrderHandler_CreateOrder_Duplicate(t *testing.T) {
	uc := new(MockUseCase)
	dup := OrderRequest{Items: []baskets.Line{{ProductID: "a", Quantity: 1}, {ProductID: "a", Quantity: 1}}}
	_, dupErr := dup.Lines()
	uc.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, dupErr)
	r := setupRouter(uc)

	w := serve(r, http.MethodPost, "/orders", `{"items":[{"productId":"a","quantity":1},{"productId":"a","quantity":1}]}`)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, problem.ContentType, w.Header().Get("Content-Type"))
}

func TestOrderHandler_CreateOrder_Malformed(t *testing.T) {
	uc := new(MockUseCase)
	r := setupRouter(uc)

	w := serve(r, http.MethodPost, "/orders", `{"products":{"a":"many"}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestOrderHandler_CompleteOrder(t *testing.T) {
	// Arrange
	uc := new(MockUseCase)
	done := inProgress()
	done.Status = StatusCompleted
	uc.On("CompleteOrder", mock.Anything, int64(9)).Return(done, nil)
	r := setupRouter(uc)

	// Act
	w := serve(r, http.MethodPut, "/orders/9/complete", "")

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	var doc orderDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, StatusCompleted, doc.Status)
	_, ok := doc.Links.Get("cancel")
	assert.False(t, ok)
}

func TestOrderHandler_CompleteOrder_Illegal(t *testing.T) {
	uc := new(MockUseCase)
	uc.On("CompleteOrder", mock.Anything, int64(9)).Return(nil, IllegalCompletionError(9, StatusCancelled))
	r := setupRouter(uc)

	w := serve(r, http.MethodPut, "/orders/9/complete", "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	var details problem.Details
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, "Failed to complete order 9 with status CANCELLED", details.Detail)
	assert.Equal(t, "Method Not Allowed", details.Title)
}

func TestOrderHandler_CancelOrder(t *testing.T) {
	uc := new(MockUseCase)
	cancelled := inProgress()
	cancelled.Status = StatusCancelled
	uc.On("CancelOrder", mock.Anything, int64(9)).Return(cancelled, nil)
	r := setupRouter(uc)

	w := serve(r, http.MethodDelete, "/orders/9/cancel", "")

	require.Equal(t, http.StatusOK, w.Code)
	var doc orderDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, StatusCancelled, doc.Status)
}
