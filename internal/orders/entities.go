package orders

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matheusmosca/webshop/internal/baskets"
	"github.com/matheusmosca/webshop/internal/problem"
)

// Status representa os possíveis status de um pedido
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// DefaultCurrency é usada enquanto o carrinho ainda não definiu a moeda
const DefaultCurrency = "DKK"

// MaxQuantity é o limite da coluna INTEGER de basket_products
const MaxQuantity = math.MaxInt32

// MaxTotalPrice é o limite exclusivo da coluna NUMERIC(14,2) de customer_orders
var MaxTotalPrice = decimal.New(1, 12)

var (
	ErrOrderNotFound            = errors.New("order not found")
	ErrIllegalOrderCompletion   = errors.New("illegal order completion")
	ErrIllegalOrderCancellation = errors.New("illegal order cancellation")
	ErrIllegalDuplicateProduct  = errors.New("illegal duplicate product")
	ErrIllegalOrderOperation    = errors.New("illegal order operation")
	ErrInvalidOrder             = errors.New("invalid order")
)

// Order representa um pedido no sistema
type Order struct {
	ID         int64           `json:"id"`
	BasketID   int64           `json:"-"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     Status          `json:"status"`
	Currency   string          `json:"currency"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// NewOrder cria uma nova instância de Order
func NewOrder() *Order {
	now := time.Now()
	return &Order{
		TotalPrice: decimal.Zero,
		Status:     StatusInProgress,
		Currency:   DefaultCurrency,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Complete só é permitido a partir de IN_PROGRESS
func (o *Order) Complete() error {
	if o.Status != StatusInProgress {
		return IllegalCompletionError(o.ID, o.Status)
	}
	o.Status = StatusCompleted
	o.UpdatedAt = time.Now()
	return nil
}

// Cancel só é permitido a partir de IN_PROGRESS
func (o *Order) Cancel() error {
	if o.Status != StatusInProgress {
		return IllegalCancellationError(o.ID, o.Status)
	}
	o.Status = StatusCancelled
	o.UpdatedAt = time.Now()
	return nil
}

// OrderRequest é o corpo de POST /orders. As duas formas podem ser combinadas.
type OrderRequest struct {
	Products map[string]int `json:"products"`
	Items    []baskets.Line `json:"items"`
}

// Lines normaliza o pedido: items na ordem recebida e depois products por id
func (r OrderRequest) Lines() ([]baskets.Line, error) {
	lines := make([]baskets.Line, 0, len(r.Items)+len(r.Products))
	seen := map[string]bool{}

	add := func(productID string, quantity int) error {
		productID = strings.TrimSpace(productID)
		switch {
		case productID == "":
			return problem.BadRequest(ErrInvalidOrder, "Failed to create order with a blank product id")
		case quantity <= 0 || quantity > MaxQuantity:
			return problem.BadRequest(ErrInvalidOrder, "Failed to create order with quantity %d of product %s", quantity, productID)
		case seen[productID]:
			return problem.MethodNotAllowed(ErrIllegalDuplicateProduct, "Failed to create order with duplicate of product %s", productID)
		}
		seen[productID] = true
		lines = append(lines, baskets.Line{ProductID: productID, Quantity: quantity})
		return nil
	}

	for _, item := range r.Items {
		if err := add(item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
	}

	ids := make([]string, 0, len(r.Products))
	for id := range r.Products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := add(id, r.Products[id]); err != nil {
			return nil, err
		}
	}

	if len(lines) == 0 {
		return nil, problem.BadRequest(ErrInvalidOrder, "Failed to create order without products")
	}
	return lines, nil
}

func NotFoundError(id int64) error {
	return problem.NotFound(ErrOrderNotFound, "Could not find order %d", id)
}

func IllegalCompletionError(id int64, status Status) error {
	return problem.MethodNotAllowed(ErrIllegalOrderCompletion, "Failed to complete order %d with status %s", id, status)
}

func IllegalCancellationError(id int64, status Status) error {
	return problem.MethodNotAllowed(ErrIllegalOrderCancellation, "Failed to cancel order %d with status %s", id, status)
}

func totalTooLargeError(total decimal.Decimal) error {
	return problem.BadRequest(ErrInvalidOrder, "Failed to create order with total price %s, must be less than %s", total.StringFixed(2), MaxTotalPrice.String())
}

func mixedCurrencyError(currencies []string) error {
	return problem.MethodNotAllowed(ErrIllegalOrderOperation, "Failed to create order with mixed currencies %s", strings.Join(currencies, ", "))
}
