package products

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matheusmosca/webshop/internal/problem"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductExists   = errors.New("product already exists")
	ErrInvalidProduct  = errors.New("invalid product")
)

// MaxPrice é o limite exclusivo da coluna NUMERIC(12,2)
var MaxPrice = decimal.New(1, 10)

// Product representa um produto do catálogo
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency"`
	RebateQuantity int             `json:"rebateQuantity"`
	RebatePercent  int             `json:"rebatePercent"`
	UpsellProduct  *string         `json:"upsellProduct"`
	CreatedAt      time.Time       `json:"-"`
	UpdatedAt      time.Time       `json:"-"`
}

// ProductRequest é o corpo aceito por POST e PUT
type ProductRequest struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency"`
	RebateQuantity int             `json:"rebateQuantity"`
	RebatePercent  int             `json:"rebatePercent"`
	UpsellProduct  *string         `json:"upsellProduct"`
}

// NewProduct cria uma nova instância de Product já validada
func NewProduct(req ProductRequest) (*Product, error) {
	now := time.Now()
	product := &Product{
		ID:             strings.TrimSpace(req.ID),
		Name:           strings.TrimSpace(req.Name),
		Price:          req.Price,
		Currency:       strings.TrimSpace(req.Currency),
		RebateQuantity: req.RebateQuantity,
		RebatePercent:  req.RebatePercent,
		UpsellProduct:  normalizeUpsell(req.UpsellProduct),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}
	return product, nil
}

// Replace copia os campos mutáveis de req para o produto
func (p *Product) Replace(req ProductRequest) error {
	updated := *p
	updated.Name = strings.TrimSpace(req.Name)
	updated.Price = req.Price
	updated.Currency = strings.TrimSpace(req.Currency)
	updated.RebateQuantity = req.RebateQuantity
	updated.RebatePercent = req.RebatePercent
	updated.UpsellProduct = normalizeUpsell(req.UpsellProduct)

	if err := updated.Validate(); err != nil {
		return err
	}

	updated.UpdatedAt = time.Now()
	*p = updated
	return nil
}

// Validate verifica as invariantes do produto
func (p *Product) Validate() error {
	switch {
	case p.ID == "":
		return invalid("Product id must not be blank")
	case p.Name == "":
		return invalid("Product name must not be blank")
	case p.Price.IsNegative():
		return invalid("Product price must be 0 or greater, was %s", p.Price.String())
	case !p.Price.Equal(p.Price.Truncate(2)):
		return invalid("Product price must have at most 2 decimals, was %s", p.Price.String())
	case p.Price.GreaterThanOrEqual(MaxPrice):
		return invalid("Product price must be less than %s, was %s", MaxPrice.String(), p.Price.String())
	case !isCurrencyCode(p.Currency):
		return invalid("Product currency must be a 3 letter upper-case code, was %q", p.Currency)
	case p.RebateQuantity < 0 || p.RebateQuantity > math.MaxInt32:
		return invalid("Product rebate quantity must be between 0 and %d, was %d", math.MaxInt32, p.RebateQuantity)
	case p.RebatePercent < 0 || p.RebatePercent > 100:
		return invalid("Product rebate percent must be between 0 and 100, was %d", p.RebatePercent)
	}
	return nil
}

func normalizeUpsell(upsell *string) *string {
	if upsell == nil {
		return nil
	}
	id := strings.TrimSpace(*upsell)
	if id == "" {
		return nil
	}
	return &id
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func invalid(format string, args ...any) error {
	return problem.BadRequest(ErrInvalidProduct, format, args...)
}

// NotFoundError é retornado quando o produto não existe
func NotFoundError(id string) error {
	return problem.NotFound(ErrProductNotFound, "Could not find product %s", id)
}

func existsError(id string) error {
	return problem.Conflict(ErrProductExists, "Product %s already exists", id)
}
