package baskets

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/matheusmosca/webshop/internal/problem"
	"github.com/matheusmosca/webshop/internal/products"
)

var (
	ErrBasketNotFound        = errors.New("basket not found")
	ErrBasketProductNotFound = errors.New("basket product not found")
)

var hundred = decimal.NewFromInt(100)

// Line é um item pedido: produto e quantidade
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Basket agrupa os itens de um pedido
type Basket struct {
	ID               int64            `json:"id"`
	OrderID          int64            `json:"-"`
	Products         []*BasketProduct `json:"products"`
	NumberOfProducts int              `json:"numberOfProducts"`
}

// BasketProduct guarda o preço e o desconto do produto no momento do pedido
type BasketProduct struct {
	ID             int64           `json:"id"`
	BasketID       int64           `json:"-"`
	ProductID      string          `json:"productId"`
	Quantity       int             `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency"`
	RebateQuantity int             `json:"rebateQuantity"`
	RebatePercent  int             `json:"rebatePercent"`
}

// NewBasketProduct tira um snapshot do produto para a linha do carrinho
func NewBasketProduct(product *products.Product, quantity int) *BasketProduct {
	return &BasketProduct{
		ProductID:      product.ID,
		Quantity:       quantity,
		Price:          product.Price,
		Currency:       product.Currency,
		RebateQuantity: product.RebateQuantity,
		RebatePercent:  product.RebatePercent,
	}
}

// RebateApplies indica se a quantidade atingiu o limite de desconto
func (bp *BasketProduct) RebateApplies() bool {
	return bp.RebateQuantity > 0 && bp.Quantity >= bp.RebateQuantity
}

// LineTotal é price * quantity, com o desconto aplicado quando RebateApplies
func (bp *BasketProduct) LineTotal() decimal.Decimal {
	total := bp.Price.Mul(decimal.NewFromInt(int64(bp.Quantity)))
	if bp.RebateApplies() {
		total = total.Mul(hundred.Sub(decimal.NewFromInt(int64(bp.RebatePercent)))).Div(hundred)
	}
	return total.Round(2)
}

// TotalPrice soma as linhas; carrinho vazio vale zero
func (b *Basket) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, bp := range b.Products {
		total = total.Add(bp.LineTotal())
	}
	return total.Round(2)
}

// Currencies retorna as moedas distintas do carrinho, na ordem em que aparecem
func (b *Basket) Currencies() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, bp := range b.Products {
		if !seen[bp.Currency] {
			seen[bp.Currency] = true
			out = append(out, bp.Currency)
		}
	}
	return out
}

func notFoundError(id int64) error {
	return problem.NotFound(ErrBasketNotFound, "Could not find basket %d", id)
}

func productNotFoundError(basketID, basketProductID int64) error {
	return problem.NotFound(ErrBasketProductNotFound, "Could not find basket product %d in basket %d", basketProductID, basketID)
}
