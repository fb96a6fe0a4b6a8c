package baskets

import (
	"context"

	"go.uber.org/zap"

	"github.com/matheusmosca/webshop/internal/database"
	"github.com/matheusmosca/webshop/internal/products"
)

// ProductFinder busca os produtos referenciados pelas linhas
type ProductFinder interface {
	FindProducts(ctx context.Context, ids []string) (map[string]*products.Product, error)
}

// BasketUseCase contém a lógica de negócio dos carrinhos
type BasketUseCase struct {
	repository Repository
	products   ProductFinder
	logger     *zap.Logger
}

// NewBasketUseCase cria uma nova instância de BasketUseCase
func NewBasketUseCase(repository Repository, products ProductFinder, logger *zap.Logger) *BasketUseCase {
	return &BasketUseCase{
		repository: repository,
		products:   products,
		logger:     logger,
	}
}

// CreateBasket monta o carrinho do pedido com um snapshot de cada produto.
// As linhas já chegam validadas e sem produtos repetidos.
func (uc *BasketUseCase) CreateBasket(ctx context.Context, tx database.Tx, orderID int64, lines []Line) (*Basket, error) {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	found, err := uc.products.FindProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	basket := &Basket{
		OrderID:  orderID,
		Products: make([]*BasketProduct, 0, len(lines)),
	}
	for _, line := range lines {
		product, ok := found[line.ProductID]
		if !ok {
			return nil, products.NotFoundError(line.ProductID)
		}
		basket.Products = append(basket.Products, NewBasketProduct(product, line.Quantity))
	}
	basket.NumberOfProducts = len(basket.Products)

	if err := uc.repository.CreateBasket(ctx, tx, basket); err != nil {
		return nil, err
	}

	uc.logger.Info("🧺 Basket created",
		zap.Int64("basket_id", basket.ID),
		zap.Int64("order_id", orderID),
		zap.Int("number_of_products", basket.NumberOfProducts),
	)
	return basket, nil
}

func (uc *BasketUseCase) GetBasket(ctx context.Context, id int64) (*Basket, error) {
	return uc.repository.GetBasket(ctx, id)
}

func (uc *BasketUseCase) GetBasketProduct(ctx context.Context, basketID, basketProductID int64) (*BasketProduct, error) {
	return uc.repository.GetBasketProduct(ctx, basketID, basketProductID)
}
