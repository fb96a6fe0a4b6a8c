package baskets

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matheusmosca/webshop/internal/database"
)

// Repository define a interface para operações de banco de dados de carrinhos
type Repository interface {
	// CreateBasket persiste o carrinho e suas linhas dentro da transação do pedido
	CreateBasket(ctx context.Context, tx database.Tx, basket *Basket) error

	// GetBasket busca o carrinho com suas linhas
	GetBasket(ctx context.Context, id int64) (*Basket, error)

	// GetBasketProduct busca uma linha de um carrinho
	GetBasketProduct(ctx context.Context, basketID, basketProductID int64) (*BasketProduct, error)
}

// BasketRepository implementa Repository usando PostgreSQL
type BasketRepository struct {
	db *pgxpool.Pool
}

// NewBasketRepository cria uma nova instância de BasketRepository
func NewBasketRepository(db *pgxpool.Pool) Repository {
	return &BasketRepository{
		db: db,
	}
}

const basketProductColumns = `id, basket_id, product_id, quantity, price, currency, rebate_quantity, rebate_percent`

func scanBasketProduct(row pgx.Row) (*BasketProduct, error) {
	var bp BasketProduct
	err := row.Scan(
		&bp.ID,
		&bp.BasketID,
		&bp.ProductID,
		&bp.Quantity,
		&bp.Price,
		&bp.Currency,
		&bp.RebateQuantity,
		&bp.RebatePercent,
	)
	if err != nil {
		return nil, err
	}
	return &bp, nil
}

func (r *BasketRepository) CreateBasket(ctx context.Context, tx database.Tx, basket *Basket) error {
	conn := database.Conn(tx)

	err := conn.QueryRow(ctx, `
		INSERT INTO baskets (order_id, number_of_products)
		VALUES ($1, $2)
		RETURNING id
	`, basket.OrderID, basket.NumberOfProducts).Scan(&basket.ID)
	if err != nil {
		return fmt.Errorf("failed to create basket: %w", err)
	}

	for _, bp := range basket.Products {
		bp.BasketID = basket.ID
		err := conn.QueryRow(ctx, `
			INSERT INTO basket_products (basket_id, product_id, quantity, price, currency, rebate_quantity, rebate_percent)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, bp.BasketID, bp.ProductID, bp.Quantity, bp.Price, bp.Currency, bp.RebateQuantity, bp.RebatePercent).Scan(&bp.ID)
		if err != nil {
			return fmt.Errorf("failed to create basket product %s: %w", bp.ProductID, err)
		}
	}

	return nil
}

func (r *BasketRepository) GetBasket(ctx context.Context, id int64) (*Basket, error) {
	basket := Basket{Products: []*BasketProduct{}}
	err := r.db.QueryRow(ctx, `
		SELECT id, order_id, number_of_products
		FROM baskets WHERE id = $1
	`, id).Scan(&basket.ID, &basket.OrderID, &basket.NumberOfProducts)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, notFoundError(id)
		}
		return nil, fmt.Errorf("failed to get basket: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+basketProductColumns+`
		FROM basket_products WHERE basket_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get basket products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		bp, err := scanBasketProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan basket product: %w", err)
		}
		basket.Products = append(basket.Products, bp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read basket products: %w", err)
	}

	return &basket, nil
}

func (r *BasketRepository) GetBasketProduct(ctx context.Context, basketID, basketProductID int64) (*BasketProduct, error) {
	bp, err := scanBasketProduct(r.db.QueryRow(ctx, `
		SELECT `+basketProductColumns+`
		FROM basket_products WHERE basket_id = $1 AND id = $2
	`, basketID, basketProductID))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, productNotFoundError(basketID, basketProductID)
		}
		return nil, fmt.Errorf("failed to get basket product: %w", err)
	}
	return bp, nil
}
