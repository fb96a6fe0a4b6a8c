package orders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matheusmosca/webshop/internal/database"
)

// Repository define a interface para operações de banco de dados de pedidos
type Repository interface {
	// BeginTx inicia uma nova transação
	BeginTx(ctx context.Context) (database.Tx, error)

	// CreateOrder insere o pedido e preenche o ID gerado
	CreateOrder(ctx context.Context, tx database.Tx, order *Order) error

	// UpdateOrderTotals grava total e moeda calculados a partir do carrinho
	UpdateOrderTotals(ctx context.Context, tx database.Tx, order *Order) error

	// UpdateOrderStatus troca o status apenas se o pedido ainda estiver em from
	UpdateOrderStatus(ctx context.Context, tx database.Tx, orderID int64, from, to Status) (bool, error)

	// GetOrder busca um pedido pelo ID
	GetOrder(ctx context.Context, orderID int64) (*Order, error)

	// ListOrders retorna todos os pedidos ordenados por ID
	ListOrders(ctx context.Context) ([]*Order, error)
}

// OrderRepository implementa Repository usando PostgreSQL
type OrderRepository struct {
	db *pgxpool.Pool
}

// NewOrderRepository cria uma nova instância de OrderRepository
func NewOrderRepository(db *pgxpool.Pool) Repository {
	return &OrderRepository{
		db: db,
	}
}

const orderSelect = `
	SELECT o.id, COALESCE(b.id, 0), o.total_price, o.status, o.currency, o.created_at, o.updated_at
	FROM customer_orders o
	LEFT JOIN baskets b ON b.order_id = o.id
`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		order  Order
		status string
	)
	err := row.Scan(&order.ID, &order.BasketID, &order.TotalPrice, &status, &order.Currency, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	order.Status = Status(status)
	return &order, nil
}

func (r *OrderRepository) BeginTx(ctx context.Context) (database.Tx, error) {
	return database.Begin(ctx, r.db)
}

func (r *OrderRepository) CreateOrder(ctx context.Context, tx database.Tx, order *Order) error {
	err := database.Conn(tx).QueryRow(ctx, `
		INSERT INTO customer_orders (total_price, status, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, order.TotalPrice, string(order.Status), order.Currency, order.CreatedAt, order.UpdatedAt).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) UpdateOrderTotals(ctx context.Context, tx database.Tx, order *Order) error {
	_, err := database.Conn(tx).Exec(ctx, `
		UPDATE customer_orders
		SET total_price = $1, currency = $2, updated_at = NOW()
		WHERE id = $3
	`, order.TotalPrice, order.Currency, order.ID)
	if err != nil {
		return fmt.Errorf("failed to update order totals: %w", err)
	}
	return nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, tx database.Tx, orderID int64, from, to Status) (bool, error) {
	tag, err := database.Conn(tx).Exec(ctx, `
		UPDATE customer_orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, string(to), orderID, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, orderSelect+` WHERE o.id = $1`, orderID))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, NotFoundError(orderID)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (r *OrderRepository) ListOrders(ctx context.Context) ([]*Order, error) {
	rows, err := r.db.Query(ctx, orderSelect+` ORDER BY o.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
