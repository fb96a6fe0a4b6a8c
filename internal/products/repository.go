package products

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matheusmosca/webshop/internal/database"
)

// Repository define a interface para operações de banco de dados de produtos
type Repository interface {
	// ListProducts retorna todos os produtos ordenados por id
	ListProducts(ctx context.Context) ([]*Product, error)

	// GetProduct busca um produto pelo ID
	GetProduct(ctx context.Context, id string) (*Product, error)

	// FindProducts busca vários produtos de uma vez, indexados pelo ID
	FindProducts(ctx context.Context, ids []string) (map[string]*Product, error)

	// CreateProduct insere um novo produto; id duplicado retorna conflito
	CreateProduct(ctx context.Context, product *Product) error

	// CreateIfNotExists insere o produto apenas se o id ainda não existir
	CreateIfNotExists(ctx context.Context, product *Product) (bool, error)

	// SaveProduct insere ou substitui o produto
	SaveProduct(ctx context.Context, product *Product) error

	// DeleteProduct remove o produto, se existir
	DeleteProduct(ctx context.Context, id string) error
}

// ProductRepository implementa Repository usando PostgreSQL
type ProductRepository struct {
	db *pgxpool.Pool
}

// NewProductRepository cria uma nova instância de ProductRepository
func NewProductRepository(db *pgxpool.Pool) Repository {
	return &ProductRepository{
		db: db,
	}
}

const productColumns = `id, name, price, currency, rebate_quantity, rebate_percent, upsell_product, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Currency,
		&p.RebateQuantity,
		&p.RebatePercent,
		&p.UpsellProduct,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) ListProducts(ctx context.Context) ([]*Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) GetProduct(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, NotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) FindProducts(ctx context.Context, ids []string) (map[string]*Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer rows.Close()

	found := make(map[string]*Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		found[p.ID] = p
	}
	return found, rows.Err()
}

func (r *ProductRepository) CreateProduct(ctx context.Context, p *Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.Name, p.Price, p.Currency, p.RebateQuantity, p.RebatePercent, p.UpsellProduct, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return existsError(p.ID)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *ProductRepository) CreateIfNotExists(ctx context.Context, p *Product) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, p.ID, p.Name, p.Price, p.Currency, p.RebateQuantity, p.RebatePercent, p.UpsellProduct, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create product: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ProductRepository) SaveProduct(ctx context.Context, p *Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			rebate_quantity = EXCLUDED.rebate_quantity,
			rebate_percent = EXCLUDED.rebate_percent,
			upsell_product = EXCLUDED.upsell_product,
			updated_at = EXCLUDED.updated_at
	`, p.ID, p.Name, p.Price, p.Currency, p.RebateQuantity, p.RebatePercent, p.UpsellProduct, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
