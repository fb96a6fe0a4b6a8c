package products

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ProductUseCase contém a lógica de negócio do catálogo
type ProductUseCase struct {
	repository Repository
	logger     *zap.Logger
}

// NewProductUseCase cria uma nova instância de ProductUseCase
func NewProductUseCase(repository Repository, logger *zap.Logger) *ProductUseCase {
	return &ProductUseCase{
		repository: repository,
		logger:     logger,
	}
}

func (uc *ProductUseCase) ListProducts(ctx context.Context) ([]*Product, error) {
	return uc.repository.ListProducts(ctx)
}

func (uc *ProductUseCase) GetProduct(ctx context.Context, id string) (*Product, error) {
	return uc.repository.GetProduct(ctx, id)
}

// CreateProduct valida e insere um novo produto
func (uc *ProductUseCase) CreateProduct(ctx context.Context, req ProductRequest) (*Product, error) {
	product, err := NewProduct(req)
	if err != nil {
		return nil, err
	}

	if err := uc.repository.CreateProduct(ctx, product); err != nil {
		uc.logger.Warn("❌ Failed to create product", zap.String("product_id", product.ID), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("✅ Product created", zap.String("product_id", product.ID))
	return product, nil
}

// ReplaceProduct substitui os campos do produto, criando-o caso ainda não exista
func (uc *ProductUseCase) ReplaceProduct(ctx context.Context, id string, req ProductRequest) (*Product, error) {
	product, err := uc.repository.GetProduct(ctx, id)
	switch {
	case errors.Is(err, ErrProductNotFound):
		req.ID = id
		product, err = NewProduct(req)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := product.Replace(req); err != nil {
			return nil, err
		}
	}

	if err := uc.repository.SaveProduct(ctx, product); err != nil {
		return nil, err
	}

	uc.logger.Info("✅ Product saved", zap.String("product_id", product.ID))
	return product, nil
}

// DeleteProduct é idempotente
func (uc *ProductUseCase) DeleteProduct(ctx context.Context, id string) error {
	if err := uc.repository.DeleteProduct(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("🗑️ Product deleted", zap.String("product_id", id))
	return nil
}

// Seed insere o catálogo inicial sem sobrescrever produtos existentes
func (uc *ProductUseCase) Seed(ctx context.Context) (int, error) {
	inserted := 0
	for _, req := range SeedProducts() {
		product, err := NewProduct(req)
		if err != nil {
			return inserted, fmt.Errorf("invalid seed product %s: %w", req.ID, err)
		}

		created, err := uc.repository.CreateIfNotExists(ctx, product)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed product %s: %w", req.ID, err)
		}
		if created {
			inserted++
			uc.logger.Info("🌱 Preloading product", zap.String("product_id", product.ID), zap.String("name", product.Name))
		}
	}
	return inserted, nil
}
