package orders

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/matheusmosca/webshop/internal/baskets"
	"github.com/matheusmosca/webshop/internal/database"
	"github.com/matheusmosca/webshop/internal/outbox"
)

// BasketCreator monta o carrinho dentro da transação do pedido
type BasketCreator interface {
	CreateBasket(ctx context.Context, tx database.Tx, orderID int64, lines []baskets.Line) (*baskets.Basket, error)
}

// EventWriter grava eventos na outbox dentro da transação
type EventWriter interface {
	Write(ctx context.Context, tx database.Tx, key string, event outbox.Event) error
}

// OrderUseCase contém a lógica de negócio dos pedidos
type OrderUseCase struct {
	repository       Repository
	baskets          BasketCreator
	events           EventWriter
	logger           *zap.Logger
	createdCounter   metric.Int64Counter
	completedCounter metric.Int64Counter
	cancelledCounter metric.Int64Counter
}

// NewOrderUseCase cria uma nova instância de OrderUseCase
func NewOrderUseCase(
	repository Repository,
	baskets BasketCreator,
	events EventWriter,
	meter metric.Meter,
	logger *zap.Logger,
) (*OrderUseCase, error) {
	created, err := meter.Int64Counter("orders.created", metric.WithDescription("Orders created"))
	if err != nil {
		return nil, fmt.Errorf("failed to create orders.created counter: %w", err)
	}
	completed, err := meter.Int64Counter("orders.completed", metric.WithDescription("Orders completed"))
	if err != nil {
		return nil, fmt.Errorf("failed to create orders.completed counter: %w", err)
	}
	cancelled, err := meter.Int64Counter("orders.cancelled", metric.WithDescription("Orders cancelled"))
	if err != nil {
		return nil, fmt.Errorf("failed to create orders.cancelled counter: %w", err)
	}

	return &OrderUseCase{
		repository:       repository,
		baskets:          baskets,
		events:           events,
		logger:           logger,
		createdCounter:   created,
		completedCounter: completed,
		cancelledCounter: cancelled,
	}, nil
}

func (uc *OrderUseCase) ListOrders(ctx context.Context) ([]*Order, error) {
	return uc.repository.ListOrders(ctx)
}

func (uc *OrderUseCase) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return uc.repository.GetOrder(ctx, id)
}

// CreateOrder cria pedido, carrinho e evento order.created numa única transação
func (uc *OrderUseCase) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	lines, err := req.Lines()
	if err != nil {
		return nil, err
	}

	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order := NewOrder()
	if err := uc.repository.CreateOrder(ctx, tx, order); err != nil {
		uc.logger.Error("❌ Failed to create order", zap.Error(err))
		return nil, err
	}

	basket, err := uc.baskets.CreateBasket(ctx, tx, order.ID, lines)
	if err != nil {
		return nil, err
	}

	currencies := basket.Currencies()
	if len(currencies) > 1 {
		return nil, mixedCurrencyError(currencies)
	}

	total := basket.TotalPrice()
	if total.GreaterThanOrEqual(MaxTotalPrice) {
		return nil, totalTooLargeError(total)
	}

	order.BasketID = basket.ID
	order.TotalPrice = total
	if len(currencies) == 1 {
		order.Currency = currencies[0]
	}

	if err := uc.repository.UpdateOrderTotals(ctx, tx, order); err != nil {
		return nil, err
	}

	if err := uc.writeEvent(ctx, tx, outbox.EventOrderCreated, order); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	uc.createdCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("currency", order.Currency)))
	uc.logger.Info("✅ Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("basket_id", order.BasketID),
		zap.String("total_price", order.TotalPrice.StringFixed(2)),
		zap.String("currency", order.Currency),
	)
	return order, nil
}

// CompleteOrder marca o pedido como completado
func (uc *OrderUseCase) CompleteOrder(ctx context.Context, id int64) (*Order, error) {
	order, err := uc.transition(ctx, id, (*Order).Complete, IllegalCompletionError, outbox.EventOrderCompleted)
	if err != nil {
		return nil, err
	}

	uc.completedCounter.Add(ctx, 1)
	uc.logger.Info("✅ Order completed", zap.Int64("order_id", id))
	return order, nil
}

// CancelOrder marca o pedido como cancelado
func (uc *OrderUseCase) CancelOrder(ctx context.Context, id int64) (*Order, error) {
	order, err := uc.transition(ctx, id, (*Order).Cancel, IllegalCancellationError, outbox.EventOrderCancelled)
	if err != nil {
		return nil, err
	}

	uc.cancelledCounter.Add(ctx, 1)
	uc.logger.Info("↩️ Order cancelled", zap.Int64("order_id", id))
	return order, nil
}

// transition aplica apply ao pedido e persiste o novo status. O UPDATE é
// condicionado ao status lido; se outra requisição mudou o pedido antes,
// o erro reflete o status atual.
func (uc *OrderUseCase) transition(
	ctx context.Context,
	id int64,
	apply func(*Order) error,
	illegal func(int64, Status) error,
	eventType string,
) (*Order, error) {
	order, err := uc.repository.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := apply(order); err != nil {
		uc.logger.Warn("❌ Illegal order transition", zap.Int64("order_id", id), zap.String("status", string(from)), zap.Error(err))
		return nil, err
	}

	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	updated, err := uc.repository.UpdateOrderStatus(ctx, tx, id, from, order.Status)
	if err != nil {
		return nil, err
	}
	if !updated {
		_ = tx.Rollback()
		current, err := uc.repository.GetOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, illegal(id, current.Status)
	}

	if err := uc.writeEvent(ctx, tx, eventType, order); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order %d: %w", id, err)
	}
	return order, nil
}

func (uc *OrderUseCase) writeEvent(ctx context.Context, tx database.Tx, eventType string, order *Order) error {
	event := outbox.NewEvent(eventType, order.ID, string(order.Status), order.TotalPrice, order.Currency)
	return uc.events.Write(ctx, tx, strconv.FormatInt(order.ID, 10), event)
}
