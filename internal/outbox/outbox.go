package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/matheusmosca/webshop/internal/database"
)

const (
	EventOrderCreated   = "order.created"
	EventOrderCompleted = "order.completed"
	EventOrderCancelled = "order.cancelled"
)

// Event é o contrato publicado no tópico de pedidos
type Event struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	OrderID    int64           `json:"order_id"`
	Status     string          `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Currency   string          `json:"currency"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewEvent cria um evento com um event_id novo
func NewEvent(eventType string, orderID int64, status string, totalPrice decimal.Decimal, currency string) Event {
	return Event{
		EventID:    uuid.New().String(),
		Type:       eventType,
		OrderID:    orderID,
		Status:     status,
		TotalPrice: totalPrice,
		Currency:   currency,
		CreatedAt:  time.Now().UTC(),
	}
}

// Record é uma linha da tabela outbox
type Record struct {
	ID        int64           `json:"id"`
	EventID   string          `json:"event_id"`
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at"`
}

// PostgresStore grava e lê eventos da tabela outbox
type PostgresStore struct {
	pool  *pgxpool.Pool
	topic string
}

// NewPostgresStore cria uma nova instância de PostgresStore
func NewPostgresStore(pool *pgxpool.Pool, topic string) *PostgresStore {
	return &PostgresStore{pool: pool, topic: topic}
}

// Write insere o evento na mesma transação da mudança de estado
func (s *PostgresStore) Write(ctx context.Context, tx database.Tx, key string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	_, err = database.Conn(tx).Exec(ctx,
		`INSERT INTO outbox (event_id, topic, key, payload) VALUES ($1, $2, $3, $4)`,
		event.EventID, s.topic, key, data,
	)
	if err != nil {
		return fmt.Errorf("failed to write outbox event: %w", err)
	}
	return nil
}

// BeginBatch abre a transação que segura o lote reivindicado pelo relay
func (s *PostgresStore) BeginBatch(ctx context.Context) (database.Tx, error) {
	return database.Begin(ctx, s.pool)
}

func (s *PostgresStore) MarkSent(ctx context.Context, tx database.Tx, id int64) error {
	_, err := database.Conn(tx).Exec(ctx, `UPDATE outbox SET sent_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox record %d as sent: %w", id, err)
	}
	return nil
}

// FetchPending trava os registros do lote até o fim de tx. Linhas já
// travadas por outro relay são puladas.
func (s *PostgresStore) FetchPending(ctx context.Context, tx database.Tx, limit int) ([]Record, error) {
	rows, err := database.Conn(tx).Query(ctx, pendingQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending outbox records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Topic, &rec.Key, &rec.Payload, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

const pendingQuery = `
	SELECT id, event_id, topic, key, payload, created_at, sent_at
	FROM outbox
	WHERE sent_at IS NULL
	ORDER BY id
	LIMIT $1
	FOR UPDATE SKIP LOCKED
`
