package outbox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/matheusmosca/webshop/internal/database"
)

// Store é a parte da outbox que o relay consome. FetchPending e MarkSent
// rodam na transação aberta por BeginBatch.
type Store interface {
	BeginBatch(ctx context.Context) (database.Tx, error)
	FetchPending(ctx context.Context, tx database.Tx, limit int) ([]Record, error)
	MarkSent(ctx context.Context, tx database.Tx, id int64) error
}

// Publisher entrega o payload de um registro ao broker
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}

// Relay publica os registros pendentes da outbox em ordem
type Relay struct {
	store     Store
	publisher Publisher
	interval  time.Duration
	batch     int
	logger    *zap.Logger
}

// NewRelay cria uma nova instância de Relay
func NewRelay(store Store, publisher Publisher, interval time.Duration, batch int, logger *zap.Logger) *Relay {
	return &Relay{
		store:     store,
		publisher: publisher,
		interval:  interval,
		batch:     batch,
		logger:    logger,
	}
}

// Flush publica um lote. Para no primeiro erro de publicação para
// preservar a ordem; o registro fica pendente para a próxima rodada.
// Os registros já publicados são confirmados mesmo quando o lote para.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	tx, err := r.store.BeginBatch(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	records, err := r.store.FetchPending(ctx, tx, r.batch)
	if err != nil {
		return 0, err
	}

	sent := 0
	var flushErr error
	for _, rec := range records {
		if err := r.publisher.Publish(ctx, rec.Topic, rec.Key, rec.Payload); err != nil {
			flushErr = fmt.Errorf("failed to publish event %s: %w", rec.EventID, err)
			break
		}
		if err := r.store.MarkSent(ctx, tx, rec.ID); err != nil {
			return 0, err
		}
		sent++
	}

	if sent > 0 {
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("failed to commit outbox batch: %w", err)
		}
	}
	return sent, flushErr
}

// Run executa Flush a cada intervalo até o contexto ser cancelado
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("🚀 Outbox relay started", zap.Duration("interval", r.interval), zap.Int("batch", r.batch))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("🛑 Outbox relay stopped")
			return nil
		case <-ticker.C:
			sent, err := r.Flush(ctx)
			if err != nil && ctx.Err() == nil {
				r.logger.Error("❌ Outbox relay flush failed", zap.Int("sent", sent), zap.Error(err))
				continue
			}
			if sent > 0 {
				r.logger.Info("📤 Outbox events published", zap.Int("sent", sent))
			}
		}
	}
}
