package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/matheusmosca/webshop/internal/config"
)

// Querier é satisfeito tanto por *pgxpool.Pool quanto por pgx.Tx
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tx interface para transações
type Tx interface {
	Commit() error
	Rollback() error
}

// PostgresTx implementa a interface Tx
type PostgresTx struct {
	tx pgx.Tx
}

func (t *PostgresTx) Commit() error {
	return t.tx.Commit(context.Background())
}

// Rollback ignora transações já finalizadas, para poder ser usado com defer
func (t *PostgresTx) Rollback() error {
	err := t.tx.Rollback(context.Background())
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// Begin inicia uma nova transação
func Begin(ctx context.Context, db *pgxpool.Pool) (Tx, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &PostgresTx{tx: tx}, nil
}

// Conn devolve a conexão da transação para executar queries
func Conn(tx Tx) Querier {
	return tx.(*PostgresTx).tx
}

// IsNoRows indica que a query não encontrou linhas
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation indica violação de chave única (23505)
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Connect cria o pool de conexões e espera o banco ficar disponível
func Connect(ctx context.Context, cfg config.Database, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Configure connection pool
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Wait for database to be ready
	tries := max(cfg.ConnectTries, 1)
	for i := 0; i < tries; i++ {
		if err := pool.Ping(ctx); err == nil {
			logger.Info("✅ Connected to database with connection pool", zap.String("database", cfg.Name))
			return pool, nil
		}
		logger.Info("⏳ Waiting for database...", zap.Int("attempt", i+1), zap.Int("max_attempts", tries))

		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(cfg.ConnectPause):
		}
	}

	pool.Close()
	return nil, fmt.Errorf("failed to connect to database after %d attempts", tries)
}
