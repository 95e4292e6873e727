package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/config"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con aislamiento y plazo configurables.
type TxRunner struct {
	pool      *pgxpool.Pool
	isoLevel  pgx.TxIsoLevel
	txTimeout time.Duration
}

// NewTxRunner construye el runner con el pool y los parámetros de escritura del libro.
func NewTxRunner(pool *pgxpool.Pool, cfg config.LedgerConfig) *TxRunner {
	return &TxRunner{pool: pool, isoLevel: isoLevel(cfg.WriteIsolation), txTimeout: cfg.TxTimeout}
}

func isoLevel(s string) pgx.TxIsoLevel {
	switch s {
	case config.IsolationReadCommitted:
		return pgx.ReadCommitted
	case config.IsolationRepeatableRead:
		return pgx.RepeatableRead
	default:
		return pgx.Serializable
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	movRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
	idemRepo repository.IdempotencyRepository,
) error) error {
	txCtx, cancel := ctx, context.CancelFunc(func() {})
	if r.txTimeout > 0 {
		txCtx, cancel = context.WithTimeout(ctx, r.txTimeout)
	}
	defer cancel()

	tx, err := r.pool.BeginTx(txCtx, pgx.TxOptions{IsoLevel: r.isoLevel})
	if err != nil {
		return mapTxError(ctx, fmt.Errorf("begin transaction: %w", err))
	}
	// el contexto de la tx puede haber vencido; el rollback usa uno propio
	defer func() { _ = tx.Rollback(context.Background()) }()

	if err := fn(txCtx, NewMovementRepository(tx), NewBalanceRepository(tx), NewIdempotencyRepository(tx)); err != nil {
		return mapTxError(ctx, err)
	}
	if err := tx.Commit(txCtx); err != nil {
		return mapTxError(ctx, fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// mapTxError traduce errores del driver a errores de dominio. Una cancelación del llamador se devuelve tal cual.
func mapTxError(parent context.Context, err error) error {
	if parent.Err() != nil {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %v", domain.ErrTxTimeout, err)
	}
	if isSerializationFailure(err) {
		return fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	return err
}
