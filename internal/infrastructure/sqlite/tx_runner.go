package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción IMMEDIATE de SQLite.
// SQLite es serializable por construcción; no hay nivel de aislamiento configurable.
type TxRunner struct {
	store     *Store
	txTimeout time.Duration
}

// NewTxRunner construye el runner; txTimeout <= 0 desactiva el plazo por intento.
func NewTxRunner(store *Store, txTimeout time.Duration) *TxRunner {
	return &TxRunner{store: store, txTimeout: txTimeout}
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

	tx, err := r.store.db.BeginTx(txCtx, nil)
	if err != nil {
		return mapTxError(ctx, txCtx, fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(txCtx, NewMovementRepository(tx), NewBalanceRepository(tx), NewIdempotencyRepository(tx)); err != nil {
		return mapTxError(ctx, txCtx, err)
	}
	if err := tx.Commit(); err != nil {
		return mapTxError(ctx, txCtx, fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func mapTxError(parent, txCtx context.Context, err error) error {
	if parent.Err() != nil {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || (isInterrupted(err) && txCtx.Err() != nil) {
		return fmt.Errorf("%w: %v", domain.ErrTxTimeout, err)
	}
	if isBusy(err) {
		return fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	return err
}
