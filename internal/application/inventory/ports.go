package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en cualquier otro caso. Las implementaciones traducen
// fallos de serialización a domain.ErrTransient y el vencimiento del plazo a domain.ErrTxTimeout.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ctx context.Context,
		movRepo repository.MovementRepository,
		balanceRepo repository.BalanceRepository,
		idemRepo repository.IdempotencyRepository,
	) error) error
}
