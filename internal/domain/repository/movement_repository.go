package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del libro de movimientos (solo inserción).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// ListByKey lista los movimientos de una clave, más recientes primero, con el total.
	ListByKey(ctx context.Context, key entity.BalanceKey, limit, offset int) ([]*entity.Movement, int, error)
	// SumByKey agrega el libro de una clave: Σ IN − Σ OUT y cantidad de movimientos.
	SumByKey(ctx context.Context, key entity.BalanceKey) (total int64, count int, err error)
}
