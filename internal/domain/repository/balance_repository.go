package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// BalanceRepository define el puerto de escritura del saldo materializado.
// Usado dentro de transacciones: la escritura condicional es atómica con la inserción del movimiento.
type BalanceRepository interface {
	// Get devuelve nil, nil si la clave aún no tiene fila.
	Get(ctx context.Context, key entity.BalanceKey) (*entity.Balance, error)
	// ConditionalWrite persiste balance solo si la versión almacenada sigue siendo expectedVersion
	// (0 = la fila no debe existir). Si otro escritor avanzó, devuelve domain.ErrVersionMismatch.
	ConditionalWrite(ctx context.Context, balance *entity.Balance, expectedVersion int64) error
}

// BalanceOrder columna de ordenamiento de listados.
type BalanceOrder string

// Columnas de ordenamiento permitidas.
const (
	OrderByUpdatedAt      BalanceOrder = "updatedAt"
	OrderByProductCode    BalanceOrder = "productCode"
	OrderByQuantity       BalanceOrder = "quantity"
	OrderByExpirationDate BalanceOrder = "expirationDate"
)

// Valid indica si la columna está permitida.
func (o BalanceOrder) Valid() bool {
	switch o {
	case OrderByUpdatedAt, OrderByProductCode, OrderByQuantity, OrderByExpirationDate:
		return true
	}
	return false
}

// BalanceFilter filtros de listado. ProductCode y LotNumber son coincidencias parciales.
type BalanceFilter struct {
	ProductCode    string
	LotNumber      string
	ExpirationFrom *time.Time
	ExpirationTo   *time.Time
	OrderBy        BalanceOrder
	Desc           bool
	Limit          int
	Offset         int
}

// BalanceQueryRepository define el puerto de lectura de saldos (sin bloqueo, read committed).
type BalanceQueryRepository interface {
	Get(ctx context.Context, key entity.BalanceKey) (*entity.Balance, error)
	List(ctx context.Context, filter BalanceFilter) ([]*entity.Balance, error)
	Count(ctx context.Context, filter BalanceFilter) (int, error)
	// ListByProduct ordena por vencimiento ascendente (sin vencimiento al final) y lote.
	ListByProduct(ctx context.Context, productCode string) ([]*entity.Balance, error)
	// ListExpiring devuelve saldos con cantidad > 0 y vencimiento en [from, to], ascendente.
	ListExpiring(ctx context.Context, from, to time.Time) ([]*entity.Balance, error)
}
