package inventory

import (
	"math"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Apply calcula el saldo resultante de aplicar un movimiento (servicio de dominio).
// NuevoSaldo = SaldoActual + Cantidad (IN) | SaldoActual - Cantidad (OUT); Versión + 1.
// No modifica current. Una salida mayor al saldo devuelve ErrInsufficientStock.
func Apply(current entity.Balance, dir entity.Direction, qty int64, now time.Time) (entity.Balance, error) {
	if qty <= 0 {
		return current, domain.ErrInvalidQuantity
	}
	next := current
	switch dir {
	case entity.DirectionIN:
		if current.Quantity > math.MaxInt64-qty {
			return current, domain.NewValidationError("quantity", "el saldo resultante excede el máximo permitido")
		}
		next.Quantity = current.Quantity + qty
	case entity.DirectionOUT:
		if current.Quantity < qty {
			return current, domain.ErrInsufficientStock
		}
		next.Quantity = current.Quantity - qty
	default:
		return current, domain.NewValidationError("direction", "debe ser IN u OUT")
	}
	next.Version = current.Version + 1
	next.UpdatedAt = now
	return next, nil
}
