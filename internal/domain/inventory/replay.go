package inventory

import (
	"fmt"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Replay recalcula los saldos agregando el libro: Σ IN − Σ OUT por clave.
// Es la referencia contra la que se verifica el saldo materializado.
func Replay(movements []*entity.Movement) map[string]int64 {
	out := make(map[string]int64)
	for _, m := range movements {
		out[m.Key.String()] += m.Signed()
	}
	return out
}

// Sum agrega los movimientos de una sola clave.
func Sum(movements []*entity.Movement) int64 {
	var total int64
	for _, m := range movements {
		total += m.Signed()
	}
	return total
}

// VerifyChain comprueba la cadena de movimientos de una clave: versiones 1..n sin huecos ni
// repetidos, BalanceAfter igual al acumulado y nunca negativo.
func VerifyChain(movements []*entity.Movement) error {
	sorted := make([]*entity.Movement, len(movements))
	copy(sorted, movements)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].BalanceVersion < sorted[j].BalanceVersion })

	var running int64
	for i, m := range sorted {
		if i > 0 && !m.Key.Equal(sorted[0].Key) {
			return fmt.Errorf("movimiento %s pertenece a otra clave (%s)", m.ID, m.Key)
		}
		want := int64(i + 1)
		if m.BalanceVersion != want {
			return fmt.Errorf("movimiento %s: versión %d, se esperaba %d", m.ID, m.BalanceVersion, want)
		}
		running += m.Signed()
		if running < 0 {
			return fmt.Errorf("movimiento %s deja saldo negativo (%d)", m.ID, running)
		}
		if m.BalanceAfter != running {
			return fmt.Errorf("movimiento %s: saldo registrado %d, acumulado %d", m.ID, m.BalanceAfter, running)
		}
	}
	return nil
}
