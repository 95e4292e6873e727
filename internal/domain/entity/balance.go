package entity

import "time"

// Balance saldo materializado y versionado por BalanceKey.
// Se crea de forma perezosa con el primer movimiento y nunca se elimina.
type Balance struct {
	ID        string
	Key       BalanceKey
	Quantity  int64
	Version   int64
	UpdatedAt time.Time
}

// Persisted indica si la fila ya existe en el almacén (versión > 0).
func (b *Balance) Persisted() bool {
	return b.Version > 0
}

// ExpiringBalance saldo próximo a vencer con los días restantes ya calculados.
type ExpiringBalance struct {
	Balance
	DaysUntilExpiration int
}
