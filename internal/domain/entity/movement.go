package entity

import "time"

// Direction sentido del movimiento.
type Direction string

// Tipos de movimiento de inventario.
const (
	DirectionIN  Direction = "IN"  // entrada
	DirectionOUT Direction = "OUT" // salida
)

// Valid indica si el sentido es IN u OUT.
func (d Direction) Valid() bool {
	return d == DirectionIN || d == DirectionOUT
}

// Movement es una entrada inmutable del libro: una vez confirmada no se actualiza ni se elimina.
type Movement struct {
	ID             string
	Key            BalanceKey
	Direction      Direction
	Quantity       int64 // siempre positivo; el sentido lo da Direction
	Note           *string
	CreatedBy      string
	BalanceAfter   int64 // saldo de la clave tras confirmar este movimiento
	BalanceVersion int64 // versión alcanzada por el saldo con este movimiento
	CreatedAt      time.Time
}

// Signed devuelve la cantidad con signo (+IN, -OUT).
func (m *Movement) Signed() int64 {
	if m.Direction == DirectionOUT {
		return -m.Quantity
	}
	return m.Quantity
}
