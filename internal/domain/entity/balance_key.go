package entity

import (
	"time"
)

// DateLayout formato de fecha de vencimiento (día calendario).
const DateLayout = "2006-01-02"

// BalanceKey identifica un saldo: producto, lote opcional y vencimiento opcional.
// Dos claves son iguales solo si coinciden los tres componentes; ausente solo es igual a ausente.
type BalanceKey struct {
	ProductCode    string
	LotNumber      *string
	ExpirationDate *time.Time // medianoche UTC
}

// NewBalanceKey construye la clave normalizando el vencimiento a día calendario UTC.
func NewBalanceKey(productCode string, lotNumber *string, expirationDate *time.Time) BalanceKey {
	k := BalanceKey{ProductCode: productCode}
	if lotNumber != nil {
		lot := *lotNumber
		k.LotNumber = &lot
	}
	if expirationDate != nil {
		d := TruncateDate(*expirationDate)
		k.ExpirationDate = &d
	}
	return k
}

// Equal compara las claves componente a componente.
func (k BalanceKey) Equal(o BalanceKey) bool {
	if k.ProductCode != o.ProductCode {
		return false
	}
	if (k.LotNumber == nil) != (o.LotNumber == nil) {
		return false
	}
	if k.LotNumber != nil && *k.LotNumber != *o.LotNumber {
		return false
	}
	if (k.ExpirationDate == nil) != (o.ExpirationDate == nil) {
		return false
	}
	return k.ExpirationDate == nil || k.ExpirationDate.Equal(*o.ExpirationDate)
}

// String forma canónica de la clave (logs y llaves de mapa). "~" marca componente ausente.
func (k BalanceKey) String() string {
	lot, exp := "~", "~"
	if k.LotNumber != nil {
		lot = *k.LotNumber
	}
	if k.ExpirationDate != nil {
		exp = k.ExpirationDate.Format(DateLayout)
	}
	return k.ProductCode + "|" + lot + "|" + exp
}

// LotValue devuelve el lote o "" si no existe.
func (k BalanceKey) LotValue() string {
	if k.LotNumber == nil {
		return ""
	}
	return *k.LotNumber
}

// TruncateDate reduce un instante a su día calendario en UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate interpreta una fecha YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
