package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isSerializationFailure detecta fallos reintentables: 40001 (serialization_failure) y 40P01 (deadlock_detected).
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// keyCond compara la clave de saldo tratando NULL como igual a NULL. Usa $1..$3.
const keyCond = `product_code = $1 AND lot_number IS NOT DISTINCT FROM $2::varchar AND expiration_date IS NOT DISTINCT FROM $3::date`

func keyArgs(k entity.BalanceKey) []any {
	return []any{k.ProductCode, k.LotNumber, k.ExpirationDate}
}

// likePattern escapa comodines para una coincidencia parcial literal.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func normalizeKey(k *entity.BalanceKey) {
	if k.ExpirationDate != nil {
		d := entity.TruncateDate(*k.ExpirationDate)
		k.ExpirationDate = &d
	}
}
