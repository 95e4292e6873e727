package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Querier abstrae *sql.DB y *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// timeLayout ancho fijo en UTC para que ORDER BY sobre texto sea cronológico.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, s, time.UTC)
}

// keyCond compara la clave con IS para que NULL coincida con NULL.
const keyCond = `product_code = ? AND lot_number IS ? AND expiration_date IS ?`

func keyArgs(k entity.BalanceKey) []any {
	return []any{k.ProductCode, nullString(k.LotNumber), nullDate(k.ExpirationDate)}
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(entity.DateLayout)
}

// scanKey reconstruye la clave a partir de las columnas nulas.
func scanKey(code string, lot, exp sql.NullString) (entity.BalanceKey, error) {
	k := entity.BalanceKey{ProductCode: code}
	if lot.Valid {
		s := lot.String
		k.LotNumber = &s
	}
	if exp.Valid {
		d, err := entity.ParseDate(exp.String)
		if err != nil {
			return k, err
		}
		k.ExpirationDate = &d
	}
	return k, nil
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func sqliteCode(err error) (sqlite3.ErrNo, sqlite3.ErrNoExtended, bool) {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code, se.ExtendedCode, true
	}
	return 0, 0, false
}

func isUniqueViolation(err error) bool {
	code, ext, ok := sqliteCode(err)
	return ok && code == sqlite3.ErrConstraint &&
		(ext == sqlite3.ErrConstraintUnique || ext == sqlite3.ErrConstraintPrimaryKey)
}

// isBusy detecta contención de locks reintentable.
func isBusy(err error) bool {
	code, _, ok := sqliteCode(err)
	return ok && (code == sqlite3.ErrBusy || code == sqlite3.ErrLocked)
}

func isInterrupted(err error) bool {
	code, _, ok := sqliteCode(err)
	return ok && code == sqlite3.ErrInterrupt
}
