package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.BalanceRepository      = (*BalanceRepo)(nil)
	_ repository.BalanceQueryRepository = (*BalanceRepo)(nil)
)

const balanceColumns = `id, product_code, lot_number, expiration_date, quantity, version, updated_at`

// BalanceRepo saldos sobre SQLite (usable con *sql.DB o *sql.Tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de saldos.
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// Get obtiene el saldo de una clave exacta; nil, nil si no existe.
func (r *BalanceRepo) Get(ctx context.Context, key entity.BalanceKey) (*entity.Balance, error) {
	b, err := scanBalance(r.q.QueryRowContext(ctx, `SELECT `+balanceColumns+` FROM balances WHERE `+keyCond, keyArgs(key)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// ConditionalWrite inserta (expectedVersion = 0) o actualiza solo si la versión sigue siendo expectedVersion.
func (r *BalanceRepo) ConditionalWrite(ctx context.Context, b *entity.Balance, expectedVersion int64) error {
	var (
		res sql.Result
		err error
	)
	if expectedVersion == 0 {
		res, err = r.q.ExecContext(ctx, `
			INSERT INTO balances (`+balanceColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING`,
			b.ID, b.Key.ProductCode, nullString(b.Key.LotNumber), nullDate(b.Key.ExpirationDate),
			b.Quantity, b.Version, formatTime(b.UpdatedAt))
	} else {
		args := append([]any{b.Quantity, b.Version, formatTime(b.UpdatedAt)}, keyArgs(b.Key)...)
		args = append(args, expectedVersion)
		res, err = r.q.ExecContext(ctx, `
			UPDATE balances SET quantity = ?, version = ?, updated_at = ?
			WHERE `+keyCond+` AND version = ?`, args...)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrVersionMismatch
		}
		return fmt.Errorf("write balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write balance: %w", err)
	}
	if n == 0 {
		return domain.ErrVersionMismatch
	}
	return nil
}

// List lista saldos filtrados, ordenados y paginados.
func (r *BalanceRepo) List(ctx context.Context, f repository.BalanceFilter) ([]*entity.Balance, error) {
	where, args := balanceWhere(f)
	query := `SELECT ` + balanceColumns + ` FROM balances` + where + ` ORDER BY ` + balanceOrder(f) + ` LIMIT ? OFFSET ?`
	return r.queryBalances(ctx, query, append(args, f.Limit, f.Offset)...)
}

// Count cuenta los saldos que cumplen el filtro.
func (r *BalanceRepo) Count(ctx context.Context, f repository.BalanceFilter) (int, error) {
	where, args := balanceWhere(f)
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM balances`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count balances: %w", err)
	}
	return n, nil
}

// ListByProduct saldos de un producto: vencimiento ascendente (sin vencimiento al final), luego lote.
func (r *BalanceRepo) ListByProduct(ctx context.Context, productCode string) ([]*entity.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM balances WHERE product_code = ?
		ORDER BY expiration_date ASC NULLS LAST, lot_number ASC NULLS FIRST`
	return r.queryBalances(ctx, query, productCode)
}

// ListExpiring saldos con cantidad positiva y vencimiento en [from, to].
func (r *BalanceRepo) ListExpiring(ctx context.Context, from, to time.Time) ([]*entity.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM balances
		WHERE quantity > 0 AND expiration_date IS NOT NULL AND expiration_date BETWEEN ? AND ?
		ORDER BY expiration_date ASC, product_code ASC, lot_number ASC NULLS FIRST`
	return r.queryBalances(ctx, query, from.Format(entity.DateLayout), to.Format(entity.DateLayout))
}

func (r *BalanceRepo) queryBalances(ctx context.Context, query string, args ...any) ([]*entity.Balance, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()
	var list []*entity.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBalance(row rowScanner) (*entity.Balance, error) {
	var (
		b         entity.Balance
		code      string
		lot, exp  sql.NullString
		updatedAt string
	)
	if err := row.Scan(&b.ID, &code, &lot, &exp, &b.Quantity, &b.Version, &updatedAt); err != nil {
		return nil, err
	}
	key, err := scanKey(code, lot, exp)
	if err != nil {
		return nil, err
	}
	b.Key = key
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func balanceWhere(f repository.BalanceFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.ProductCode != "" {
		conds = append(conds, `product_code LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(f.ProductCode))
	}
	if f.LotNumber != "" {
		conds = append(conds, `lot_number LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(f.LotNumber))
	}
	if f.ExpirationFrom != nil {
		conds = append(conds, `expiration_date >= ?`)
		args = append(args, f.ExpirationFrom.Format(entity.DateLayout))
	}
	if f.ExpirationTo != nil {
		conds = append(conds, `expiration_date <= ?`)
		args = append(args, f.ExpirationTo.Format(entity.DateLayout))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func balanceOrder(f repository.BalanceFilter) string {
	dir := " DESC"
	if !f.Desc {
		dir = " ASC"
	}
	switch f.OrderBy {
	case repository.OrderByProductCode:
		return "product_code" + dir + ", id ASC"
	case repository.OrderByQuantity:
		return "quantity" + dir + ", id ASC"
	case repository.OrderByExpirationDate:
		return "expiration_date" + dir + " NULLS LAST, id ASC"
	default:
		return "updated_at" + dir + ", id ASC"
	}
}
