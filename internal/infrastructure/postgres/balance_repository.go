package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.BalanceRepository      = (*BalanceRepo)(nil)
	_ repository.BalanceQueryRepository = (*BalanceRepo)(nil)
)

const balanceColumns = `id, product_code, lot_number, expiration_date, quantity, version, updated_at`

// BalanceRepo implementación de los puertos de saldo sobre PostgreSQL (usable con pool o tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// Get obtiene el saldo de una clave exacta; nil, nil si no existe.
func (r *BalanceRepo) Get(ctx context.Context, key entity.BalanceKey) (*entity.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM balances WHERE ` + keyCond
	b, err := scanBalance(r.q.QueryRow(ctx, query, keyArgs(key)...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// ConditionalWrite inserta (expectedVersion = 0) o actualiza el saldo solo si la versión almacenada
// sigue siendo expectedVersion. Cero filas afectadas significa que otro escritor ganó.
func (r *BalanceRepo) ConditionalWrite(ctx context.Context, b *entity.Balance, expectedVersion int64) error {
	var (
		query string
		args  []any
	)
	if expectedVersion == 0 {
		query = `
			INSERT INTO balances (id, product_code, lot_number, expiration_date, quantity, version, updated_at)
			VALUES ($4, $1, $2, $3, $5, $6, $7)
			ON CONFLICT DO NOTHING`
		args = append(keyArgs(b.Key), b.ID, b.Quantity, b.Version, b.UpdatedAt)
	} else {
		query = `
			UPDATE balances SET quantity = $4, version = $5, updated_at = $6
			WHERE ` + keyCond + ` AND version = $7`
		args = append(keyArgs(b.Key), b.Quantity, b.Version, b.UpdatedAt, expectedVersion)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrVersionMismatch
		}
		return fmt.Errorf("write balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVersionMismatch
	}
	return nil
}

// List lista saldos filtrados, ordenados y paginados.
func (r *BalanceRepo) List(ctx context.Context, f repository.BalanceFilter) ([]*entity.Balance, error) {
	where, args := balanceWhere(f)
	query := `SELECT ` + balanceColumns + ` FROM balances` + where + ` ORDER BY ` + balanceOrder(f) +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, f.Limit, f.Offset)
	return r.queryBalances(ctx, query, args...)
}

// Count cuenta los saldos que cumplen el filtro (sin paginación).
func (r *BalanceRepo) Count(ctx context.Context, f repository.BalanceFilter) (int, error) {
	where, args := balanceWhere(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM balances`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count balances: %w", err)
	}
	return n, nil
}

// ListByProduct saldos de un producto: vencimiento ascendente (sin vencimiento al final), luego lote.
func (r *BalanceRepo) ListByProduct(ctx context.Context, productCode string) ([]*entity.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM balances WHERE product_code = $1
		ORDER BY expiration_date ASC NULLS LAST, lot_number ASC NULLS FIRST`
	return r.queryBalances(ctx, query, productCode)
}

// ListExpiring saldos con cantidad positiva y vencimiento en [from, to].
func (r *BalanceRepo) ListExpiring(ctx context.Context, from, to time.Time) ([]*entity.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM balances
		WHERE quantity > 0 AND expiration_date IS NOT NULL AND expiration_date BETWEEN $1::date AND $2::date
		ORDER BY expiration_date ASC, product_code ASC, lot_number ASC NULLS FIRST`
	return r.queryBalances(ctx, query, from, to)
}

func (r *BalanceRepo) queryBalances(ctx context.Context, query string, args ...any) ([]*entity.Balance, error) {
	rows, err := r.q.Query(ctx, query, args...)
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

func scanBalance(row pgx.Row) (*entity.Balance, error) {
	var b entity.Balance
	if err := row.Scan(&b.ID, &b.Key.ProductCode, &b.Key.LotNumber, &b.Key.ExpirationDate, &b.Quantity, &b.Version, &b.UpdatedAt); err != nil {
		return nil, err
	}
	normalizeKey(&b.Key)
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}

func balanceWhere(f repository.BalanceFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.ProductCode != "" {
		add(`product_code LIKE ? ESCAPE '\'`, likePattern(f.ProductCode))
	}
	if f.LotNumber != "" {
		add(`lot_number LIKE ? ESCAPE '\'`, likePattern(f.LotNumber))
	}
	if f.ExpirationFrom != nil {
		add(`expiration_date >= ?::date`, *f.ExpirationFrom)
	}
	if f.ExpirationTo != nil {
		add(`expiration_date <= ?::date`, *f.ExpirationTo)
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
	col := "updated_at"
	switch f.OrderBy {
	case repository.OrderByProductCode:
		col = "product_code"
	case repository.OrderByQuantity:
		col = "quantity"
	case repository.OrderByExpirationDate:
		return "expiration_date" + dir + " NULLS LAST, id ASC"
	}
	return col + dir + ", id ASC"
}
