package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, product_code, lot_number, expiration_date, direction, quantity, note, created_by, balance_after, balance_version, created_at`

// MovementRepo libro de movimientos sobre SQLite (usable con *sql.DB o *sql.Tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO movements (`+movementColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Key.ProductCode, nullString(m.Key.LotNumber), nullDate(m.Key.ExpirationDate),
		string(m.Direction), m.Quantity, nullString(m.Note), m.CreatedBy,
		m.BalanceAfter, m.BalanceVersion, formatTime(m.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento; nil, nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRowContext(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByKey movimientos de una clave, más recientes primero.
func (r *MovementRepo) ListByKey(ctx context.Context, key entity.BalanceKey, limit, offset int) ([]*entity.Movement, int, error) {
	var total int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM movements WHERE `+keyCond, keyArgs(key)...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+movementColumns+` FROM movements WHERE `+keyCond+` ORDER BY balance_version DESC LIMIT ? OFFSET ?`,
		append(keyArgs(key), limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

// SumByKey agrega el libro de una clave: Σ IN − Σ OUT y número de movimientos.
func (r *MovementRepo) SumByKey(ctx context.Context, key entity.BalanceKey) (int64, int, error) {
	var (
		total int64
		count int
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN direction = 'IN' THEN quantity ELSE -quantity END), 0), COUNT(*)
		FROM movements WHERE `+keyCond, keyArgs(key)...).Scan(&total, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("sum movements: %w", err)
	}
	return total, count, nil
}

func scanMovement(row rowScanner) (*entity.Movement, error) {
	var (
		m              entity.Movement
		code, dir, ts  string
		lot, exp, note sql.NullString
	)
	err := row.Scan(&m.ID, &code, &lot, &exp, &dir, &m.Quantity, &note, &m.CreatedBy,
		&m.BalanceAfter, &m.BalanceVersion, &ts)
	if err != nil {
		return nil, err
	}
	if m.Key, err = scanKey(code, lot, exp); err != nil {
		return nil, err
	}
	m.Direction = entity.Direction(dir)
	if note.Valid {
		s := note.String
		m.Note = &s
	}
	if m.CreatedAt, err = parseTime(ts); err != nil {
		return nil, err
	}
	return &m, nil
}
