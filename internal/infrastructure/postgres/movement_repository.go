package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, product_code, lot_number, expiration_date, direction, quantity, note, created_by, balance_after, balance_version, created_at`

// MovementRepo implementación del libro de movimientos sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta un movimiento. Nunca se actualiza ni se elimina.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Key.ProductCode, m.Key.LotNumber, m.Key.ExpirationDate, string(m.Direction), m.Quantity,
		m.Note, m.CreatedBy, m.BalanceAfter, m.BalanceVersion, m.CreatedAt,
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
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByKey movimientos de una clave, más recientes primero (versión descendente).
func (r *MovementRepo) ListByKey(ctx context.Context, key entity.BalanceKey, limit, offset int) ([]*entity.Movement, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM movements WHERE `+keyCond, keyArgs(key)...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}
	query := `SELECT ` + movementColumns + ` FROM movements WHERE ` + keyCond + `
		ORDER BY balance_version DESC LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, append(keyArgs(key), limit, offset)...)
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
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'IN' THEN quantity ELSE -quantity END), 0)::bigint, COUNT(*)
		FROM movements WHERE ` + keyCond
	var (
		total int64
		count int
	)
	if err := r.q.QueryRow(ctx, query, keyArgs(key)...).Scan(&total, &count); err != nil {
		return 0, 0, fmt.Errorf("sum movements: %w", err)
	}
	return total, count, nil
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var (
		m   entity.Movement
		dir string
	)
	err := row.Scan(&m.ID, &m.Key.ProductCode, &m.Key.LotNumber, &m.Key.ExpirationDate, &dir, &m.Quantity,
		&m.Note, &m.CreatedBy, &m.BalanceAfter, &m.BalanceVersion, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Direction = entity.Direction(dir)
	normalizeKey(&m.Key)
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}
