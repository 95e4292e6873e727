package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)

// IdempotencyRepo claves de idempotencia sobre SQLite.
type IdempotencyRepo struct {
	q Querier
}

// NewIdempotencyRepository construye el adaptador.
func NewIdempotencyRepository(q Querier) *IdempotencyRepo {
	return &IdempotencyRepo{q: q}
}

// Get obtiene el registro de una clave; nil, nil si no existe.
func (r *IdempotencyRepo) Get(ctx context.Context, key string) (*repository.IdempotencyRecord, error) {
	var (
		rec repository.IdempotencyRecord
		ts  string
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT idempotency_key, movement_id, request_hash, created_at FROM movement_idempotency WHERE idempotency_key = ?`, key).
		Scan(&rec.Key, &rec.MovementID, &rec.RequestHash, &ts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	if rec.CreatedAt, err = parseTime(ts); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create registra la clave; domain.ErrDuplicate si ya existía.
func (r *IdempotencyRepo) Create(ctx context.Context, rec *repository.IdempotencyRecord) error {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO movement_idempotency (idempotency_key, movement_id, request_hash, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (idempotency_key) DO NOTHING`,
		rec.Key, rec.MovementID, rec.RequestHash, formatTime(rec.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert idempotency key: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrDuplicate
	}
	return nil
}
