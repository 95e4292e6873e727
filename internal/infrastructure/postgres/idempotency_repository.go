package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)

// IdempotencyRepo claves de idempotencia sobre PostgreSQL (usable con pool o tx).
type IdempotencyRepo struct {
	q Querier
}

// NewIdempotencyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIdempotencyRepository(q Querier) *IdempotencyRepo {
	return &IdempotencyRepo{q: q}
}

// Get obtiene el registro de una clave; nil, nil si no existe.
func (r *IdempotencyRepo) Get(ctx context.Context, key string) (*repository.IdempotencyRecord, error) {
	query := `SELECT idempotency_key, movement_id, request_hash, created_at FROM movement_idempotency WHERE idempotency_key = $1`
	var rec repository.IdempotencyRecord
	err := r.q.QueryRow(ctx, query, key).Scan(&rec.Key, &rec.MovementID, &rec.RequestHash, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	return &rec, nil
}

// Create registra la clave; domain.ErrDuplicate si ya existía.
func (r *IdempotencyRepo) Create(ctx context.Context, rec *repository.IdempotencyRecord) error {
	query := `
		INSERT INTO movement_idempotency (idempotency_key, movement_id, request_hash, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (idempotency_key) DO NOTHING`
	tag, err := r.q.Exec(ctx, query, rec.Key, rec.MovementID, rec.RequestHash, rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert idempotency key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicate
	}
	return nil
}
