package repository

import (
	"context"
	"time"
)

// IdempotencyRecord asocia una clave de cliente con el movimiento que produjo.
type IdempotencyRecord struct {
	Key         string
	MovementID  string
	RequestHash string
	CreatedAt   time.Time
}

// IdempotencyRepository puerto de deduplicación de envíos repetidos.
type IdempotencyRepository interface {
	// Get devuelve nil, nil si la clave no existe.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Create devuelve domain.ErrDuplicate si la clave ya fue registrada.
	Create(ctx context.Context, record *IdempotencyRecord) error
}
