package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo de productos sobre SQLite.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Exists indica si el código existe y está activo.
func (r *ProductRepo) Exists(ctx context.Context, code string) (bool, error) {
	var ok bool
	err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE code = ? AND is_active = 1)`, code).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("exists product: %w", err)
	}
	return ok, nil
}

// Upsert crea o actualiza un producto por código.
func (r *ProductRepo) Upsert(ctx context.Context, p *entity.Product) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO products (code, name, is_active) VALUES (?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET name = excluded.name, is_active = excluded.is_active`,
		p.Code, p.Name, p.IsActive)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// GetByCode obtiene un producto por código.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRowContext(ctx, `SELECT code, name, is_active FROM products WHERE code = ?`, code).Scan(&p.Code, &p.Name, &p.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}
