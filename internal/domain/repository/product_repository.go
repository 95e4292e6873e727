package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ProductRepository catálogo local de productos. Lo usan la carga inicial y los tests;
// el coordinador solo depende de ProductDirectory.
type ProductRepository interface {
	ProductDirectory
	Upsert(ctx context.Context, product *entity.Product) error
	// GetByCode devuelve nil, nil si no existe.
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
}
