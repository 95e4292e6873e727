package repository

import "context"

// ProductDirectory puerto hacia el catálogo de productos (colaborador externo).
// El libro solo necesita saber si un código existe y está activo.
type ProductDirectory interface {
	Exists(ctx context.Context, productCode string) (bool, error)
}
