package dto

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/movements.
type RegisterMovementRequest struct {
	ProductCode    string  `json:"productCode" example:"ZR001"`
	Quantity       int64   `json:"quantity" example:"50"`
	Direction      string  `json:"direction" example:"IN"`
	LotNumber      *string `json:"lotNumber,omitempty" example:"LOT001"`
	ExpirationDate *string `json:"expirationDate,omitempty" example:"2026-12-31"`
	Note           *string `json:"note,omitempty"`
	IdempotencyKey string  `json:"idempotencyKey,omitempty"`
}

// AdjustMovementRequest body para POST /api/movements/adjust. Delta positivo = entrada, negativo = salida.
type AdjustMovementRequest struct {
	ProductCode    string  `json:"productCode" example:"ZR001"`
	Delta          int64   `json:"delta" example:"-3"`
	LotNumber      *string `json:"lotNumber,omitempty"`
	ExpirationDate *string `json:"expirationDate,omitempty"`
	Note           *string `json:"note,omitempty"`
	IdempotencyKey string  `json:"idempotencyKey,omitempty"`
}

// KeyQuery identifica una clave de saldo desde query params.
type KeyQuery struct {
	ProductCode    string  `query:"productCode"`
	LotNumber      *string `query:"lotNumber"`
	ExpirationDate *string `query:"expirationDate"`
}

// BalanceListQuery filtros de GET /api/balances.
type BalanceListQuery struct {
	PageRequest
	ProductCode    string `query:"productCode"`
	LotNumber      string `query:"lotNumber"`
	ExpirationFrom string `query:"expirationFrom"`
	ExpirationTo   string `query:"expirationTo"`
	OrderBy        string `query:"orderBy"`
	SortOrder      string `query:"sortOrder"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID             string    `json:"id"`
	ProductCode    string    `json:"productCode"`
	LotNumber      *string   `json:"lotNumber"`
	ExpirationDate *string   `json:"expirationDate"`
	Direction      string    `json:"direction"`
	Quantity       int64     `json:"quantity"`
	Note           *string   `json:"note"`
	CreatedBy      string    `json:"createdBy,omitempty"`
	BalanceAfter   int64     `json:"balanceAfter"`
	BalanceVersion int64     `json:"balanceVersion"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MovementListResponse página de movimientos de una clave.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	PageResponse
}

// BalanceResponse salida de un saldo.
type BalanceResponse struct {
	ProductCode    string    `json:"productCode"`
	LotNumber      *string   `json:"lotNumber"`
	ExpirationDate *string   `json:"expirationDate"`
	Quantity       int64     `json:"quantity"`
	Version        int64     `json:"version"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// BalanceListResponse lista paginada de saldos.
type BalanceListResponse struct {
	Items []BalanceResponse `json:"items"`
	PageResponse
}

// ProductBalancesResponse todos los saldos de un producto.
type ProductBalancesResponse struct {
	ProductCode   string            `json:"productCode"`
	Balances      []BalanceResponse `json:"balances"`
	TotalQuantity int64             `json:"totalQuantity"`
}

// ExpiringBalanceResponse saldo próximo a vencer.
type ExpiringBalanceResponse struct {
	BalanceResponse
	DaysUntilExpiration int `json:"daysUntilExpiration"`
}

// ExpiringResponse resultado de GET /api/balances/expiring.
type ExpiringResponse struct {
	Threshold int                       `json:"threshold"`
	Items     []ExpiringBalanceResponse `json:"items"`
}

// ReconcileResponse comparación entre saldo materializado y agregación del libro.
type ReconcileResponse struct {
	ProductCode     string  `json:"productCode"`
	LotNumber       *string `json:"lotNumber"`
	ExpirationDate  *string `json:"expirationDate"`
	BalanceQuantity int64   `json:"balanceQuantity"`
	BalanceVersion  int64   `json:"balanceVersion"`
	LedgerQuantity  int64   `json:"ledgerQuantity"`
	MovementCount   int     `json:"movementCount"`
	Consistent      bool    `json:"consistent"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(entity.DateLayout)
	return &s
}

// NewMovementResponse convierte la entidad a DTO.
func NewMovementResponse(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		ProductCode:    m.Key.ProductCode,
		LotNumber:      m.Key.LotNumber,
		ExpirationDate: formatDate(m.Key.ExpirationDate),
		Direction:      string(m.Direction),
		Quantity:       m.Quantity,
		Note:           m.Note,
		CreatedBy:      m.CreatedBy,
		BalanceAfter:   m.BalanceAfter,
		BalanceVersion: m.BalanceVersion,
		CreatedAt:      m.CreatedAt,
	}
}

// NewBalanceResponse convierte la entidad a DTO.
func NewBalanceResponse(b *entity.Balance) BalanceResponse {
	return BalanceResponse{
		ProductCode:    b.Key.ProductCode,
		LotNumber:      b.Key.LotNumber,
		ExpirationDate: formatDate(b.Key.ExpirationDate),
		Quantity:       b.Quantity,
		Version:        b.Version,
		UpdatedAt:      b.UpdatedAt,
	}
}
