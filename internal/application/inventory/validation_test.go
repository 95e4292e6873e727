package inventory_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func TestPrepareMovement_HuellaIgualParaEntradasEquivalentes(t *testing.T) {
	a, err := inventory.PrepareMovement(inventory.MovementInputDTO{ProductCode: "zr001", Direction: "in", Quantity: 3, Note: strPtr(" x ")})
	require.NoError(t, err)
	b, err := inventory.PrepareMovement(inventory.MovementInputDTO{ProductCode: "ZR001", Direction: "IN", Quantity: 3, Note: strPtr("x")})
	require.NoError(t, err)
	assert.Equal(t, a.RequestHash, b.RequestHash)

	c, err := inventory.PrepareMovement(inventory.MovementInputDTO{ProductCode: "ZR001", Direction: "IN", Quantity: 4, Note: strPtr("x")})
	require.NoError(t, err)
	assert.NotEqual(t, a.RequestHash, c.RequestHash)
}

func TestPrepareMovement_NotaVaciaEsAusente(t *testing.T) {
	p, err := inventory.PrepareMovement(inventory.MovementInputDTO{ProductCode: "ZR001", Direction: "OUT", Quantity: 1, Note: strPtr("   ")})
	require.NoError(t, err)
	assert.Nil(t, p.Note)
	assert.Equal(t, entity.DirectionOUT, p.Direction)
}

func TestPrepareMovement_RechazaCamposLargos(t *testing.T) {
	_, err := inventory.PrepareMovement(inventory.MovementInputDTO{
		ProductCode:    "ZR001",
		Direction:      "IN",
		Quantity:       1,
		LotNumber:      strPtr(strings.Repeat("L", 51)),
		Note:           strPtr(strings.Repeat("n", 501)),
		IdempotencyKey: strings.Repeat("k", 101),
	})
	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)
}

func TestAdjustmentToMovement(t *testing.T) {
	m, err := inventory.AdjustmentToMovement(inventory.AdjustInputDTO{ProductCode: "ZR001", Delta: -7})
	require.NoError(t, err)
	assert.Equal(t, "OUT", m.Direction)
	assert.Equal(t, int64(7), m.Quantity)
	assert.Equal(t, "ajuste de inventario: -7", *m.Note)

	_, err = inventory.AdjustmentToMovement(inventory.AdjustInputDTO{ProductCode: "ZR001", Delta: math.MinInt64})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestBuildKey(t *testing.T) {
	k, err := inventory.BuildKey("zr001", strPtr("LOT001"), strPtr("2026-12-31"))
	require.NoError(t, err)
	assert.Equal(t, "ZR001|LOT001|2026-12-31", k.String())

	k, err = inventory.BuildKey("ZR001", strPtr(""), strPtr(""))
	require.NoError(t, err)
	assert.Equal(t, "ZR001|~|~", k.String())

	_, err = inventory.BuildKey("ZR001", nil, strPtr("31/12/2026"))
	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "expirationDate", verrs[0].Field)
}
