package ownership_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Joyeria-api/internal/domain"
	"github.com/jhoicas/Joyeria-api/internal/domain/entity"
	"github.com/jhoicas/Joyeria-api/internal/domain/ownership"
)

// partialLot lote de proveedor parcialmente pagado para consolidación.
func partialLot(id string, qty, cost, paid string, daysAgo int) *entity.OwnershipRecord {
	rec, _, err := ownership.NewRecord(ownership.NewRecordInput{
		ProductID:      testProductID,
		BranchID:       testBranchID,
		SourceType:     entity.SourceSupplierPurchase,
		SupplierID:     testSupplierID,
		TotalQuantity:  d(qty),
		TotalWeight:    d(qty).Mul(d("5")),
		TotalCost:      d(cost),
		InitialPayment: d(paid),
		ReceivedAt:     testNow.AddDate(0, 0, -daysAgo),
		CreatedBy:      testUser,
	}, testNow)
	if err != nil {
		panic(err)
	}
	rec.ID = id
	return rec
}

// Consolidar (10 uds, costo 1000) + (20 uds, costo 1800): el fusionado suma
// 30 unidades con costo 2800, costo unitario promedio 93.33...
func TestConsolidate_SumaTotalesYCostoPromedio(t *testing.T) {
	a := partialLot("a", "10", "1000", "1000", 10)
	b := partialLot("b", "20", "1800", "1800", 2)

	result, err := ownership.Consolidate([]*entity.OwnershipRecord{a, b}, testNow, testUser)
	require.NoError(t, err)

	merged := result.Merged
	assert.True(t, merged.TotalQuantity.Equal(d("30")))
	assert.True(t, merged.TotalCost.Equal(d("2800")))
	assert.True(t, merged.UnitCost().Round(2).Equal(d("93.33")))
	assert.True(t, merged.ReceivedAt.Equal(testNow.AddDate(0, 0, -10)),
		"el fusionado hereda la fecha de recepción más antigua")
	assert.Equal(t, entity.RecordStatusActive, merged.Status)
}

// La fracción de propiedad se preserva en agregado: sumas, no porcentajes
// re-derivados. 50% de 10 + 25% de 20 = 5 + 5 = 10 propias de 30.
func TestConsolidate_PreservaPropiedadAgregada(t *testing.T) {
	a := partialLot("a", "10", "1000", "500", 5) // 5 propias
	b := partialLot("b", "20", "2000", "500", 3) // 5 propias

	result, err := ownership.Consolidate([]*entity.OwnershipRecord{a, b}, testNow, testUser)
	require.NoError(t, err)

	merged := result.Merged
	assert.True(t, merged.OwnedQuantity.Equal(d("10")))
	assert.True(t, merged.AmountPaid.Equal(d("1000")))
	assert.True(t, merged.OutstandingAmount().Equal(d("2000")))
}

// Los absorbidos quedan en cero, en estado CONSOLIDATED y referencian al destino;
// cada uno lleva un movimiento terminal con deltas negativos.
func TestConsolidate_AbsorbidosQuedanTerminales(t *testing.T) {
	a := partialLot("a", "10", "1000", "500", 5)
	b := partialLot("b", "20", "2000", "500", 3)
	ownedA := a.OwnedQuantity

	result, err := ownership.Consolidate([]*entity.OwnershipRecord{a, b}, testNow, testUser)
	require.NoError(t, err)

	for _, absorbed := range result.Absorbed {
		assert.Equal(t, entity.RecordStatusConsolidated, absorbed.Status)
		assert.Equal(t, result.Merged.ID, absorbed.ConsolidatedInto)
		assert.True(t, absorbed.TotalQuantity.IsZero())
		assert.True(t, absorbed.OwnedQuantity.IsZero())
		assert.True(t, absorbed.AmountPaid.IsZero())
	}

	// 1 movimiento PURCHASE del fusionado + 1 ADJUSTMENT terminal por absorbido.
	require.Len(t, result.Movements, 3)
	assert.Equal(t, entity.MovementTypePurchase, result.Movements[0].Type)
	assert.Equal(t, entity.MovementTypeAdjustment, result.Movements[1].Type)
	assert.True(t, result.Movements[1].QuantityChange.Equal(ownedA.Neg()),
		"el movimiento terminal debita la propiedad que tenía el absorbido")
}

// ──────────────────────────────────────────────────────────────────────────────
// Grupos no consolidables
// ──────────────────────────────────────────────────────────────────────────────

func TestConsolidate_MenosDeDosRegistros_Invalido(t *testing.T) {
	a := partialLot("a", "10", "1000", "500", 5)
	_, err := ownership.Consolidate([]*entity.OwnershipRecord{a}, testNow, testUser)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConsolidate_ProductosDistintos_Mismatch(t *testing.T) {
	a := partialLot("a", "10", "1000", "500", 5)
	b := partialLot("b", "20", "2000", "500", 3)
	b.ProductID = "otro-producto"

	_, err := ownership.Consolidate([]*entity.OwnershipRecord{a, b}, testNow, testUser)
	assert.ErrorIs(t, err, domain.ErrConsolidationMismatch)
}

func TestConsolidate_ProveedoresDistintos_Mismatch(t *testing.T) {
	a := partialLot("a", "10", "1000", "500", 5)
	b := partialLot("b", "20", "2000", "500", 3)
	b.SupplierID = "otro-proveedor"

	_, err := ownership.Consolidate([]*entity.OwnershipRecord{a, b}, testNow, testUser)
	assert.ErrorIs(t, err, domain.ErrConsolidationMismatch)
}

// Solo lotes de compra a proveedor se consolidan; compras a clientes y
// producción propia quedan fuera.
func TestConsolidate_SoloComprasAProveedor(t *testing.T) {
	a := partialLot("a", "10", "1000", "500", 5)
	a.SourceType = entity.SourceCustomerPurchase
	b := partialLot("b", "20", "2000", "500", 3)
	b.SourceType = entity.SourceCustomerPurchase

	_, err := ownership.Consolidate([]*entity.OwnershipRecord{a, b}, testNow, testUser)
	assert.ErrorIs(t, err, domain.ErrConsolidationMismatch)
}

func TestConsolidate_RegistroNoActivo_Rechazado(t *testing.T) {
	a := partialLot("a", "10", "1000", "500", 5)
	b := partialLot("b", "20", "2000", "500", 3)
	b.Status = entity.RecordStatusExhausted

	_, err := ownership.Consolidate([]*entity.OwnershipRecord{a, b}, testNow, testUser)
	assert.ErrorIs(t, err, domain.ErrRecordNotActive)
}
