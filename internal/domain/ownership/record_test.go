package ownership_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Joyeria-api/internal/domain"
	"github.com/jhoicas/Joyeria-api/internal/domain/entity"
	"github.com/jhoicas/Joyeria-api/internal/domain/ownership"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testProductID  = "00000000-0000-0000-0000-00000000000a"
	testBranchID   = "00000000-0000-0000-0000-00000000000b"
	testSupplierID = "00000000-0000-0000-0000-00000000000c"
	testUser       = "tester"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// buildLotInput lote de proveedor: 100 unidades, 500 gramos, costo 5000.
func buildLotInput(initialPayment string) ownership.NewRecordInput {
	return ownership.NewRecordInput{
		ProductID:      testProductID,
		BranchID:       testBranchID,
		SourceType:     entity.SourceSupplierPurchase,
		SupplierID:     testSupplierID,
		TotalQuantity:  d("100"),
		TotalWeight:    d("500"),
		TotalCost:      d("5000"),
		InitialPayment: d(initialPayment),
		CreatedBy:      testUser,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// NewRecord — recepción de lote
// ──────────────────────────────────────────────────────────────────────────────

// Lote recibido sin pago inicial: el negocio posee 0% hasta que abone.
func TestNewRecord_SinPagoInicial_PropiedadCero(t *testing.T) {
	rec, mov, err := ownership.NewRecord(buildLotInput("0"), testNow)
	require.NoError(t, err)

	assert.True(t, rec.OwnedQuantity.IsZero(), "sin pago no hay propiedad")
	assert.True(t, rec.OwnedWeight.IsZero())
	assert.True(t, rec.OwnershipPercentage().IsZero())
	assert.Equal(t, entity.RecordStatusActive, rec.Status)
	assert.Equal(t, int64(1), rec.Version)

	require.NotNil(t, mov)
	assert.Equal(t, entity.MovementTypePurchase, mov.Type)
	assert.True(t, mov.QuantityChange.IsZero())
	assert.True(t, mov.AmountChange.IsZero())
}

// Pago inicial del 50%: propiedad proporcional en cantidad y peso.
func TestNewRecord_PagoParcial_PropiedadProporcional(t *testing.T) {
	rec, mov, err := ownership.NewRecord(buildLotInput("2500"), testNow)
	require.NoError(t, err)

	assert.True(t, rec.OwnedQuantity.Equal(d("50")), "la mitad de 100 unidades")
	assert.True(t, rec.OwnedWeight.Equal(d("250")), "la mitad de 500 gramos")
	assert.True(t, rec.OwnershipPercentage().Equal(d("0.5")))
	assert.True(t, mov.QuantityChange.Equal(d("50")), "el movimiento lleva el delta inicial")
	assert.True(t, mov.AmountChange.Equal(d("2500")))
}

// Lote pagado completo al recibir: 100% propio desde el inicio.
func TestNewRecord_PagoCompleto_PropiedadTotal(t *testing.T) {
	rec, _, err := ownership.NewRecord(buildLotInput("5000"), testNow)
	require.NoError(t, err)

	assert.True(t, rec.FullyOwned())
	assert.True(t, rec.OutstandingAmount().IsZero())
}

// Lote sin costo (producción propia) nace 100% propio.
func TestNewRecord_CostoCero_PropiedadTotal(t *testing.T) {
	in := buildLotInput("0")
	in.SourceType = entity.SourceManufactured
	in.SupplierID = ""
	in.TotalCost = decimal.Zero
	rec, _, err := ownership.NewRecord(in, testNow)
	require.NoError(t, err)

	assert.True(t, rec.OwnedQuantity.Equal(rec.TotalQuantity))
	assert.True(t, rec.OwnershipPercentage().Equal(d("1")))
}

func TestNewRecord_PagoInicialMayorAlCosto_Sobrepago(t *testing.T) {
	_, _, err := ownership.NewRecord(buildLotInput("5000.01"), testNow)
	assert.ErrorIs(t, err, domain.ErrOverpayment)
}

func TestNewRecord_CantidadCero_LoteInvalido(t *testing.T) {
	in := buildLotInput("0")
	in.TotalQuantity = decimal.Zero
	_, _, err := ownership.NewRecord(in, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidLot)
}

func TestNewRecord_CostoNegativo_LoteInvalido(t *testing.T) {
	in := buildLotInput("0")
	in.TotalCost = d("-1")
	_, _, err := ownership.NewRecord(in, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidLot)
}

// Compra a proveedor sin proveedor referenciado: origen inconsistente.
func TestNewRecord_CompraProveedorSinSupplier_LoteInvalido(t *testing.T) {
	in := buildLotInput("0")
	in.SupplierID = ""
	_, _, err := ownership.NewRecord(in, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidLot)
}

// Compra a cliente no puede arrastrar referencias de proveedor.
func TestNewRecord_CompraClienteConSupplier_LoteInvalido(t *testing.T) {
	in := buildLotInput("0")
	in.SourceType = entity.SourceCustomerPurchase
	in.CustomerPurchaseID = "cp-1"
	_, _, err := ownership.NewRecord(in, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidLot)
}

// ──────────────────────────────────────────────────────────────────────────────
// ApplyPayment — abonos incrementales
// ──────────────────────────────────────────────────────────────────────────────

// Escenario completo de pago a plazos: 0% → 50% → 100%.
func TestApplyPayment_AbonosSucesivos_LlegaAlCien(t *testing.T) {
	rec, _, err := ownership.NewRecord(buildLotInput("0"), testNow)
	require.NoError(t, err)

	mov1, err := ownership.ApplyPayment(rec, d("2500"), testNow, testUser)
	require.NoError(t, err)
	assert.True(t, rec.OwnedQuantity.Equal(d("50")))
	assert.True(t, rec.OwnershipPercentage().Equal(d("0.5")))
	assert.Equal(t, entity.MovementTypePayment, mov1.Type)
	assert.True(t, mov1.QuantityChange.Equal(d("50")))
	assert.True(t, mov1.AmountChange.Equal(d("2500")))

	mov2, err := ownership.ApplyPayment(rec, d("2500"), testNow, testUser)
	require.NoError(t, err)
	assert.True(t, rec.FullyOwned(), "con el costo cubierto la propiedad es total")
	assert.True(t, rec.OwnedQuantity.Equal(d("100")))
	assert.True(t, rec.OwnedWeight.Equal(d("500")))
	assert.True(t, mov2.OwnershipPercentageAfter.Equal(d("1")))
}

// La propiedad nunca decrece con un abono (monotonicidad).
func TestApplyPayment_NuncaReducePropiedad(t *testing.T) {
	rec, _, err := ownership.NewRecord(buildLotInput("1000"), testNow)
	require.NoError(t, err)

	before := rec.OwnedQuantity
	_, err = ownership.ApplyPayment(rec, d("0.01"), testNow, testUser)
	require.NoError(t, err)
	assert.True(t, rec.OwnedQuantity.GreaterThanOrEqual(before))
}

// Un sobrepago se rechaza y el registro queda intacto.
func TestApplyPayment_Sobrepago_RegistroIntacto(t *testing.T) {
	rec, _, err := ownership.NewRecord(buildLotInput("4000"), testNow)
	require.NoError(t, err)

	qtyBefore := rec.OwnedQuantity
	paidBefore := rec.AmountPaid
	_, err = ownership.ApplyPayment(rec, d("1500"), testNow, testUser)
	assert.ErrorIs(t, err, domain.ErrOverpayment)
	assert.True(t, rec.OwnedQuantity.Equal(qtyBefore), "el rechazo no debe mutar el registro")
	assert.True(t, rec.AmountPaid.Equal(paidBefore))
}

func TestApplyPayment_MontoNoPositivo_Invalido(t *testing.T) {
	rec, _, err := ownership.NewRecord(buildLotInput("0"), testNow)
	require.NoError(t, err)

	_, err = ownership.ApplyPayment(rec, decimal.Zero, testNow, testUser)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ownership.ApplyPayment(rec, d("-10"), testNow, testUser)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Abonar sobre un registro consolidado o agotado no está permitido.
func TestApplyPayment_RegistroNoActivo_Rechazado(t *testing.T) {
	rec, _, err := ownership.NewRecord(buildLotInput("1000"), testNow)
	require.NoError(t, err)
	rec.Status = entity.RecordStatusConsolidated

	_, err = ownership.ApplyPayment(rec, d("100"), testNow, testUser)
	assert.ErrorIs(t, err, domain.ErrRecordNotActive)
}

// Residuo decimal: el último abono cierra exactamente en total, sin exceder.
func TestApplyPayment_ResiduoDecimal_NoSuperaTotal(t *testing.T) {
	in := buildLotInput("0")
	in.TotalQuantity = d("3")
	in.TotalWeight = d("9")
	in.TotalCost = d("1000")
	rec, _, err := ownership.NewRecord(in, testNow)
	require.NoError(t, err)

	_, err = ownership.ApplyPayment(rec, d("333.33"), testNow, testUser)
	require.NoError(t, err)
	_, err = ownership.ApplyPayment(rec, d("333.33"), testNow, testUser)
	require.NoError(t, err)
	_, err = ownership.ApplyPayment(rec, d("333.34"), testNow, testUser)
	require.NoError(t, err)

	assert.True(t, rec.OwnedQuantity.Equal(rec.TotalQuantity),
		"al cubrir el costo, owned debe cerrar exactamente en total")
	assert.True(t, rec.OwnedWeight.Equal(rec.TotalWeight))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consume — venta y fundición
// ──────────────────────────────────────────────────────────────────────────────

func TestConsume_Venta_DebitaYRegistraDeltaNegativo(t *testing.T) {
	rec, _, err := ownership.NewRecord(buildLotInput("5000"), testNow)
	require.NoError(t, err)

	mov, err := ownership.Consume(rec, d("30"), decimal.Zero, entity.MovementTypeSale, "", testNow, testUser)
	require.NoError(t, err)

	assert.True(t, rec.OwnedQuantity.Equal(d("70")))
	assert.True(t, rec.OwnedWeight.Equal(d("350")), "peso proporcional a la cantidad consumida")
	assert.True(t, mov.QuantityChange.Equal(d("-30")))
	assert.True(t, mov.WeightChange.Equal(d("-150")))
	assert.Equal(t, entity.RecordStatusActive, rec.Status)
}

// El tope del consumo es la propiedad, no la existencia física.
func TestConsume_MasDeLoPropio_Rechazado(t *testing.T) {
	rec, _, err := ownership.NewRecord(buildLotInput("2500"), testNow)
	require.NoError(t, err)

	_, err = ownership.Consume(rec, d("51"), decimal.Zero, entity.MovementTypeSale, "", testNow, testUser)
	assert.ErrorIs(t, err, domain.ErrInsufficientOwnership,
		"con 50 unidades propias no se pueden consumir 51 aunque existan 100 físicas")
}

// Consumir toda la propiedad de un lote pagado por completo lo agota
// (estado terminal explícito: ya no queda nada que consumir ni que pagar).
func TestConsume_AgotaElRegistro(t *testing.T) {
	rec, _, err := ownership.NewRecord(buildLotInput("5000"), testNow)
	require.NoError(t, err)

	_, err = ownership.Consume(rec, d("100"), decimal.Zero, entity.MovementTypeSale, "", testNow, testUser)
	require.NoError(t, err)
	assert.Equal(t, entity.RecordStatusExhausted, rec.Status)
	assert.False(t, rec.IsActive())
}

// Un lote a medio pagar cuya parte propia se vendió completa NO es terminal:
// la deuda con el proveedor sigue viva y los abonos deben seguir entrando.
func TestConsume_PropiedadEnCeroConSaldo_SigueActivo(t *testing.T) {
	rec, _, err := ownership.NewRecord(buildLotInput("2500"), testNow)
	require.NoError(t, err)

	_, err = ownership.Consume(rec, d("50"), decimal.Zero, entity.MovementTypeSale, "", testNow, testUser)
	require.NoError(t, err)
	assert.True(t, rec.OwnedQuantity.IsZero())
	assert.Equal(t, entity.RecordStatusActive, rec.Status, "con saldo pendiente no hay estado terminal")
	assert.True(t, rec.OutstandingAmount().Equal(d("2500")))

	// El abono del saldo recupera la propiedad de las unidades aún no pagadas.
	_, err = ownership.ApplyPayment(rec, d("2500"), testNow, testUser)
	require.NoError(t, err)
	assert.True(t, rec.FullyOwned())
	assert.True(t, rec.OwnedQuantity.Equal(d("50")))

	// Consumida también esa propiedad, y sin saldo, el lote sí queda agotado.
	_, err = ownership.Consume(rec, d("50"), decimal.Zero, entity.MovementTypeSale, "", testNow, testUser)
	require.NoError(t, err)
	assert.Equal(t, entity.RecordStatusExhausted, rec.Status)
}

func TestConsume_TipoNoPermitido_Invalido(t *testing.T) {
	rec, _, err := ownership.NewRecord(buildLotInput("5000"), testNow)
	require.NoError(t, err)

	_, err = ownership.Consume(rec, d("1"), decimal.Zero, entity.MovementTypePayment, "", testNow, testUser)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "solo SALE y CONVERSION consumen propiedad")
}

// ──────────────────────────────────────────────────────────────────────────────
// Adjust — correcciones manuales
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjust_SinMotivo_Invalido(t *testing.T) {
	rec, _, err := ownership.NewRecord(buildLotInput("2500"), testNow)
	require.NoError(t, err)

	_, err = ownership.Adjust(rec, d("1"), decimal.Zero, "", testNow, testUser)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "todo ajuste requiere motivo")
}

func TestAdjust_DeltaDejaNegativo_Rechazado(t *testing.T) {
	rec, _, err := ownership.NewRecord(buildLotInput("2500"), testNow)
	require.NoError(t, err)

	_, err = ownership.Adjust(rec, d("-51"), decimal.Zero, "merma", testNow, testUser)
	assert.ErrorIs(t, err, domain.ErrInsufficientOwnership)
}

func TestAdjust_DeltaSuperaTotal_Rechazado(t *testing.T) {
	rec, _, err := ownership.NewRecord(buildLotInput("2500"), testNow)
	require.NoError(t, err)

	_, err = ownership.Adjust(rec, d("51"), decimal.Zero, "conteo físico", testNow, testUser)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "owned no puede superar total")
}

// Ajustar la propiedad a cero con costo sin cubrir deja el lote activo,
// igual que un consumo: la deuda no desaparece con la mercancía.
func TestAdjust_ACeroConSaldo_SigueActivo(t *testing.T) {
	rec, _, err := ownership.NewRecord(buildLotInput("2500"), testNow)
	require.NoError(t, err)

	_, err = ownership.Adjust(rec, d("-50"), d("-250"), "decomiso de vitrina", testNow, testUser)
	require.NoError(t, err)
	assert.True(t, rec.OwnedQuantity.IsZero())
	assert.Equal(t, entity.RecordStatusActive, rec.Status)
}

func TestAdjust_CorreccionValida_MueveDentroDeLimites(t *testing.T) {
	rec, _, err := ownership.NewRecord(buildLotInput("2500"), testNow)
	require.NoError(t, err)

	mov, err := ownership.Adjust(rec, d("-5"), d("-25"), "pieza dañada en vitrina", testNow, testUser)
	require.NoError(t, err)
	assert.True(t, rec.OwnedQuantity.Equal(d("45")))
	assert.Equal(t, "pieza dañada en vitrina", mov.Reason)
}

// ──────────────────────────────────────────────────────────────────────────────
// Replay — propiedad de conservación de la bitácora
// ──────────────────────────────────────────────────────────────────────────────

// Tras una secuencia arbitraria de operaciones, reproducir los deltas desde cero
// reconstruye exactamente el estado actual del registro.
func TestReplay_ConservacionTrasSecuencia(t *testing.T) {
	rec, mov0, err := ownership.NewRecord(buildLotInput("1000"), testNow)
	require.NoError(t, err)
	movements := []*entity.OwnershipMovement{mov0}

	mov, err := ownership.ApplyPayment(rec, d("1500"), testNow, testUser)
	require.NoError(t, err)
	movements = append(movements, mov)

	mov, err = ownership.Consume(rec, d("10"), decimal.Zero, entity.MovementTypeSale, "", testNow, testUser)
	require.NoError(t, err)
	movements = append(movements, mov)

	mov, err = ownership.Adjust(rec, d("-2"), d("-10"), "merma de pulido", testNow, testUser)
	require.NoError(t, err)
	movements = append(movements, mov)

	mov, err = ownership.ApplyPayment(rec, d("2500"), testNow, testUser)
	require.NoError(t, err)
	movements = append(movements, mov)

	assert.True(t, ownership.Reconcile(rec, movements),
		"la suma de deltas debe reconstruir owned quantity, weight y amount paid")

	replayed := ownership.Replay(movements)
	assert.True(t, replayed.OwnedQuantity.Equal(rec.OwnedQuantity))
	assert.True(t, replayed.OwnedWeight.Equal(rec.OwnedWeight))
	assert.True(t, replayed.AmountPaid.Equal(rec.AmountPaid))
}

// Una bitácora manipulada no reconcilia.
func TestReplay_BitacoraManipulada_NoReconcilia(t *testing.T) {
	rec, mov0, err := ownership.NewRecord(buildLotInput("2500"), testNow)
	require.NoError(t, err)

	tampered := *mov0
	tampered.QuantityChange = tampered.QuantityChange.Add(d("1"))
	assert.False(t, ownership.Reconcile(rec, []*entity.OwnershipMovement{&tampered}))
}

// ──────────────────────────────────────────────────────────────────────────────
// NewManufacturedRecord — producto terminado
// ──────────────────────────────────────────────────────────────────────────────

func TestNewManufacturedRecord_NaceTotalmentePropio(t *testing.T) {
	rec, mov, err := ownership.NewManufacturedRecord(testProductID, testBranchID, d("5"), d("25"), d("800"), testNow, testUser)
	require.NoError(t, err)

	assert.Equal(t, entity.SourceManufactured, rec.SourceType)
	assert.True(t, rec.FullyOwned())
	assert.True(t, rec.UnitCost().Equal(d("160")), "costo unitario = costo de las capas / unidades")
	assert.Equal(t, entity.MovementTypeConversion, mov.Type)
}

func TestNewManufacturedRecord_CantidadCero_Invalido(t *testing.T) {
	_, _, err := ownership.NewManufacturedRecord(testProductID, testBranchID, decimal.Zero, d("25"), d("800"), testNow, testUser)
	assert.ErrorIs(t, err, domain.ErrInvalidLot)
}
