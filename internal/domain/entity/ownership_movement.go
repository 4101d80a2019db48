package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento sobre un registro de propiedad.
const (
	MovementTypePurchase   = "PURCHASE"   // recepción del lote
	MovementTypePayment    = "PAYMENT"    // abono al proveedor/cliente
	MovementTypeSale       = "SALE"       // consumo por venta
	MovementTypeAdjustment = "ADJUSTMENT" // corrección manual o absorción por consolidación
	MovementTypeConversion = "CONVERSION" // fundición de materia prima a producto terminado
)

// OwnershipMovement es una entrada inmutable y append-only de la bitácora de un
// registro de propiedad. Guarda el delta firmado y la foto posterior al delta,
// de modo que la entrada se explica sola en auditoría sin recomputar nada.
// Referencia al padre solo por RecordID; nunca por puntero a estado mutable.
//
// Invariante de reconstrucción: reproducir todos los movimientos de un registro
// en orden y sumar los deltas debe reproducir exactamente sus campos owned/paid.
type OwnershipMovement struct {
	ID       string
	RecordID string
	Type     string

	// Deltas firmados aplicados por el evento.
	QuantityChange decimal.Decimal
	WeightChange   decimal.Decimal
	AmountChange   decimal.Decimal

	// Foto del registro después de aplicar el delta.
	OwnedQuantityAfter       decimal.Decimal
	OwnedWeightAfter         decimal.Decimal
	AmountPaidAfter          decimal.Decimal
	OwnershipPercentageAfter decimal.Decimal

	Reason    string // motivo en ajustes; referencia al destino en consolidaciones
	Date      time.Time
	CreatedAt time.Time
	CreatedBy string
}
