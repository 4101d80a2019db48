package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Origen del lote: compra a proveedor, compra a cliente de mostrador o producción propia.
const (
	SourceSupplierPurchase = "SUPPLIER_PURCHASE"
	SourceCustomerPurchase = "CUSTOMER_PURCHASE"
	SourceManufactured     = "MANUFACTURED"
)

// Estado del registro. Los estados terminales son explícitos porque la razón
// por la que un registro deja de operar importa para las consultas de auditoría.
const (
	RecordStatusActive       = "ACTIVE"
	RecordStatusConsolidated = "CONSOLIDATED" // absorbido por una consolidación, terminal
	RecordStatusExhausted    = "EXHAUSTED"    // pagado por completo y consumido a cero, terminal
)

// OwnershipRecord es la raíz del agregado de propiedad: un lote de mercancía
// de un origen, para un producto, en una sucursal. Total* es el lote completo
// recibido; Owned* la fracción efectivamente pagada (y por tanto vendible).
// Solo lo mutan pagos, consumos, ajustes y consolidaciones; nunca se borra.
type OwnershipRecord struct {
	ID        string
	ProductID string
	BranchID  string

	SourceType         string
	SupplierID         string // solo SUPPLIER_PURCHASE
	PurchaseOrderID    string // solo SUPPLIER_PURCHASE
	CustomerPurchaseID string // solo CUSTOMER_PURCHASE

	TotalQuantity decimal.Decimal
	TotalWeight   decimal.Decimal // gramos
	OwnedQuantity decimal.Decimal
	OwnedWeight   decimal.Decimal

	TotalCost  decimal.Decimal
	AmountPaid decimal.Decimal

	Status           string
	ConsolidatedInto string // ID del registro consolidado que lo absorbió

	ReceivedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	CreatedBy  string

	// Version es el sello de concurrencia optimista; la capa de persistencia
	// rechaza escrituras cuyo sello no coincida con el de la fila.
	Version int64
}

// OutstandingAmount devuelve el saldo pendiente (TotalCost - AmountPaid), nunca negativo.
func (r *OwnershipRecord) OutstandingAmount() decimal.Decimal {
	out := r.TotalCost.Sub(r.AmountPaid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// OwnershipPercentage devuelve OwnedQuantity/TotalQuantity en [0,1].
// La base canónica de propiedad es la cantidad; el peso se mantiene proporcional.
func (r *OwnershipRecord) OwnershipPercentage() decimal.Decimal {
	if r.TotalQuantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return r.OwnedQuantity.Div(r.TotalQuantity)
}

// UnitCost devuelve el costo unitario del lote (TotalCost/TotalQuantity).
func (r *OwnershipRecord) UnitCost() decimal.Decimal {
	if r.TotalQuantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return r.TotalCost.Div(r.TotalQuantity)
}

// FullyOwned indica si el lote está pagado por completo.
func (r *OwnershipRecord) FullyOwned() bool {
	return r.AmountPaid.GreaterThanOrEqual(r.TotalCost)
}

// IsActive indica si el registro admite mutaciones (no está en estado terminal).
func (r *OwnershipRecord) IsActive() bool {
	return r.Status == RecordStatusActive
}
