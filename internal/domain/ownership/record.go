package ownership

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Joyeria-api/internal/domain"
	"github.com/jhoicas/Joyeria-api/internal/domain/entity"
)

// Servicio de dominio del registro de propiedad. Las funciones de este archivo
// son puras respecto a la persistencia: validan el invariante, mutan el registro
// en memoria y devuelven el movimiento con la foto posterior. El caso de uso es
// quien persiste registro + movimiento de forma atómica (TxRunner); un delta que
// viole 0 <= owned <= total o paid <= cost se rechaza antes de cualquier escritura.

// NewRecordInput datos de recepción de un lote.
type NewRecordInput struct {
	ProductID          string
	BranchID           string
	SourceType         string
	SupplierID         string
	PurchaseOrderID    string
	CustomerPurchaseID string
	TotalQuantity      decimal.Decimal
	TotalWeight        decimal.Decimal
	TotalCost          decimal.Decimal
	InitialPayment     decimal.Decimal
	ReceivedAt         time.Time
	CreatedBy          string
}

// NewRecord crea el registro de propiedad de un lote recibido y su movimiento
// PURCHASE inicial. La propiedad inicial es proporcional a InitialPayment/TotalCost
// (cero si no hubo pago; total si el lote no tiene costo, ej. producción propia).
func NewRecord(in NewRecordInput, now time.Time) (*entity.OwnershipRecord, *entity.OwnershipMovement, error) {
	if in.ProductID == "" || in.BranchID == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	if in.TotalQuantity.LessThanOrEqual(decimal.Zero) || in.TotalCost.IsNegative() ||
		in.TotalWeight.IsNegative() || in.InitialPayment.IsNegative() {
		return nil, nil, domain.ErrInvalidLot
	}
	if in.InitialPayment.GreaterThan(in.TotalCost) {
		return nil, nil, domain.ErrOverpayment
	}
	if err := validateSource(in); err != nil {
		return nil, nil, err
	}

	// Fracción pagada del lote. Un lote sin costo (producción propia) es propio al 100%.
	fraction := decimal.NewFromInt(1)
	paid := in.InitialPayment
	if in.TotalCost.IsPositive() {
		fraction = in.InitialPayment.Div(in.TotalCost)
	} else {
		paid = decimal.Zero
	}
	ownedQty := in.TotalQuantity.Mul(fraction)
	ownedWeight := in.TotalWeight.Mul(fraction)

	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = now
	}
	rec := &entity.OwnershipRecord{
		ID:                 uuid.New().String(),
		ProductID:          in.ProductID,
		BranchID:           in.BranchID,
		SourceType:         in.SourceType,
		SupplierID:         in.SupplierID,
		PurchaseOrderID:    in.PurchaseOrderID,
		CustomerPurchaseID: in.CustomerPurchaseID,
		TotalQuantity:      in.TotalQuantity,
		TotalWeight:        in.TotalWeight,
		OwnedQuantity:      ownedQty,
		OwnedWeight:        ownedWeight,
		TotalCost:          in.TotalCost,
		AmountPaid:         paid,
		Status:             entity.RecordStatusActive,
		ReceivedAt:         receivedAt,
		CreatedAt:          now,
		UpdatedAt:          now,
		CreatedBy:          in.CreatedBy,
		Version:            1,
	}
	mov := snapshot(rec, entity.MovementTypePurchase, ownedQty, ownedWeight, paid, "", now, in.CreatedBy)
	return rec, mov, nil
}

// NewManufacturedRecord crea el registro de un producto terminado fabricado a
// partir de materia prima propia ya consumida. Nace 100% propio — el costo ya
// quedó pagado en los lotes fuente — y su movimiento inicial es CONVERSION.
func NewManufacturedRecord(productID, branchID string, quantity, weight, cost decimal.Decimal, now time.Time, userID string) (*entity.OwnershipRecord, *entity.OwnershipMovement, error) {
	if productID == "" || branchID == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	if quantity.LessThanOrEqual(decimal.Zero) || weight.IsNegative() || cost.IsNegative() {
		return nil, nil, domain.ErrInvalidLot
	}
	rec := &entity.OwnershipRecord{
		ID:            uuid.New().String(),
		ProductID:     productID,
		BranchID:      branchID,
		SourceType:    entity.SourceManufactured,
		TotalQuantity: quantity,
		TotalWeight:   weight,
		OwnedQuantity: quantity,
		OwnedWeight:   weight,
		TotalCost:     cost,
		AmountPaid:    cost,
		Status:        entity.RecordStatusActive,
		ReceivedAt:    now,
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     userID,
		Version:       1,
	}
	mov := snapshot(rec, entity.MovementTypeConversion, quantity, weight, cost, "producido por conversión de materia prima", now, userID)
	return rec, mov, nil
}

// validateSource exige exactamente una referencia de origen según SourceType.
func validateSource(in NewRecordInput) error {
	switch in.SourceType {
	case entity.SourceSupplierPurchase:
		if in.SupplierID == "" || in.CustomerPurchaseID != "" {
			return domain.ErrInvalidLot
		}
	case entity.SourceCustomerPurchase:
		if in.CustomerPurchaseID == "" || in.SupplierID != "" || in.PurchaseOrderID != "" {
			return domain.ErrInvalidLot
		}
	case entity.SourceManufactured:
		if in.SupplierID != "" || in.PurchaseOrderID != "" || in.CustomerPurchaseID != "" {
			return domain.ErrInvalidLot
		}
	default:
		return domain.ErrInvalidLot
	}
	return nil
}

// ApplyPayment registra un abono y aumenta la propiedad en proporción
// amount/TotalCost sobre el lote completo, de modo que el porcentaje de
// propiedad siga a AmountPaid/TotalCost. Nunca reduce la propiedad.
func ApplyPayment(r *entity.OwnershipRecord, amount decimal.Decimal, now time.Time, userID string) (*entity.OwnershipMovement, error) {
	if !r.IsActive() {
		return nil, domain.ErrRecordNotActive
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	newPaid := r.AmountPaid.Add(amount)
	if newPaid.GreaterThan(r.TotalCost) {
		return nil, domain.ErrOverpayment
	}

	// Delta proporcional a la fracción del costo que cubre este abono.
	fraction := amount.Div(r.TotalCost)
	qtyDelta := r.TotalQuantity.Mul(fraction)
	weightDelta := r.TotalWeight.Mul(fraction)

	// Recorte por residuo decimal: owned nunca supera total.
	if r.OwnedQuantity.Add(qtyDelta).GreaterThan(r.TotalQuantity) {
		qtyDelta = r.TotalQuantity.Sub(r.OwnedQuantity)
	}
	if r.OwnedWeight.Add(weightDelta).GreaterThan(r.TotalWeight) {
		weightDelta = r.TotalWeight.Sub(r.OwnedWeight)
	}

	r.AmountPaid = newPaid
	r.OwnedQuantity = r.OwnedQuantity.Add(qtyDelta)
	r.OwnedWeight = r.OwnedWeight.Add(weightDelta)
	r.UpdatedAt = now

	return snapshot(r, entity.MovementTypePayment, qtyDelta, weightDelta, amount, "", now, userID), nil
}

// Consume debita propiedad por venta (SALE) o fundición (CONVERSION). El tope es
// lo que el negocio posee, no lo que existe físicamente: vender mercancía no
// pagada es una violación de política, no una rebaja silenciosa de inventario.
// Si weight es cero se toma el peso proporcional a la cantidad consumida.
func Consume(r *entity.OwnershipRecord, quantity, weight decimal.Decimal, movType, reason string, now time.Time, userID string) (*entity.OwnershipMovement, error) {
	if movType != entity.MovementTypeSale && movType != entity.MovementTypeConversion {
		return nil, domain.ErrInvalidInput
	}
	if !r.IsActive() {
		return nil, domain.ErrRecordNotActive
	}
	if quantity.LessThanOrEqual(decimal.Zero) || weight.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if quantity.GreaterThan(r.OwnedQuantity) {
		return nil, domain.ErrInsufficientOwnership
	}
	if weight.IsZero() && r.OwnedQuantity.IsPositive() {
		weight = r.OwnedWeight.Mul(quantity).Div(r.OwnedQuantity)
	}
	if weight.GreaterThan(r.OwnedWeight) {
		return nil, domain.ErrInsufficientOwnership
	}

	r.OwnedQuantity = r.OwnedQuantity.Sub(quantity)
	r.OwnedWeight = r.OwnedWeight.Sub(weight)
	r.UpdatedAt = now
	markExhausted(r)

	return snapshot(r, movType, quantity.Neg(), weight.Neg(), decimal.Zero, reason, now, userID), nil
}

// Adjust aplica una corrección manual con motivo obligatorio. No es una puerta
// trasera: los límites 0 <= owned <= total siguen aplicando.
func Adjust(r *entity.OwnershipRecord, quantityDelta, weightDelta decimal.Decimal, reason string, now time.Time, userID string) (*entity.OwnershipMovement, error) {
	if !r.IsActive() {
		return nil, domain.ErrRecordNotActive
	}
	if reason == "" || (quantityDelta.IsZero() && weightDelta.IsZero()) {
		return nil, domain.ErrInvalidInput
	}
	newQty := r.OwnedQuantity.Add(quantityDelta)
	newWeight := r.OwnedWeight.Add(weightDelta)
	if newQty.IsNegative() || newWeight.IsNegative() {
		return nil, domain.ErrInsufficientOwnership
	}
	if newQty.GreaterThan(r.TotalQuantity) || newWeight.GreaterThan(r.TotalWeight) {
		return nil, domain.ErrInvalidInput
	}

	r.OwnedQuantity = newQty
	r.OwnedWeight = newWeight
	r.UpdatedAt = now
	markExhausted(r)

	return snapshot(r, entity.MovementTypeAdjustment, quantityDelta, weightDelta, decimal.Zero, reason, now, userID), nil
}

// markExhausted pasa el registro a EXHAUSTED solo cuando ya no queda nada que
// consumir ni que pagar. Un lote con saldo pendiente sigue activo aunque su
// propiedad llegue a cero: debe poder recibir abonos y figurar como deuda.
func markExhausted(r *entity.OwnershipRecord) {
	if r.OwnedQuantity.IsZero() && r.FullyOwned() {
		r.Status = entity.RecordStatusExhausted
	}
}

// snapshot construye el movimiento con el delta y la foto posterior del registro.
func snapshot(r *entity.OwnershipRecord, movType string, qtyDelta, weightDelta, amountDelta decimal.Decimal, reason string, now time.Time, userID string) *entity.OwnershipMovement {
	return &entity.OwnershipMovement{
		ID:                       uuid.New().String(),
		RecordID:                 r.ID,
		Type:                     movType,
		QuantityChange:           qtyDelta,
		WeightChange:             weightDelta,
		AmountChange:             amountDelta,
		OwnedQuantityAfter:       r.OwnedQuantity,
		OwnedWeightAfter:         r.OwnedWeight,
		AmountPaidAfter:          r.AmountPaid,
		OwnershipPercentageAfter: r.OwnershipPercentage(),
		Reason:                   reason,
		Date:                     now,
		CreatedAt:                now,
		CreatedBy:                userID,
	}
}
