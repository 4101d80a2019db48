package ownership

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Joyeria-api/internal/domain"
	"github.com/jhoicas/Joyeria-api/internal/domain/entity"
)

// ConsolidationResult resultado de fundir N registros en uno a costo promedio
// ponderado. Los absorbidos se mutan en memoria (totales a cero, estado
// CONSOLIDATED) y cada uno lleva su movimiento terminal; el caso de uso
// persiste todo en una sola transacción multi-fila, o nada.
type ConsolidationResult struct {
	Merged    *entity.OwnershipRecord
	Absorbed  []*entity.OwnershipRecord
	Movements []*entity.OwnershipMovement
}

// Consolidate fusiona registros del mismo (producto, sucursal, proveedor).
// Total*, Owned* y AmountPaid del registro fusionado son las sumas: la fracción
// de propiedad se preserva en agregado, no se re-deriva de un porcentaje
// mezclado, para evitar deriva por redondeo. Los registros fuente se retienen
// con referencia al destino; nunca se borran.
func Consolidate(records []*entity.OwnershipRecord, now time.Time, userID string) (*ConsolidationResult, error) {
	if len(records) < 2 {
		return nil, domain.ErrInvalidInput
	}
	first := records[0]
	if first.SourceType != entity.SourceSupplierPurchase {
		return nil, domain.ErrConsolidationMismatch
	}
	for _, r := range records {
		if r.ProductID != first.ProductID || r.BranchID != first.BranchID ||
			r.SupplierID != first.SupplierID || r.SourceType != first.SourceType {
			return nil, domain.ErrConsolidationMismatch
		}
		if !r.IsActive() {
			return nil, domain.ErrRecordNotActive
		}
	}

	totalQty, totalWeight := decimal.Zero, decimal.Zero
	ownedQty, ownedWeight := decimal.Zero, decimal.Zero
	totalCost, amountPaid := decimal.Zero, decimal.Zero
	receivedAt := first.ReceivedAt
	for _, r := range records {
		totalQty = totalQty.Add(r.TotalQuantity)
		totalWeight = totalWeight.Add(r.TotalWeight)
		ownedQty = ownedQty.Add(r.OwnedQuantity)
		ownedWeight = ownedWeight.Add(r.OwnedWeight)
		totalCost = totalCost.Add(r.TotalCost)
		amountPaid = amountPaid.Add(r.AmountPaid)
		if r.ReceivedAt.Before(receivedAt) {
			receivedAt = r.ReceivedAt
		}
	}

	merged := &entity.OwnershipRecord{
		ID:              uuid.New().String(),
		ProductID:       first.ProductID,
		BranchID:        first.BranchID,
		SourceType:      first.SourceType,
		SupplierID:      first.SupplierID,
		PurchaseOrderID: first.PurchaseOrderID,
		TotalQuantity:   totalQty,
		TotalWeight:     totalWeight,
		OwnedQuantity:   ownedQty,
		OwnedWeight:     ownedWeight,
		TotalCost:       totalCost,
		AmountPaid:      amountPaid,
		Status:          entity.RecordStatusActive,
		ReceivedAt:      receivedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       userID,
		Version:         1,
	}

	result := &ConsolidationResult{Merged: merged, Absorbed: records}
	result.Movements = append(result.Movements,
		snapshot(merged, entity.MovementTypePurchase, ownedQty, ownedWeight, amountPaid,
			"consolidación de "+strconv.Itoa(len(records))+" lotes", now, userID))

	// Cada fuente queda absorbida: totales a cero y movimiento terminal de ajuste
	// que referencia al registro consolidado.
	for _, r := range records {
		qtyDelta := r.OwnedQuantity.Neg()
		weightDelta := r.OwnedWeight.Neg()
		amountDelta := r.AmountPaid.Neg()
		r.TotalQuantity = decimal.Zero
		r.TotalWeight = decimal.Zero
		r.OwnedQuantity = decimal.Zero
		r.OwnedWeight = decimal.Zero
		r.TotalCost = decimal.Zero
		r.AmountPaid = decimal.Zero
		r.Status = entity.RecordStatusConsolidated
		r.ConsolidatedInto = merged.ID
		r.UpdatedAt = now
		result.Movements = append(result.Movements,
			snapshot(r, entity.MovementTypeAdjustment, qtyDelta, weightDelta, amountDelta,
				"absorbido por consolidación "+merged.ID, now, userID))
	}
	return result, nil
}
