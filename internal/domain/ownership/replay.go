package ownership

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Joyeria-api/internal/domain/entity"
)

// ReplayResult acumulado de reproducir una bitácora desde cero.
type ReplayResult struct {
	OwnedQuantity decimal.Decimal
	OwnedWeight   decimal.Decimal
	AmountPaid    decimal.Decimal
}

// Replay reproduce los movimientos de un registro en orden cronológico sumando
// deltas desde cero. Propiedad de conservación: el resultado debe coincidir
// exactamente con los campos actuales del registro.
func Replay(movements []*entity.OwnershipMovement) ReplayResult {
	res := ReplayResult{
		OwnedQuantity: decimal.Zero,
		OwnedWeight:   decimal.Zero,
		AmountPaid:    decimal.Zero,
	}
	for _, m := range movements {
		res.OwnedQuantity = res.OwnedQuantity.Add(m.QuantityChange)
		res.OwnedWeight = res.OwnedWeight.Add(m.WeightChange)
		res.AmountPaid = res.AmountPaid.Add(m.AmountChange)
	}
	return res
}

// Reconcile verifica que la bitácora reconstruya el estado actual del registro.
// Se expone como chequeo operativo de auditoría además de usarse en tests.
func Reconcile(r *entity.OwnershipRecord, movements []*entity.OwnershipMovement) bool {
	res := Replay(movements)
	return res.OwnedQuantity.Equal(r.OwnedQuantity) &&
		res.OwnedWeight.Equal(r.OwnedWeight) &&
		res.AmountPaid.Equal(r.AmountPaid)
}
