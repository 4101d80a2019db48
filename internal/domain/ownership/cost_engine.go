package ownership

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Joyeria-api/internal/domain"
	"github.com/jhoicas/Joyeria-api/internal/domain/entity"
)

// Métodos de costeo soportados por el motor.
const (
	CostMethodWeightedAverage = "WEIGHTED_AVERAGE"
	CostMethodFIFO            = "FIFO"
	CostMethodLIFO            = "LIFO"
)

// CostLayer es una capa de costo: cuánto tomar de qué registro y a qué costo
// unitario. En promedio ponderado la capa es única y no apunta a un registro.
type CostLayer struct {
	RecordID  string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
	LayerCost decimal.Decimal // Quantity * UnitCost
}

// CostPlan es el resultado del costeo para una cantidad solicitada. El motor es
// de solo lectura: planifica capas; ejecutar el consumo (y sus invariantes) es
// responsabilidad del orquestador, registro por registro.
type CostPlan struct {
	Method    string
	Quantity  decimal.Decimal
	Layers    []CostLayer
	TotalCost decimal.Decimal
}

// PlanCost selecciona capas de costo sobre registros no agotados de un producto
// en una sucursal. Los registros deben venir ordenados por fecha de recepción
// ascendente (el repositorio lo garantiza). Falla con ErrInsufficientStock si la
// propiedad disponible no cubre la cantidad solicitada.
func PlanCost(method string, records []*entity.OwnershipRecord, quantity decimal.Decimal) (*CostPlan, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	switch method {
	case CostMethodWeightedAverage:
		return planWeightedAverage(records, quantity)
	case CostMethodFIFO:
		return planLayered(method, records, quantity)
	case CostMethodLIFO:
		reversed := make([]*entity.OwnershipRecord, len(records))
		for i, r := range records {
			reversed[len(records)-1-i] = r
		}
		return planLayered(method, reversed, quantity)
	default:
		return nil, domain.ErrInvalidInput
	}
}

// planWeightedAverage calcula una sola tasa mezclada sobre todos los registros
// elegibles: Σ(owned_i * unitCost_i) / Σ(owned_i).
func planWeightedAverage(records []*entity.OwnershipRecord, quantity decimal.Decimal) (*CostPlan, error) {
	totalOwned := decimal.Zero
	weightedSum := decimal.Zero
	for _, r := range records {
		if !eligible(r) {
			continue
		}
		totalOwned = totalOwned.Add(r.OwnedQuantity)
		weightedSum = weightedSum.Add(r.OwnedQuantity.Mul(r.UnitCost()))
	}
	if totalOwned.LessThan(quantity) {
		return nil, domain.ErrInsufficientStock
	}
	blended := weightedSum.Div(totalOwned)
	layer := CostLayer{Quantity: quantity, UnitCost: blended, LayerCost: quantity.Mul(blended)}
	return &CostPlan{
		Method:    CostMethodWeightedAverage,
		Quantity:  quantity,
		Layers:    []CostLayer{layer},
		TotalCost: layer.LayerCost,
	}, nil
}

// planLayered consume capas en el orden recibido (FIFO: más antiguo primero;
// LIFO: el caller invierte). Si una capa no alcanza, se toma completa y se
// continúa con la siguiente.
func planLayered(method string, records []*entity.OwnershipRecord, quantity decimal.Decimal) (*CostPlan, error) {
	remaining := quantity
	plan := &CostPlan{Method: method, Quantity: quantity, TotalCost: decimal.Zero}
	for _, r := range records {
		if !eligible(r) {
			continue
		}
		take := r.OwnedQuantity
		if take.GreaterThan(remaining) {
			take = remaining
		}
		layer := CostLayer{
			RecordID:  r.ID,
			Quantity:  take,
			UnitCost:  r.UnitCost(),
			LayerCost: take.Mul(r.UnitCost()),
		}
		plan.Layers = append(plan.Layers, layer)
		plan.TotalCost = plan.TotalCost.Add(layer.LayerCost)
		remaining = remaining.Sub(take)
		if remaining.IsZero() {
			return plan, nil
		}
	}
	return nil, domain.ErrInsufficientStock
}

// eligible filtra registros que aportan capas: activos y con propiedad disponible.
func eligible(r *entity.OwnershipRecord) bool {
	return r.IsActive() && r.OwnedQuantity.IsPositive()
}
