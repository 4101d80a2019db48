package ownership

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Joyeria-api/internal/domain/entity"
)

// Severidad de alerta según el porcentaje de propiedad. Solo informa; nunca
// bloquea por sí sola.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Policy son las reglas de negocio inyectadas al validador: un método por regla,
// de modo que políticas alternativas sean intercambiables sin tocar el validador.
// Los valores vienen del colaborador de configuración; el motor no los almacena.
type Policy interface {
	// Umbrales de porcentaje de propiedad en [0,1], con critical < high < low.
	LowOwnershipThreshold() decimal.Decimal
	HighRiskThreshold() decimal.Decimal
	CriticalThreshold() decimal.Decimal

	// Interruptores de regla.
	BlockSaleBelowThreshold() bool
	RequirePaymentConfirmation() bool
	ValidateTransfers() bool
	ValidateInventoryAdjustments() bool
}

// StaticPolicy implementación de Policy con valores fijos (cargados desde config).
type StaticPolicy struct {
	LowThreshold     decimal.Decimal
	HighThreshold    decimal.Decimal
	CriticalLevel    decimal.Decimal
	BlockSales       bool
	ConfirmPayments  bool
	CheckTransfers   bool
	CheckAdjustments bool
}

func (p StaticPolicy) LowOwnershipThreshold() decimal.Decimal { return p.LowThreshold }
func (p StaticPolicy) HighRiskThreshold() decimal.Decimal     { return p.HighThreshold }
func (p StaticPolicy) CriticalThreshold() decimal.Decimal     { return p.CriticalLevel }
func (p StaticPolicy) BlockSaleBelowThreshold() bool          { return p.BlockSales }
func (p StaticPolicy) RequirePaymentConfirmation() bool       { return p.ConfirmPayments }
func (p StaticPolicy) ValidateTransfers() bool                { return p.CheckTransfers }
func (p StaticPolicy) ValidateInventoryAdjustments() bool     { return p.CheckAdjustments }

// ValidationResult respuesta del validador: decisión, porcentaje actual,
// severidad informativa y motivo cuando se bloquea.
type ValidationResult struct {
	Allowed    bool
	Percentage decimal.Decimal
	Severity   string
	Reason     string
}

// ValidateForSale chequeo de política previo a una venta. Solo lectura.
// Bloquea si la cantidad supera la propiedad, o si el porcentaje está bajo el
// umbral y la regla de bloqueo de ventas está activa.
func ValidateForSale(r *entity.OwnershipRecord, quantity decimal.Decimal, p Policy) ValidationResult {
	pct := r.OwnershipPercentage()
	res := ValidationResult{Allowed: true, Percentage: pct, Severity: ClassifySeverity(pct, p)}
	if !r.IsActive() {
		res.Allowed = false
		res.Reason = "el registro no está activo"
		return res
	}
	if quantity.GreaterThan(r.OwnedQuantity) {
		res.Allowed = false
		res.Reason = "cantidad solicitada supera la propiedad del lote"
		return res
	}
	if p.BlockSaleBelowThreshold() && pct.LessThan(p.LowOwnershipThreshold()) {
		res.Allowed = false
		res.Reason = "porcentaje de propiedad bajo el umbral de venta"
	}
	return res
}

// ValidateForTransfer chequeo previo a un traslado entre sucursales, gobernado
// por su propio interruptor de regla.
func ValidateForTransfer(r *entity.OwnershipRecord, quantity decimal.Decimal, p Policy) ValidationResult {
	pct := r.OwnershipPercentage()
	res := ValidationResult{Allowed: true, Percentage: pct, Severity: ClassifySeverity(pct, p)}
	if !p.ValidateTransfers() {
		return res
	}
	if !r.IsActive() || quantity.GreaterThan(r.OwnedQuantity) {
		res.Allowed = false
		res.Reason = "propiedad insuficiente para trasladar"
	}
	return res
}

// ValidateForInventoryAdjustment chequeo previo a un ajuste de inventario,
// gobernado por su propio interruptor de regla.
func ValidateForInventoryAdjustment(r *entity.OwnershipRecord, quantityDelta decimal.Decimal, p Policy) ValidationResult {
	pct := r.OwnershipPercentage()
	res := ValidationResult{Allowed: true, Percentage: pct, Severity: ClassifySeverity(pct, p)}
	if !p.ValidateInventoryAdjustments() {
		return res
	}
	if !r.IsActive() {
		res.Allowed = false
		res.Reason = "el registro no está activo"
		return res
	}
	if quantityDelta.IsNegative() && quantityDelta.Abs().GreaterThan(r.OwnedQuantity) {
		res.Allowed = false
		res.Reason = "el ajuste dejaría la propiedad en negativo"
	}
	return res
}

// ClassifySeverity clasifica el porcentaje contra los umbrales configurados.
// Función pura; se usa para alertar, nunca para bloquear por sí sola.
func ClassifySeverity(pct decimal.Decimal, p Policy) string {
	switch {
	case pct.LessThan(p.CriticalThreshold()):
		return SeverityCritical
	case pct.LessThan(p.HighRiskThreshold()):
		return SeverityHigh
	case pct.LessThan(p.LowOwnershipThreshold()):
		return SeverityMedium
	default:
		return SeverityLow
	}
}
