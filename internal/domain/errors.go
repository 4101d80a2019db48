package domain

import "errors"

// Errores de dominio del motor de propiedad (sin dependencias externas).
// Cada mutación rechazada nombra el invariante violado; el registro y su
// bitácora de movimientos quedan intactos (sin escrituras parciales).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrForbidden    = errors.New("acceso denegado")

	// ErrInvalidLot lote mal formado al recibir mercancía (cantidad <= 0 o costo < 0).
	ErrInvalidLot = errors.New("lote inválido")
	// ErrOverpayment el abono supera el saldo pendiente del lote.
	ErrOverpayment = errors.New("pago excede el costo total del lote")
	// ErrInsufficientOwnership se intenta consumir más de lo que el negocio posee.
	ErrInsufficientOwnership = errors.New("propiedad insuficiente sobre el lote")
	// ErrInsufficientStock el plan de costeo no puede cubrir la cantidad solicitada.
	ErrInsufficientStock = errors.New("stock propio insuficiente para el plan de costeo")
	// ErrConsolidationMismatch los registros a consolidar no comparten producto, sucursal y proveedor.
	ErrConsolidationMismatch = errors.New("registros incompatibles para consolidación")
	// ErrConcurrencyConflict el version stamp cambió entre lectura y escritura; reintentar.
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia sobre el registro")
	// ErrRecordNotActive el registro está en estado terminal (consolidado o agotado).
	ErrRecordNotActive = errors.New("el registro de propiedad no está activo")
	// ErrBlockedByPolicy el validador de propiedad rechazó la operación (regla activa).
	ErrBlockedByPolicy = errors.New("operación bloqueada por política de propiedad")
)
