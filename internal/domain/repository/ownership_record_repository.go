package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Joyeria-api/internal/domain/entity"
)

// ConsolidationGroup grupo (producto, sucursal, proveedor) con más de un
// registro activo, candidato a consolidación periódica.
type ConsolidationGroup struct {
	ProductID  string
	BranchID   string
	SupplierID string
	Records    int
}

// ProductOwnershipSummary proyección agregada de propiedad por producto.
type ProductOwnershipSummary struct {
	ProductID     string
	Records       int
	TotalQuantity decimal.Decimal
	OwnedQuantity decimal.Decimal
	TotalCost     decimal.Decimal
	AmountPaid    decimal.Decimal
	Outstanding   decimal.Decimal
}

// OwnershipRecordRepository puerto de persistencia del agregado de propiedad.
// Update es de concurrencia optimista: escribe solo si el version stamp leído
// sigue vigente y lo incrementa; si no, retorna domain.ErrConcurrencyConflict.
type OwnershipRecordRepository interface {
	Create(r *entity.OwnershipRecord) error
	GetByID(id string) (*entity.OwnershipRecord, error)
	Update(r *entity.OwnershipRecord) error

	// ListActive todos los registros activos de un producto en una sucursal,
	// ordenados por fecha de recepción ascendente. Incluye lotes con propiedad
	// en cero: cuentan en el porcentaje agregado aunque no aporten capas de costeo.
	ListActive(productID, branchID string) ([]*entity.OwnershipRecord, error)

	// ListForConsolidation registros activos de compra a proveedor que comparten
	// (producto, sucursal, proveedor).
	ListForConsolidation(productID, branchID, supplierID string) ([]*entity.OwnershipRecord, error)

	// ListConsolidationCandidates grupos con más de un registro activo.
	ListConsolidationCandidates() ([]ConsolidationGroup, error)

	// Proyecciones de solo lectura para la superficie de consultas.
	SummaryByProduct(branchID string) ([]ProductOwnershipSummary, error)
	ListLowOwnership(threshold decimal.Decimal, limit, offset int) ([]*entity.OwnershipRecord, error)
	ListOutstanding(branchID string, limit, offset int) ([]*entity.OwnershipRecord, error)
}
