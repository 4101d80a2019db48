package repository

import "github.com/jhoicas/Joyeria-api/internal/domain/entity"

// OwnershipMovementRepository puerto de persistencia de la bitácora de
// movimientos. Solo inserción y lectura: los movimientos son inmutables.
type OwnershipMovementRepository interface {
	Create(m *entity.OwnershipMovement) error
	// ListByRecord historial paginado, más reciente primero.
	ListByRecord(recordID string, limit, offset int) ([]*entity.OwnershipMovement, error)
	// ListByRecordChrono bitácora completa en orden cronológico (reconstrucción).
	ListByRecordChrono(recordID string) ([]*entity.OwnershipMovement, error)
}
