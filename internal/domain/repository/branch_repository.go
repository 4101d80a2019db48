package repository

import "github.com/jhoicas/Joyeria-api/internal/domain/entity"

// BranchRepository puerto de solo lectura del maestro de sucursales.
type BranchRepository interface {
	GetByID(id string) (*entity.Branch, error)
}
