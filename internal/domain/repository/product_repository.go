package repository

import "github.com/jhoicas/Joyeria-api/internal/domain/entity"

// ProductRepository puerto de solo lectura del maestro de productos.
// El CRUD de productos pertenece a otro subsistema.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
}
