package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa una pieza o referencia de joyería (anillo, cadena, oro en bruto).
// El maestro de productos vive fuera del motor; aquí solo se usa para validar
// existencia y sucursal antes de mutar registros de propiedad.
type Product struct {
	ID          string
	BranchID    string
	SKU         string
	Name        string
	Karat       int             // quilataje del metal (18, 21, 24...)
	WeightGrams decimal.Decimal // peso de referencia por unidad
	Price       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
