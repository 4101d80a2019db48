package entity

import "time"

// Branch representa una sucursal del negocio. Maestro externo; solo lectura aquí.
type Branch struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
}
