package ownership

import (
	"context"

	"github.com/jhoicas/Joyeria-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Cada mutación del motor (pago, consumo, ajuste,
// consolidación) corre como unidad atómica: leer, validar, escribir registro y
// movimiento, commit — todo o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		recordRepo repository.OwnershipRecordRepository,
		movementRepo repository.OwnershipMovementRepository,
	) error) error
}
