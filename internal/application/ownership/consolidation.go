package ownership

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/Joyeria-api/internal/domain"
	"github.com/jhoicas/Joyeria-api/internal/domain/entity"
	domown "github.com/jhoicas/Joyeria-api/internal/domain/ownership"
	"github.com/jhoicas/Joyeria-api/internal/domain/repository"
)

// ConsolidateUseCase fusiona registros del mismo (producto, sucursal, proveedor)
// en un solo registro a costo promedio ponderado. Operación atómica multi-fila:
// el Update de cada absorbido verifica su version stamp, así que un conflicto en
// cualquier participante hace rollback de toda la consolidación y el caller
// puede reintentar.
type ConsolidateUseCase struct {
	txRunner   TxRunner
	recordRepo repository.OwnershipRecordRepository
	maxRetries int
}

// NewConsolidateUseCase construye el caso de uso.
func NewConsolidateUseCase(txRunner TxRunner, recordRepo repository.OwnershipRecordRepository, maxRetries int) *ConsolidateUseCase {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &ConsolidateUseCase{txRunner: txRunner, recordRepo: recordRepo, maxRetries: maxRetries}
}

// Consolidate fusiona los registros activos del grupo indicado. Falla con
// ErrInvalidInput si hay menos de dos registros que fusionar.
func (uc *ConsolidateUseCase) Consolidate(ctx context.Context, productID, branchID, supplierID, userID string) (*entity.OwnershipRecord, error) {
	var merged *entity.OwnershipRecord
	op := func() error {
		merged = nil
		return uc.txRunner.Run(ctx, func(recordRepo repository.OwnershipRecordRepository, movementRepo repository.OwnershipMovementRepository) error {
			records, err := recordRepo.ListForConsolidation(productID, branchID, supplierID)
			if err != nil {
				return err
			}
			if len(records) < 2 {
				return domain.ErrInvalidInput
			}
			result, err := domown.Consolidate(records, time.Now(), userID)
			if err != nil {
				return err
			}
			if err := recordRepo.Create(result.Merged); err != nil {
				return err
			}
			for _, absorbed := range result.Absorbed {
				if err := recordRepo.Update(absorbed); err != nil {
					return err
				}
			}
			for _, mov := range result.Movements {
				if err := movementRepo.Create(mov); err != nil {
					return err
				}
			}
			merged = result.Merged
			return nil
		})
	}

	var err error
	for attempt := 0; attempt < uc.maxRetries; attempt++ {
		if err = op(); err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// ConsolidateAll recorre los grupos candidatos (más de un registro activo por
// producto/sucursal/proveedor) y consolida cada uno. Devuelve cuántos grupos se
// fusionaron; un grupo que falle no detiene a los demás.
func (uc *ConsolidateUseCase) ConsolidateAll(ctx context.Context, userID string) (int, []error) {
	groups, err := uc.recordRepo.ListConsolidationCandidates()
	if err != nil {
		return 0, []error{err}
	}
	var merged int
	var errs []error
	for _, g := range groups {
		if _, err := uc.Consolidate(ctx, g.ProductID, g.BranchID, g.SupplierID, userID); err != nil {
			errs = append(errs, err)
			continue
		}
		merged++
	}
	return merged, errs
}
