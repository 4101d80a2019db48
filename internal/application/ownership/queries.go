package ownership

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Joyeria-api/internal/application/dto"
	"github.com/jhoicas/Joyeria-api/internal/domain"
	domown "github.com/jhoicas/Joyeria-api/internal/domain/ownership"
	"github.com/jhoicas/Joyeria-api/internal/domain/repository"
)

// Queries superficie de consultas del motor: proyecciones de solo lectura sobre
// registros y bitácora. No muta nada; usa los repositorios atados al pool.
type Queries struct {
	recordRepo   repository.OwnershipRecordRepository
	movementRepo repository.OwnershipMovementRepository
	policy       domown.Policy
}

// NewQueries construye la superficie de consultas.
func NewQueries(recordRepo repository.OwnershipRecordRepository, movementRepo repository.OwnershipMovementRepository, policy domown.Policy) *Queries {
	return &Queries{recordRepo: recordRepo, movementRepo: movementRepo, policy: policy}
}

// SummaryByProduct resumen agregado de propiedad por producto en una sucursal.
func (q *Queries) SummaryByProduct(ctx context.Context, branchID string) ([]dto.ProductSummaryDTO, error) {
	rows, err := q.recordRepo.SummaryByProduct(branchID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductSummaryDTO, 0, len(rows))
	for _, r := range rows {
		pct := decimal.Zero
		if r.TotalQuantity.IsPositive() {
			pct = r.OwnedQuantity.Div(r.TotalQuantity)
		}
		out = append(out, dto.ProductSummaryDTO{
			ProductID:           r.ProductID,
			Records:             r.Records,
			TotalQuantity:       r.TotalQuantity,
			OwnedQuantity:       r.OwnedQuantity,
			OwnershipPercentage: pct,
			Outstanding:         r.Outstanding,
		})
	}
	return out, nil
}

// LowOwnership registros activos bajo el umbral configurado, con severidad.
func (q *Queries) LowOwnership(ctx context.Context, limit, offset int) ([]dto.LowOwnershipDTO, error) {
	records, err := q.recordRepo.ListLowOwnership(q.policy.LowOwnershipThreshold(), limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowOwnershipDTO, 0, len(records))
	for _, r := range records {
		out = append(out, dto.LowOwnershipDTO{
			Record:   dto.RecordResponseFrom(r),
			Severity: domown.ClassifySeverity(r.OwnershipPercentage(), q.policy),
		})
	}
	return out, nil
}

// Outstanding registros activos con saldo pendiente, mayor saldo primero.
func (q *Queries) Outstanding(ctx context.Context, branchID string, limit, offset int) ([]dto.RecordResponse, error) {
	records, err := q.recordRepo.ListOutstanding(branchID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, dto.RecordResponseFrom(r))
	}
	return out, nil
}

// MovementHistory historial paginado de un registro, más reciente primero.
func (q *Queries) MovementHistory(ctx context.Context, recordID string, limit, offset int) ([]dto.MovementResponse, error) {
	movs, err := q.movementRepo.ListByRecord(recordID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.MovementResponseFrom(m))
	}
	return out, nil
}

// VerifyLedger reproduce la bitácora completa de un registro y verifica la
// propiedad de conservación contra el estado almacenado (chequeo de auditoría).
func (q *Queries) VerifyLedger(ctx context.Context, recordID string) (*dto.LedgerVerificationDTO, error) {
	rec, err := q.recordRepo.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	movs, err := q.movementRepo.ListByRecordChrono(recordID)
	if err != nil {
		return nil, err
	}
	replayed := domown.Replay(movs)
	return &dto.LedgerVerificationDTO{
		RecordID:       rec.ID,
		Reconciled:     domown.Reconcile(rec, movs),
		Movements:      len(movs),
		ReplayedQty:    replayed.OwnedQuantity,
		ReplayedWeight: replayed.OwnedWeight,
		ReplayedPaid:   replayed.AmountPaid,
		CurrentQty:     rec.OwnedQuantity,
		CurrentWeight:  rec.OwnedWeight,
		CurrentPaid:    rec.AmountPaid,
	}, nil
}

// GetRecord registro por ID.
func (q *Queries) GetRecord(ctx context.Context, recordID string) (*dto.RecordResponse, error) {
	rec, err := q.recordRepo.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	resp := dto.RecordResponseFrom(rec)
	return &resp, nil
}
