package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Joyeria-api/internal/domain/entity"
	"github.com/jhoicas/Joyeria-api/internal/domain/repository"
)

var _ repository.OwnershipMovementRepository = (*OwnershipMovementRepo)(nil)

const movementColumns = `
	id, record_id, type, quantity_change, weight_change, amount_change,
	owned_quantity_after, owned_weight_after, amount_paid_after,
	ownership_percentage_after, reason, date, created_at, created_by`

// OwnershipMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// La tabla es append-only: solo INSERT y SELECT, nunca UPDATE ni DELETE.
type OwnershipMovementRepo struct {
	q Querier
}

// NewOwnershipMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOwnershipMovementRepository(q Querier) *OwnershipMovementRepo {
	return &OwnershipMovementRepo{q: q}
}

// Create persiste una entrada de la bitácora.
func (r *OwnershipMovementRepo) Create(m *entity.OwnershipMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO ownership_movements (` + movementColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.RecordID, m.Type, m.QuantityChange, m.WeightChange, m.AmountChange,
		m.OwnedQuantityAfter, m.OwnedWeightAfter, m.AmountPaidAfter,
		m.OwnershipPercentageAfter, nullable(m.Reason), m.Date, m.CreatedAt, nullable(m.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("create ownership movement: %w", err)
	}
	return nil
}

// ListByRecord historial paginado de un registro, más reciente primero.
func (r *OwnershipMovementRepo) ListByRecord(recordID string, limit, offset int) ([]*entity.OwnershipMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM ownership_movements
		WHERE record_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3`
	return r.list(query, recordID, limit, offset)
}

// ListByRecordChrono bitácora completa en orden cronológico, para reconstrucción.
func (r *OwnershipMovementRepo) ListByRecordChrono(recordID string) ([]*entity.OwnershipMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM ownership_movements
		WHERE record_id = $1
		ORDER BY date ASC, created_at ASC`
	return r.list(query, recordID)
}

func (r *OwnershipMovementRepo) list(query string, args ...any) ([]*entity.OwnershipMovement, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ownership movements: %w", err)
	}
	defer rows.Close()
	var out []*entity.OwnershipMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ownership movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.OwnershipMovement, error) {
	var m entity.OwnershipMovement
	var reason, createdBy *string
	err := row.Scan(
		&m.ID, &m.RecordID, &m.Type, &m.QuantityChange, &m.WeightChange, &m.AmountChange,
		&m.OwnedQuantityAfter, &m.OwnedWeightAfter, &m.AmountPaidAfter,
		&m.OwnershipPercentageAfter, &reason, &m.Date, &m.CreatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	m.Reason = deref(reason)
	m.CreatedBy = deref(createdBy)
	return &m, nil
}
