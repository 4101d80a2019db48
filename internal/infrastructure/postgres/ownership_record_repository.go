package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Joyeria-api/internal/domain"
	"github.com/jhoicas/Joyeria-api/internal/domain/entity"
	"github.com/jhoicas/Joyeria-api/internal/domain/repository"
)

var _ repository.OwnershipRecordRepository = (*OwnershipRecordRepo)(nil)

// recordColumns orden canónico de columnas para los SELECT de registros.
const recordColumns = `
	id, product_id, branch_id, source_type, supplier_id, purchase_order_id,
	customer_purchase_id, total_quantity, total_weight, owned_quantity,
	owned_weight, total_cost, amount_paid, status, consolidated_into,
	received_at, created_at, updated_at, created_by, version`

// OwnershipRecordRepo implementación sobre PostgreSQL (usable con pool o tx).
// La escritura es de concurrencia optimista: Update exige el version stamp
// leído y lo incrementa; un stamp vencido retorna domain.ErrConcurrencyConflict.
type OwnershipRecordRepo struct {
	q Querier
}

// NewOwnershipRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOwnershipRecordRepository(q Querier) *OwnershipRecordRepo {
	return &OwnershipRecordRepo{q: q}
}

// Create persiste un registro de propiedad nuevo.
func (r *OwnershipRecordRepo) Create(rec *entity.OwnershipRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Version == 0 {
		rec.Version = 1
	}
	query := `
		INSERT INTO ownership_records (` + recordColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`
	_, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.ProductID, rec.BranchID, rec.SourceType,
		nullable(rec.SupplierID), nullable(rec.PurchaseOrderID), nullable(rec.CustomerPurchaseID),
		rec.TotalQuantity, rec.TotalWeight, rec.OwnedQuantity, rec.OwnedWeight,
		rec.TotalCost, rec.AmountPaid, rec.Status, nullable(rec.ConsolidatedInto),
		rec.ReceivedAt, rec.CreatedAt, rec.UpdatedAt, nullable(rec.CreatedBy), rec.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create ownership record: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("create ownership record: %w", err)
	}
	return nil
}

// GetByID obtiene un registro por ID; nil si no existe.
func (r *OwnershipRecordRepo) GetByID(id string) (*entity.OwnershipRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM ownership_records WHERE id = $1`
	rec, err := scanRecord(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ownership record: %w", err)
	}
	return rec, nil
}

// Update escribe los campos mutables si el version stamp sigue vigente y lo
// incrementa. Cero filas afectadas = otro escritor ganó: ErrConcurrencyConflict.
func (r *OwnershipRecordRepo) Update(rec *entity.OwnershipRecord) error {
	query := `
		UPDATE ownership_records SET
			total_quantity = $2, total_weight = $3, owned_quantity = $4,
			owned_weight = $5, total_cost = $6, amount_paid = $7, status = $8,
			consolidated_into = $9, updated_at = $10, version = version + 1
		WHERE id = $1 AND version = $11`
	tag, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.TotalQuantity, rec.TotalWeight, rec.OwnedQuantity,
		rec.OwnedWeight, rec.TotalCost, rec.AmountPaid, rec.Status,
		nullable(rec.ConsolidatedInto), rec.UpdatedAt, rec.Version,
	)
	if err != nil {
		return fmt.Errorf("update ownership record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	rec.Version++
	return nil
}

// ListActive registros activos del producto en la sucursal, más antiguo primero.
// Sin filtro de propiedad: los lotes en cero con saldo pendiente siguen contando
// para el porcentaje agregado; el motor de costos descarta capas vacías él mismo.
func (r *OwnershipRecordRepo) ListActive(productID, branchID string) ([]*entity.OwnershipRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM ownership_records
		WHERE product_id = $1 AND branch_id = $2 AND status = $3
		ORDER BY received_at ASC, created_at ASC`
	return r.list(query, productID, branchID, entity.RecordStatusActive)
}

// ListForConsolidation registros activos de compra a proveedor del grupo.
func (r *OwnershipRecordRepo) ListForConsolidation(productID, branchID, supplierID string) ([]*entity.OwnershipRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM ownership_records
		WHERE product_id = $1 AND branch_id = $2 AND supplier_id = $3
		  AND source_type = $4 AND status = $5
		ORDER BY received_at ASC, created_at ASC`
	return r.list(query, productID, branchID, supplierID, entity.SourceSupplierPurchase, entity.RecordStatusActive)
}

// ListConsolidationCandidates grupos (producto, sucursal, proveedor) con más de
// un registro activo.
func (r *OwnershipRecordRepo) ListConsolidationCandidates() ([]repository.ConsolidationGroup, error) {
	query := `
		SELECT product_id, branch_id, supplier_id, count(*)
		FROM ownership_records
		WHERE status = $1 AND source_type = $2 AND supplier_id IS NOT NULL
		GROUP BY product_id, branch_id, supplier_id
		HAVING count(*) > 1`
	rows, err := r.q.Query(context.Background(), query, entity.RecordStatusActive, entity.SourceSupplierPurchase)
	if err != nil {
		return nil, fmt.Errorf("list consolidation candidates: %w", err)
	}
	defer rows.Close()
	var groups []repository.ConsolidationGroup
	for rows.Next() {
		var g repository.ConsolidationGroup
		if err := rows.Scan(&g.ProductID, &g.BranchID, &g.SupplierID, &g.Records); err != nil {
			return nil, fmt.Errorf("scan consolidation group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// SummaryByProduct agregado de propiedad por producto en una sucursal.
func (r *OwnershipRecordRepo) SummaryByProduct(branchID string) ([]repository.ProductOwnershipSummary, error) {
	query := `
		SELECT product_id, count(*),
		       COALESCE(sum(total_quantity), 0), COALESCE(sum(owned_quantity), 0),
		       COALESCE(sum(total_cost), 0), COALESCE(sum(amount_paid), 0),
		       COALESCE(sum(total_cost - amount_paid), 0)
		FROM ownership_records
		WHERE branch_id = $1 AND status = $2
		GROUP BY product_id
		ORDER BY product_id`
	rows, err := r.q.Query(context.Background(), query, branchID, entity.RecordStatusActive)
	if err != nil {
		return nil, fmt.Errorf("summary by product: %w", err)
	}
	defer rows.Close()
	var out []repository.ProductOwnershipSummary
	for rows.Next() {
		var s repository.ProductOwnershipSummary
		if err := rows.Scan(&s.ProductID, &s.Records, &s.TotalQuantity, &s.OwnedQuantity,
			&s.TotalCost, &s.AmountPaid, &s.Outstanding); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListLowOwnership registros activos con porcentaje bajo el umbral, peor primero.
func (r *OwnershipRecordRepo) ListLowOwnership(threshold decimal.Decimal, limit, offset int) ([]*entity.OwnershipRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM ownership_records
		WHERE status = $1 AND total_quantity > 0
		  AND owned_quantity / total_quantity < $2
		ORDER BY owned_quantity / total_quantity ASC
		LIMIT $3 OFFSET $4`
	return r.list(query, entity.RecordStatusActive, threshold, limit, offset)
}

// ListOutstanding registros activos con saldo pendiente, mayor saldo primero.
// branchID vacío lista todas las sucursales.
func (r *OwnershipRecordRepo) ListOutstanding(branchID string, limit, offset int) ([]*entity.OwnershipRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM ownership_records
		WHERE status = $1 AND amount_paid < total_cost
		  AND ($2 = '' OR branch_id = $2)
		ORDER BY (total_cost - amount_paid) DESC
		LIMIT $3 OFFSET $4`
	return r.list(query, entity.RecordStatusActive, branchID, limit, offset)
}

func (r *OwnershipRecordRepo) list(query string, args ...any) ([]*entity.OwnershipRecord, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ownership records: %w", err)
	}
	defer rows.Close()
	var out []*entity.OwnershipRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ownership record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// scanRecord escanea una fila con el orden de recordColumns.
func scanRecord(row pgx.Row) (*entity.OwnershipRecord, error) {
	var rec entity.OwnershipRecord
	var supplierID, purchaseOrderID, customerPurchaseID, consolidatedInto, createdBy *string
	err := row.Scan(
		&rec.ID, &rec.ProductID, &rec.BranchID, &rec.SourceType,
		&supplierID, &purchaseOrderID, &customerPurchaseID,
		&rec.TotalQuantity, &rec.TotalWeight, &rec.OwnedQuantity, &rec.OwnedWeight,
		&rec.TotalCost, &rec.AmountPaid, &rec.Status, &consolidatedInto,
		&rec.ReceivedAt, &rec.CreatedAt, &rec.UpdatedAt, &createdBy, &rec.Version,
	)
	if err != nil {
		return nil, err
	}
	rec.SupplierID = deref(supplierID)
	rec.PurchaseOrderID = deref(purchaseOrderID)
	rec.CustomerPurchaseID = deref(customerPurchaseID)
	rec.ConsolidatedInto = deref(consolidatedInto)
	rec.CreatedBy = deref(createdBy)
	return &rec, nil
}

// nullable convierte "" a NULL para columnas de referencia opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
