package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Joyeria-api/internal/domain/entity"
)

// CreateRecordRequest body para POST /api/ownership/records (recepción de lote).
type CreateRecordRequest struct {
	ProductID          string          `json:"product_id"`
	BranchID           string          `json:"branch_id"`
	SourceType         string          `json:"source_type"`
	SupplierID         string          `json:"supplier_id,omitempty"`
	PurchaseOrderID    string          `json:"purchase_order_id,omitempty"`
	CustomerPurchaseID string          `json:"customer_purchase_id,omitempty"`
	TotalQuantity      decimal.Decimal `json:"total_quantity"`
	TotalWeight        decimal.Decimal `json:"total_weight"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	InitialPayment     decimal.Decimal `json:"initial_payment"`
	ReceivedAt         *time.Time      `json:"received_at,omitempty"`
}

// PaymentRequest body para registrar un abono sobre un lote.
type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Confirmed bool            `json:"confirmed"`
}

// SaleRequest body para debitar propiedad tras una venta.
type SaleRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Weight   decimal.Decimal `json:"weight,omitempty"`
}

// AdjustmentRequest body para una corrección manual (motivo obligatorio).
type AdjustmentRequest struct {
	QuantityDelta decimal.Decimal `json:"quantity_delta"`
	WeightDelta   decimal.Decimal `json:"weight_delta"`
	Reason        string          `json:"reason"`
}

// ConversionRequest body para fundir materia prima en producto terminado.
type ConversionRequest struct {
	SourceRecordIDs []string        `json:"source_record_ids"`
	TargetProductID string          `json:"target_product_id"`
	BranchID        string          `json:"branch_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Weight          decimal.Decimal `json:"weight"`
	RawQuantity     decimal.Decimal `json:"raw_quantity"`
}

// ConsolidationRequest body para consolidar lotes de un grupo.
type ConsolidationRequest struct {
	ProductID  string `json:"product_id"`
	BranchID   string `json:"branch_id"`
	SupplierID string `json:"supplier_id"`
}

// ValidateOwnershipRequest body para el chequeo de propiedad previo a ventas.
type ValidateOwnershipRequest struct {
	ProductID string          `json:"product_id"`
	BranchID  string          `json:"branch_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// RecordResponse proyección HTTP de un registro de propiedad.
type RecordResponse struct {
	ID                  string          `json:"id"`
	ProductID           string          `json:"product_id"`
	BranchID            string          `json:"branch_id"`
	SourceType          string          `json:"source_type"`
	SupplierID          string          `json:"supplier_id,omitempty"`
	PurchaseOrderID     string          `json:"purchase_order_id,omitempty"`
	CustomerPurchaseID  string          `json:"customer_purchase_id,omitempty"`
	TotalQuantity       decimal.Decimal `json:"total_quantity"`
	TotalWeight         decimal.Decimal `json:"total_weight"`
	OwnedQuantity       decimal.Decimal `json:"owned_quantity"`
	OwnedWeight         decimal.Decimal `json:"owned_weight"`
	TotalCost           decimal.Decimal `json:"total_cost"`
	AmountPaid          decimal.Decimal `json:"amount_paid"`
	OutstandingAmount   decimal.Decimal `json:"outstanding_amount"`
	OwnershipPercentage decimal.Decimal `json:"ownership_percentage"`
	Status              string          `json:"status"`
	ConsolidatedInto    string          `json:"consolidated_into,omitempty"`
	ReceivedAt          time.Time       `json:"received_at"`
	Version             int64           `json:"version"`
}

// RecordResponseFrom mapea la entidad a su proyección HTTP.
func RecordResponseFrom(r *entity.OwnershipRecord) RecordResponse {
	return RecordResponse{
		ID:                  r.ID,
		ProductID:           r.ProductID,
		BranchID:            r.BranchID,
		SourceType:          r.SourceType,
		SupplierID:          r.SupplierID,
		PurchaseOrderID:     r.PurchaseOrderID,
		CustomerPurchaseID:  r.CustomerPurchaseID,
		TotalQuantity:       r.TotalQuantity,
		TotalWeight:         r.TotalWeight,
		OwnedQuantity:       r.OwnedQuantity,
		OwnedWeight:         r.OwnedWeight,
		TotalCost:           r.TotalCost,
		AmountPaid:          r.AmountPaid,
		OutstandingAmount:   r.OutstandingAmount(),
		OwnershipPercentage: r.OwnershipPercentage(),
		Status:              r.Status,
		ConsolidatedInto:    r.ConsolidatedInto,
		ReceivedAt:          r.ReceivedAt,
		Version:             r.Version,
	}
}

// MovementResponse proyección HTTP de una entrada de la bitácora.
type MovementResponse struct {
	ID                       string          `json:"id"`
	RecordID                 string          `json:"record_id"`
	Type                     string          `json:"type"`
	QuantityChange           decimal.Decimal `json:"quantity_change"`
	WeightChange             decimal.Decimal `json:"weight_change"`
	AmountChange             decimal.Decimal `json:"amount_change"`
	OwnedQuantityAfter       decimal.Decimal `json:"owned_quantity_after"`
	OwnedWeightAfter         decimal.Decimal `json:"owned_weight_after"`
	AmountPaidAfter          decimal.Decimal `json:"amount_paid_after"`
	OwnershipPercentageAfter decimal.Decimal `json:"ownership_percentage_after"`
	Reason                   string          `json:"reason,omitempty"`
	Date                     time.Time       `json:"date"`
}

// MovementResponseFrom mapea la entidad a su proyección HTTP.
func MovementResponseFrom(m *entity.OwnershipMovement) MovementResponse {
	return MovementResponse{
		ID:                       m.ID,
		RecordID:                 m.RecordID,
		Type:                     m.Type,
		QuantityChange:           m.QuantityChange,
		WeightChange:             m.WeightChange,
		AmountChange:             m.AmountChange,
		OwnedQuantityAfter:       m.OwnedQuantityAfter,
		OwnedWeightAfter:         m.OwnedWeightAfter,
		AmountPaidAfter:          m.AmountPaidAfter,
		OwnershipPercentageAfter: m.OwnershipPercentageAfter,
		Reason:                   m.Reason,
		Date:                     m.Date,
	}
}

// ValidationResponse respuesta del chequeo de propiedad.
type ValidationResponse struct {
	Allowed    bool            `json:"allowed"`
	Percentage decimal.Decimal `json:"percentage"`
	Severity   string          `json:"severity"`
	Reason     string          `json:"reason,omitempty"`
}

// CostLayerDTO capa del plan de costeo.
type CostLayerDTO struct {
	RecordID  string          `json:"record_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	LayerCost decimal.Decimal `json:"layer_cost"`
}

// CostPlanResponse plan de costeo para una cantidad solicitada.
type CostPlanResponse struct {
	Method    string          `json:"method"`
	Quantity  decimal.Decimal `json:"quantity"`
	Layers    []CostLayerDTO  `json:"layers"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// ProductSummaryDTO resumen de propiedad por producto en una sucursal.
type ProductSummaryDTO struct {
	ProductID           string          `json:"product_id"`
	Records             int             `json:"records"`
	TotalQuantity       decimal.Decimal `json:"total_quantity"`
	OwnedQuantity       decimal.Decimal `json:"owned_quantity"`
	OwnershipPercentage decimal.Decimal `json:"ownership_percentage"`
	Outstanding         decimal.Decimal `json:"outstanding"`
}

// LowOwnershipDTO registro bajo el umbral, con severidad para alertar.
type LowOwnershipDTO struct {
	Record   RecordResponse `json:"record"`
	Severity string         `json:"severity"`
}

// LedgerVerificationDTO resultado de reproducir la bitácora de un registro.
type LedgerVerificationDTO struct {
	RecordID       string          `json:"record_id"`
	Reconciled     bool            `json:"reconciled"`
	Movements      int             `json:"movements"`
	ReplayedQty    decimal.Decimal `json:"replayed_quantity"`
	ReplayedWeight decimal.Decimal `json:"replayed_weight"`
	ReplayedPaid   decimal.Decimal `json:"replayed_paid"`
	CurrentQty     decimal.Decimal `json:"current_quantity"`
	CurrentWeight  decimal.Decimal `json:"current_weight"`
	CurrentPaid    decimal.Decimal `json:"current_paid"`
}
