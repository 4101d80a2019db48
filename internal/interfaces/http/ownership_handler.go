package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Joyeria-api/internal/application/dto"
	appown "github.com/jhoicas/Joyeria-api/internal/application/ownership"
	"github.com/jhoicas/Joyeria-api/internal/domain"
	domown "github.com/jhoicas/Joyeria-api/internal/domain/ownership"
)

// OwnershipHandler maneja las peticiones HTTP del motor de propiedad (protegido).
type OwnershipHandler struct {
	svc         *appown.Service
	consolidate *appown.ConsolidateUseCase
	queries     *appown.Queries
}

// NewOwnershipHandler construye el handler.
func NewOwnershipHandler(svc *appown.Service, consolidate *appown.ConsolidateUseCase, queries *appown.Queries) *OwnershipHandler {
	return &OwnershipHandler{svc: svc, consolidate: consolidate, queries: queries}
}

// CreateRecord godoc
// @Summary      Registrar recepción de un lote (compra a proveedor o a cliente)
// @Tags         ownership
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRecordRequest  true  "lote recibido"
// @Success      201   {object}  dto.RecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ownership/records [post]
func (h *OwnershipHandler) CreateRecord(c *fiber.Ctx) error {
	var in dto.CreateRecordRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	input := appown.CreateRecordInput{
		ProductID:          in.ProductID,
		BranchID:           in.BranchID,
		SourceType:         in.SourceType,
		SupplierID:         in.SupplierID,
		PurchaseOrderID:    in.PurchaseOrderID,
		CustomerPurchaseID: in.CustomerPurchaseID,
		TotalQuantity:      in.TotalQuantity,
		TotalWeight:        in.TotalWeight,
		TotalCost:          in.TotalCost,
		InitialPayment:     in.InitialPayment,
		UserID:             GetUserID(c),
	}
	if in.ReceivedAt != nil {
		input.ReceivedAt = *in.ReceivedAt
	}
	rec, err := h.svc.CreateRecord(c.Context(), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RecordResponseFrom(rec))
}

// RegisterPayment godoc
// @Summary      Registrar un abono sobre un lote
// @Tags         ownership
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del registro"
// @Param        body  body  dto.PaymentRequest  true  "monto del abono"
// @Success      200   {object}  dto.RecordResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ownership/records/{id}/payments [post]
func (h *OwnershipHandler) RegisterPayment(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, err := h.svc.UpdateOwnershipAfterPayment(c.Context(), c.Params("id"), in.Amount, in.Confirmed, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RecordResponseFrom(rec))
}

// RegisterSale godoc
// @Summary      Debitar propiedad tras una venta
// @Tags         ownership
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true  "ID del registro"
// @Param        body  body  dto.SaleRequest  true  "cantidad vendida"
// @Success      200   {object}  dto.RecordResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ownership/records/{id}/sale [post]
func (h *OwnershipHandler) RegisterSale(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, err := h.svc.UpdateOwnershipAfterSale(c.Context(), c.Params("id"), in.Quantity, in.Weight, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RecordResponseFrom(rec))
}

// RegisterAdjustment godoc
// @Summary      Corrección manual de propiedad (motivo obligatorio)
// @Tags         ownership
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del registro"
// @Param        body  body  dto.AdjustmentRequest  true  "deltas y motivo"
// @Success      200   {object}  dto.RecordResponse
// @Router       /api/ownership/records/{id}/adjustments [post]
func (h *OwnershipHandler) RegisterAdjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, err := h.svc.AdjustOwnership(c.Context(), c.Params("id"), in.QuantityDelta, in.WeightDelta, in.Reason, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RecordResponseFrom(rec))
}

// Convert godoc
// @Summary      Fundir materia prima propia en un producto terminado
// @Tags         ownership
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConversionRequest  true  "fuentes y producto destino"
// @Success      201   {object}  dto.RecordResponse
// @Router       /api/ownership/conversions [post]
func (h *OwnershipHandler) Convert(c *fiber.Ctx) error {
	var in dto.ConversionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, err := h.svc.ConvertRawGoldToProducts(c.Context(), appown.ConversionInput{
		SourceRecordIDs: in.SourceRecordIDs,
		TargetProductID: in.TargetProductID,
		BranchID:        in.BranchID,
		Quantity:        in.Quantity,
		Weight:          in.Weight,
		RawQuantity:     in.RawQuantity,
		UserID:          GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RecordResponseFrom(rec))
}

// Consolidate godoc
// @Summary      Consolidar lotes de un (producto, sucursal, proveedor)
// @Tags         ownership
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsolidationRequest  true  "grupo a consolidar"
// @Success      201   {object}  dto.RecordResponse
// @Router       /api/ownership/consolidations [post]
func (h *OwnershipHandler) Consolidate(c *fiber.Ctx) error {
	var in dto.ConsolidationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, err := h.consolidate.Consolidate(c.Context(), in.ProductID, in.BranchID, in.SupplierID, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RecordResponseFrom(rec))
}

// Validate godoc
// @Summary      Chequeo de propiedad previo a una venta
// @Tags         ownership
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateOwnershipRequest  true  "producto, sucursal y cantidad"
// @Success      200   {object}  dto.ValidationResponse
// @Router       /api/ownership/validate [post]
func (h *OwnershipHandler) Validate(c *fiber.Ctx) error {
	var in dto.ValidateOwnershipRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.svc.ValidateOwnership(c.Context(), in.ProductID, in.BranchID, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ValidationResponse{
		Allowed:    res.Allowed,
		Percentage: res.Percentage,
		Severity:   res.Severity,
		Reason:     res.Reason,
	})
}

// CostPlan godoc
// @Summary      Plan de costeo (promedio ponderado, FIFO o LIFO)
// @Tags         ownership
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true   "producto"
// @Param        branch_id   query  string  true   "sucursal"
// @Param        quantity    query  string  true   "cantidad solicitada"
// @Param        method      query  string  false  "WEIGHTED_AVERAGE | FIFO | LIFO (default FIFO)"
// @Success      200  {object}  dto.CostPlanResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/ownership/cost-plan [get]
func (h *OwnershipHandler) CostPlan(c *fiber.Ctx) error {
	quantity, err := decimal.NewFromString(c.Query("quantity"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity inválida"})
	}
	method := c.Query("method", domown.CostMethodFIFO)
	plan, err := h.svc.PlanCost(c.Context(), c.Query("product_id"), c.Query("branch_id"), method, quantity)
	if err != nil {
		return writeError(c, err)
	}
	resp := dto.CostPlanResponse{Method: plan.Method, Quantity: plan.Quantity, TotalCost: plan.TotalCost}
	for _, l := range plan.Layers {
		resp.Layers = append(resp.Layers, dto.CostLayerDTO{
			RecordID: l.RecordID, Quantity: l.Quantity, UnitCost: l.UnitCost, LayerCost: l.LayerCost,
		})
	}
	return c.JSON(resp)
}

// GetRecord devuelve un registro por ID.
func (h *OwnershipHandler) GetRecord(c *fiber.Ctx) error {
	rec, err := h.queries.GetRecord(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}

// Summary resumen de propiedad por producto en la sucursal indicada (o la del token).
func (h *OwnershipHandler) Summary(c *fiber.Ctx) error {
	branchID := c.Query("branch_id", GetBranchID(c))
	rows, err := h.queries.SummaryByProduct(c.Context(), branchID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(rows), "products": rows})
}

// LowOwnership lista registros bajo el umbral de propiedad configurado.
func (h *OwnershipHandler) LowOwnership(c *fiber.Ctx) error {
	page := pageFrom(c)
	rows, err := h.queries.LowOwnership(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(rows), "records": rows})
}

// Outstanding lista registros con saldo pendiente al proveedor.
func (h *OwnershipHandler) Outstanding(c *fiber.Ctx) error {
	page := pageFrom(c)
	rows, err := h.queries.Outstanding(c.Context(), c.Query("branch_id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(rows), "records": rows})
}

// Movements historial de movimientos de un registro, más reciente primero.
func (h *OwnershipHandler) Movements(c *fiber.Ctx) error {
	page := pageFrom(c)
	rows, err := h.queries.MovementHistory(c.Context(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(rows), "movements": rows})
}

// VerifyLedger reproduce la bitácora del registro y reporta si reconcilia.
func (h *OwnershipHandler) VerifyLedger(c *fiber.Ctx) error {
	res, err := h.queries.VerifyLedger(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

func pageFrom(c *fiber.Ctx) dto.PageRequest {
	var p dto.PageRequest
	_ = c.QueryParser(&p)
	p.DefaultPage()
	return p
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// writeError traduce errores de dominio a códigos HTTP. Los invariantes
// violados viajan con su mensaje para que la UI arme el aviso al usuario.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidLot):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrOverpayment):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "OVERPAYMENT", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientOwnership):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_OWNERSHIP", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrConsolidationMismatch):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONSOLIDATION_MISMATCH", Message: err.Error()})
	case errors.Is(err, domain.ErrRecordNotActive):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "RECORD_NOT_ACTIVE", Message: err.Error()})
	case errors.Is(err, domain.ErrBlockedByPolicy):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "BLOCKED_BY_POLICY", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
