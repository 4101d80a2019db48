package ownership

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Joyeria-api/internal/domain"
	"github.com/jhoicas/Joyeria-api/internal/domain/entity"
	domown "github.com/jhoicas/Joyeria-api/internal/domain/ownership"
	"github.com/jhoicas/Joyeria-api/internal/domain/repository"
)

// defaultMaxRetries reintentos ante ErrConcurrencyConflict antes de rendirse.
const defaultMaxRetries = 3

// Service es el punto de entrada público del motor de propiedad: compone el
// almacén de registros, la bitácora, el validador y el motor de costos para
// pagos, consumos post-venta y conversión de materia prima a producto.
//
// Las mutaciones usan concurrencia optimista: se relee el estado vigente en
// cada intento y se reintenta un número acotado de veces ante conflicto de
// version stamp. Mutaciones sobre registros distintos proceden en paralelo.
type Service struct {
	txRunner    TxRunner
	recordRepo  repository.OwnershipRecordRepository
	productRepo repository.ProductRepository
	branchRepo  repository.BranchRepository
	policy      domown.Policy
	maxRetries  int
}

// NewService construye el orquestador. maxRetries <= 0 usa el valor por defecto.
func NewService(
	txRunner TxRunner,
	recordRepo repository.OwnershipRecordRepository,
	productRepo repository.ProductRepository,
	branchRepo repository.BranchRepository,
	policy domown.Policy,
	maxRetries int,
) *Service {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Service{
		txRunner:    txRunner,
		recordRepo:  recordRepo,
		productRepo: productRepo,
		branchRepo:  branchRepo,
		policy:      policy,
		maxRetries:  maxRetries,
	}
}

// CreateRecordInput recepción de mercancía desde compras o compra a cliente.
type CreateRecordInput struct {
	ProductID          string
	BranchID           string
	SourceType         string
	SupplierID         string
	PurchaseOrderID    string
	CustomerPurchaseID string
	TotalQuantity      decimal.Decimal
	TotalWeight        decimal.Decimal
	TotalCost          decimal.Decimal
	InitialPayment     decimal.Decimal
	ReceivedAt         time.Time
	UserID             string
}

// CreateRecord crea el registro de propiedad de un lote recibido, con su
// movimiento PURCHASE, validando que producto y sucursal existan.
func (s *Service) CreateRecord(ctx context.Context, in CreateRecordInput) (*entity.OwnershipRecord, error) {
	if err := s.checkMasterData(in.ProductID, in.BranchID); err != nil {
		return nil, err
	}
	rec, mov, err := domown.NewRecord(domown.NewRecordInput{
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
		ReceivedAt:         in.ReceivedAt,
		CreatedBy:          in.UserID,
	}, time.Now())
	if err != nil {
		return nil, err
	}
	err = s.txRunner.Run(ctx, func(recordRepo repository.OwnershipRecordRepository, movementRepo repository.OwnershipMovementRepository) error {
		if err := recordRepo.Create(rec); err != nil {
			return err
		}
		return movementRepo.Create(mov)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateOwnershipAfterPayment registra un abono sobre un lote y aumenta la
// propiedad proporcionalmente. confirmed marca que el colaborador de pagos ya
// confirmó el abono cuando la regla de confirmación está activa.
func (s *Service) UpdateOwnershipAfterPayment(ctx context.Context, recordID string, amount decimal.Decimal, confirmed bool, userID string) (*entity.OwnershipRecord, error) {
	if s.policy.RequirePaymentConfirmation() && !confirmed {
		return nil, fmt.Errorf("%w: el pago requiere confirmación", domain.ErrBlockedByPolicy)
	}
	return s.mutateRecord(ctx, recordID, func(rec *entity.OwnershipRecord, now time.Time) (*entity.OwnershipMovement, error) {
		return domown.ApplyPayment(rec, amount, now, userID)
	})
}

// UpdateOwnershipAfterSale debita la propiedad de un lote tras una venta,
// tras pasar el validador de política. weight cero toma el peso proporcional.
func (s *Service) UpdateOwnershipAfterSale(ctx context.Context, recordID string, quantity, weight decimal.Decimal, userID string) (*entity.OwnershipRecord, error) {
	return s.mutateRecord(ctx, recordID, func(rec *entity.OwnershipRecord, now time.Time) (*entity.OwnershipMovement, error) {
		if res := domown.ValidateForSale(rec, quantity, s.policy); !res.Allowed {
			if quantity.GreaterThan(rec.OwnedQuantity) {
				return nil, fmt.Errorf("%w: %s", domain.ErrInsufficientOwnership, res.Reason)
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrBlockedByPolicy, res.Reason)
		}
		return domown.Consume(rec, quantity, weight, entity.MovementTypeSale, "", now, userID)
	})
}

// AdjustOwnership corrección manual con motivo; pasa por el validador de ajustes
// y por los mismos invariantes de límites que cualquier mutación.
func (s *Service) AdjustOwnership(ctx context.Context, recordID string, quantityDelta, weightDelta decimal.Decimal, reason, userID string) (*entity.OwnershipRecord, error) {
	return s.mutateRecord(ctx, recordID, func(rec *entity.OwnershipRecord, now time.Time) (*entity.OwnershipMovement, error) {
		if res := domown.ValidateForInventoryAdjustment(rec, quantityDelta, s.policy); !res.Allowed {
			return nil, fmt.Errorf("%w: %s", domain.ErrBlockedByPolicy, res.Reason)
		}
		return domown.Adjust(rec, quantityDelta, weightDelta, reason, now, userID)
	})
}

// ConversionInput fundición de lotes de materia prima en un producto terminado.
type ConversionInput struct {
	SourceRecordIDs []string
	TargetProductID string
	BranchID        string
	Quantity        decimal.Decimal // unidades del producto terminado
	Weight          decimal.Decimal // gramos del producto terminado
	RawQuantity     decimal.Decimal // cantidad de materia prima a consumir
	UserID          string
}

// ConvertRawGoldToProducts consume materia prima propia de uno o más registros
// fuente (más antiguo primero) y crea el registro 100% propio del producto
// fabricado, cuyo costo es el costo de las capas consumidas. Todo en una sola
// transacción: un conflicto de versión en cualquier fuente aborta la conversión.
func (s *Service) ConvertRawGoldToProducts(ctx context.Context, in ConversionInput) (*entity.OwnershipRecord, error) {
	if len(in.SourceRecordIDs) == 0 || in.Quantity.LessThanOrEqual(decimal.Zero) ||
		in.RawQuantity.LessThanOrEqual(decimal.Zero) || in.Weight.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if err := s.checkMasterData(in.TargetProductID, in.BranchID); err != nil {
		return nil, err
	}

	var created *entity.OwnershipRecord
	op := func() error {
		created = nil
		return s.txRunner.Run(ctx, func(recordRepo repository.OwnershipRecordRepository, movementRepo repository.OwnershipMovementRepository) error {
			now := time.Now()
			sources := make([]*entity.OwnershipRecord, 0, len(in.SourceRecordIDs))
			for _, id := range in.SourceRecordIDs {
				rec, err := recordRepo.GetByID(id)
				if err != nil {
					return err
				}
				if rec == nil {
					return domain.ErrNotFound
				}
				sources = append(sources, rec)
			}
			sort.Slice(sources, func(i, j int) bool {
				return sources[i].ReceivedAt.Before(sources[j].ReceivedAt)
			})

			// Consumo FIFO de materia prima sobre los registros indicados.
			remaining := in.RawQuantity
			cost := decimal.Zero
			for _, src := range sources {
				if remaining.IsZero() {
					break
				}
				take := src.OwnedQuantity
				if take.GreaterThan(remaining) {
					take = remaining
				}
				if take.IsZero() {
					continue
				}
				unitCost := src.UnitCost()
				mov, err := domown.Consume(src, take, decimal.Zero, entity.MovementTypeConversion,
					"conversión a producto "+in.TargetProductID, now, in.UserID)
				if err != nil {
					return err
				}
				if err := recordRepo.Update(src); err != nil {
					return err
				}
				if err := movementRepo.Create(mov); err != nil {
					return err
				}
				cost = cost.Add(take.Mul(unitCost))
				remaining = remaining.Sub(take)
			}
			if remaining.IsPositive() {
				return domain.ErrInsufficientStock
			}

			rec, mov, err := domown.NewManufacturedRecord(in.TargetProductID, in.BranchID, in.Quantity, in.Weight, cost, now, in.UserID)
			if err != nil {
				return err
			}
			if err := recordRepo.Create(rec); err != nil {
				return err
			}
			if err := movementRepo.Create(mov); err != nil {
				return err
			}
			created = rec
			return nil
		})
	}
	if err := s.withRetry(ctx, op); err != nil {
		return nil, err
	}
	return created, nil
}

// ValidateOwnership chequeo agregado de propiedad de un producto en una
// sucursal: porcentaje global, severidad y si la cantidad pedida es vendible.
// Agrega sobre todos los registros activos: un lote sin pagar suma al
// denominador aunque su propiedad sea cero.
func (s *Service) ValidateOwnership(ctx context.Context, productID, branchID string, quantity decimal.Decimal) (domown.ValidationResult, error) {
	records, err := s.recordRepo.ListActive(productID, branchID)
	if err != nil {
		return domown.ValidationResult{}, err
	}
	totalQty, ownedQty := decimal.Zero, decimal.Zero
	for _, r := range records {
		totalQty = totalQty.Add(r.TotalQuantity)
		ownedQty = ownedQty.Add(r.OwnedQuantity)
	}
	pct := decimal.Zero
	if totalQty.IsPositive() {
		pct = ownedQty.Div(totalQty)
	}
	res := domown.ValidationResult{
		Allowed:    true,
		Percentage: pct,
		Severity:   domown.ClassifySeverity(pct, s.policy),
	}
	if quantity.GreaterThan(ownedQty) {
		res.Allowed = false
		res.Reason = "propiedad insuficiente del producto en la sucursal"
		return res, nil
	}
	if s.policy.BlockSaleBelowThreshold() && pct.LessThan(s.policy.LowOwnershipThreshold()) {
		res.Allowed = false
		res.Reason = "porcentaje de propiedad bajo el umbral de venta"
	}
	return res, nil
}

// PlanCost planifica capas de costo (promedio ponderado, FIFO o LIFO) sobre los
// registros activos del producto en la sucursal; el motor descarta los que no
// tienen propiedad disponible. Solo lectura.
func (s *Service) PlanCost(ctx context.Context, productID, branchID, method string, quantity decimal.Decimal) (*domown.CostPlan, error) {
	records, err := s.recordRepo.ListActive(productID, branchID)
	if err != nil {
		return nil, err
	}
	return domown.PlanCost(method, records, quantity)
}

// mutateRecord ejecuta una mutación leer-validar-escribir sobre un registro con
// reintento acotado ante conflicto de versión, releyendo el estado vigente.
func (s *Service) mutateRecord(ctx context.Context, recordID string, apply func(*entity.OwnershipRecord, time.Time) (*entity.OwnershipMovement, error)) (*entity.OwnershipRecord, error) {
	var updated *entity.OwnershipRecord
	op := func() error {
		updated = nil
		return s.txRunner.Run(ctx, func(recordRepo repository.OwnershipRecordRepository, movementRepo repository.OwnershipMovementRepository) error {
			rec, err := recordRepo.GetByID(recordID)
			if err != nil {
				return err
			}
			if rec == nil {
				return domain.ErrNotFound
			}
			mov, err := apply(rec, time.Now())
			if err != nil {
				return err
			}
			if err := recordRepo.Update(rec); err != nil {
				return err
			}
			if err := movementRepo.Create(mov); err != nil {
				return err
			}
			updated = rec
			return nil
		})
	}
	if err := s.withRetry(ctx, op); err != nil {
		return nil, err
	}
	return updated, nil
}

// withRetry reintenta op ante ErrConcurrencyConflict hasta maxRetries veces.
// Cualquier otro error se devuelve de inmediato sin reintento.
func (s *Service) withRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err = op()
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}

// checkMasterData valida existencia de producto y sucursal (maestros externos).
func (s *Service) checkMasterData(productID, branchID string) error {
	if productID == "" || branchID == "" {
		return domain.ErrInvalidInput
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	branch, err := s.branchRepo.GetByID(branchID)
	if err != nil {
		return err
	}
	if branch == nil {
		return domain.ErrNotFound
	}
	return nil
}
