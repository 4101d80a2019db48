package http

import (
	"github.com/gofiber/fiber/v2"

	appown "github.com/jhoicas/Joyeria-api/internal/application/ownership"
)

// Roles del POS. La emisión de tokens (login, usuarios) vive en otro subsistema;
// aquí solo se validan los claims.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	OwnershipSvc  *appown.Service
	ConsolidateUC *appown.ConsolidateUseCase
	Queries       *appown.Queries
	JWTSecret     string
}

// Router registra las rutas de la API. Todo /api/ownership requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/ownership", AuthMiddleware(deps.JWTSecret))
	h := NewOwnershipHandler(deps.OwnershipSvc, deps.ConsolidateUC, deps.Queries)

	// Recepción y mutaciones de lotes
	protected.Post("/records", RequireRole(RoleAdmin, RoleBodeguero), h.CreateRecord)
	protected.Post("/records/:id/payments", RequireRole(RoleAdmin, RoleBodeguero), h.RegisterPayment)
	protected.Post("/records/:id/sale", RequireRole(RoleAdmin, RoleVendedor), h.RegisterSale)
	protected.Post("/records/:id/adjustments", RequireRole(RoleAdmin), h.RegisterAdjustment)
	protected.Post("/conversions", RequireRole(RoleAdmin, RoleBodeguero), h.Convert)
	protected.Post("/consolidations", RequireRole(RoleAdmin), h.Consolidate)

	// Consultas (cualquier rol autenticado)
	protected.Post("/validate", h.Validate)
	protected.Get("/cost-plan", h.CostPlan)
	protected.Get("/summary", h.Summary)
	protected.Get("/low-ownership", h.LowOwnership)
	protected.Get("/outstanding", h.Outstanding)
	protected.Get("/records/:id", h.GetRecord)
	protected.Get("/records/:id/movements", h.Movements)
	protected.Get("/records/:id/verify", h.VerifyLedger)
}
