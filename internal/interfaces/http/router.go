package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/avicola-api/internal/application/ledger"
	"github.com/jhoicas/avicola-api/internal/application/traceability"
	"github.com/jhoicas/avicola-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC       *ledger.UseCase
	TraceabilityUC *traceability.UseCase
	JWTSecret      string
}

// Router registra las rutas de la API. Todo el núcleo de inventario exige Bearer Token:
// el companyID (ámbito de empresa) y el actorID salen del token en cada petición.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	movementHandler := NewMovementHandler(deps.LedgerUC)
	inventoryHandler := NewInventoryHandler(deps.LedgerUC)
	traceHandler := NewTraceabilityHandler(deps.TraceabilityUC)

	// Movimientos: crear/consultar para cualquier rol operativo; procesar, cancelar y
	// traslado rápido reservados a quienes operan galpones.
	movements := api.Group("/movements")
	movements.Post("/", RequireRole(entity.RoleAdmin, entity.RoleTecnico, entity.RoleGalponero), movementHandler.Create)
	movements.Post("/quick-transfer", RequireRole(entity.RoleAdmin, entity.RoleGalponero), movementHandler.QuickTransfer)
	movements.Get("/:id", movementHandler.Get)
	movements.Post("/:id/process", RequireRole(entity.RoleAdmin, entity.RoleGalponero), movementHandler.Process)
	movements.Post("/:id/cancel", RequireRole(entity.RoleAdmin, entity.RoleGalponero), movementHandler.Cancel)

	// Inventario
	inventory := api.Group("/inventory")
	inventory.Post("/", RequireRole(entity.RoleAdmin, entity.RoleTecnico), inventoryHandler.Create)
	inventory.Get("/:id", inventoryHandler.Get)
	inventory.Delete("/:id", RequireRole(entity.RoleAdmin), inventoryHandler.Close)

	// Trazabilidad por lote
	lotes := api.Group("/lotes")
	lotes.Get("/:loteId/movements", movementHandler.ListByLote)
	lotes.Get("/:loteId/timeline", traceHandler.Timeline)
	lotes.Get("/:loteId/locations", traceHandler.Locations)
}
