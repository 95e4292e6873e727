package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegisterMovement *inventory.RegisterMovementUseCase
	BalanceQueries   *inventory.BalanceQueryUseCase
	JWTSecret        string
	Logger           *logger.Logger
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("http")

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	movements := api.Group("/movements")
	movementHandler := NewMovementHandler(deps.RegisterMovement, deps.BalanceQueries, log)
	movements.Post("/", movementHandler.Register)
	movements.Post("/adjust", movementHandler.Adjust)
	movements.Get("/", movementHandler.List)
	movements.Get("/:id", movementHandler.GetByID)

	balances := api.Group("/balances")
	balanceHandler := NewBalanceHandler(deps.BalanceQueries, log)
	balances.Get("/", balanceHandler.List)
	// antes de /:productCode para que "expiring" no se tome como código
	balances.Get("/expiring", balanceHandler.Expiring)
	balances.Get("/:productCode", balanceHandler.ByProduct)
	balances.Get("/:productCode/lookup", balanceHandler.Lookup)
	balances.Get("/:productCode/reconcile", balanceHandler.Reconcile)
}
