package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// HeaderIdempotencyKey cabecera opcional para deduplicar reenvíos del cliente.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "X-Idempotent-Replayed"
)

// MovementHandler maneja las peticiones HTTP de movimientos (protegido).
type MovementHandler struct {
	uc      *inventory.RegisterMovementUseCase
	queries *inventory.BalanceQueryUseCase
	log     *logger.Logger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.RegisterMovementUseCase, queries *inventory.BalanceQueryUseCase, log *logger.Logger) *MovementHandler {
	return &MovementHandler{uc: uc, queries: queries, log: log}
}

// Register godoc
// @Summary      Registrar movimiento de inventario
// @Description  Entrada (IN) o salida (OUT) para una clave producto/lote/vencimiento. Una salida mayor al saldo se rechaza.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                       false  "Clave de idempotencia del cliente"
// @Param        body             body    dto.RegisterMovementRequest  true   "productCode, quantity, direction, lotNumber?, expirationDate?, note?"
// @Success      201  {object}  dto.MovementResponse
// @Success      200  {object}  dto.MovementResponse  "Reenvío con la misma clave de idempotencia"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      504  {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.RegisterMovementFromRequest(c.UserContext(), GetUserID(c), c.Get(HeaderIdempotencyKey), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.created(c, res)
}

// Adjust godoc
// @Summary      Ajustar inventario
// @Description  delta positivo registra una entrada y negativo una salida.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                     false  "Clave de idempotencia del cliente"
// @Param        body             body    dto.AdjustMovementRequest  true   "productCode, delta, lotNumber?, expirationDate?, note?"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements/adjust [post]
func (h *MovementHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.AdjustFromRequest(c.UserContext(), GetUserID(c), c.Get(HeaderIdempotencyKey), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.created(c, res)
}

func (h *MovementHandler) created(c *fiber.Ctx, res *inventory.MovementResult) error {
	status := fiber.StatusCreated
	if res.Replayed {
		c.Set(HeaderReplayed, "true")
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.NewMovementResponse(res.Movement))
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del movimiento (UUID)"
// @Success      200  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.queries.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Libro de una clave
// @Description  Movimientos de una clave exacta, más recientes primero.
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        productCode     query  string  true   "Código de producto"
// @Param        lotNumber       query  string  false  "Lote"
// @Param        expirationDate  query  string  false  "Vencimiento YYYY-MM-DD"
// @Param        page            query  int     false  "Página (desde 1)"
// @Param        limit           query  int     false  "Tamaño de página (máx. 100)"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	key, err := inventory.BuildKey(c.Query("productCode"), optQuery(c, "lotNumber"), optQuery(c, "expirationDate"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	page := dto.PageRequest{Page: c.QueryInt("page", dto.DefaultPage), Limit: c.QueryInt("limit", dto.DefaultLimit)}
	out, err := h.queries.ListMovements(c.UserContext(), key, page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

func optQuery(c *fiber.Ctx, name string) *string {
	if v := c.Query(name); v != "" {
		return &v
	}
	return nil
}
