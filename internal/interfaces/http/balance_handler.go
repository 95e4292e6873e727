package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// BalanceHandler consultas de saldos (protegido, solo lectura).
type BalanceHandler struct {
	queries *inventory.BalanceQueryUseCase
	log     *logger.Logger
}

// NewBalanceHandler construye el handler.
func NewBalanceHandler(queries *inventory.BalanceQueryUseCase, log *logger.Logger) *BalanceHandler {
	return &BalanceHandler{queries: queries, log: log}
}

// List godoc
// @Summary      Listar saldos
// @Tags         balances
// @Security     Bearer
// @Produce      json
// @Param        productCode     query  string  false  "Coincidencia parcial de código"
// @Param        lotNumber       query  string  false  "Coincidencia parcial de lote"
// @Param        expirationFrom  query  string  false  "Vencimiento desde (YYYY-MM-DD)"
// @Param        expirationTo    query  string  false  "Vencimiento hasta (YYYY-MM-DD)"
// @Param        orderBy         query  string  false  "updatedAt | productCode | quantity | expirationDate"
// @Param        sortOrder       query  string  false  "ASC | DESC (por defecto DESC)"
// @Param        page            query  int     false  "Página (desde 1)"
// @Param        limit           query  int     false  "Tamaño de página (máx. 100)"
// @Success      200  {object}  dto.BalanceListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/balances [get]
func (h *BalanceHandler) List(c *fiber.Ctx) error {
	q := dto.BalanceListQuery{
		PageRequest:    dto.PageRequest{Page: c.QueryInt("page", dto.DefaultPage), Limit: c.QueryInt("limit", dto.DefaultLimit)},
		ProductCode:    c.Query("productCode"),
		LotNumber:      c.Query("lotNumber"),
		ExpirationFrom: c.Query("expirationFrom"),
		ExpirationTo:   c.Query("expirationTo"),
		OrderBy:        c.Query("orderBy"),
		SortOrder:      c.Query("sortOrder"),
	}
	out, err := h.queries.ListBalances(c.UserContext(), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Expiring godoc
// @Summary      Saldos próximos a vencer
// @Tags         balances
// @Security     Bearer
// @Produce      json
// @Param        days  query     int  false  "Ventana en días (por defecto 30)"
// @Success      200   {object}  dto.ExpiringResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/balances/expiring [get]
func (h *BalanceHandler) Expiring(c *fiber.Ctx) error {
	var days *int
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return writeError(c, h.log, domain.ValidationErrors{domain.NewValidationError("days", "debe ser un entero")})
		}
		days = &n
	}
	out, err := h.queries.ExpiringSoon(c.UserContext(), days)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ByProduct godoc
// @Summary      Saldos de un producto
// @Tags         balances
// @Security     Bearer
// @Produce      json
// @Param        productCode  path      string  true  "Código de producto"
// @Success      200          {object}  dto.ProductBalancesResponse
// @Failure      400          {object}  dto.ErrorResponse
// @Router       /api/balances/{productCode} [get]
func (h *BalanceHandler) ByProduct(c *fiber.Ctx) error {
	out, err := h.queries.BalancesForProduct(c.UserContext(), c.Params("productCode"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Lookup godoc
// @Summary      Saldo de una clave exacta
// @Tags         balances
// @Security     Bearer
// @Produce      json
// @Param        productCode     path   string  true   "Código de producto"
// @Param        lotNumber       query  string  false  "Lote"
// @Param        expirationDate  query  string  false  "Vencimiento YYYY-MM-DD"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/balances/{productCode}/lookup [get]
func (h *BalanceHandler) Lookup(c *fiber.Ctx) error {
	key, err := inventory.BuildKey(c.Params("productCode"), optQuery(c, "lotNumber"), optQuery(c, "expirationDate"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.queries.GetBalance(c.UserContext(), key)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar saldo contra el libro
// @Description  Compara el saldo materializado con Σ IN − Σ OUT de los movimientos de la clave.
// @Tags         balances
// @Security     Bearer
// @Produce      json
// @Param        productCode     path   string  true   "Código de producto"
// @Param        lotNumber       query  string  false  "Lote"
// @Param        expirationDate  query  string  false  "Vencimiento YYYY-MM-DD"
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/balances/{productCode}/reconcile [get]
func (h *BalanceHandler) Reconcile(c *fiber.Ctx) error {
	key, err := inventory.BuildKey(c.Params("productCode"), optQuery(c, "lotNumber"), optQuery(c, "expirationDate"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.queries.Reconcile(c.UserContext(), key)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
