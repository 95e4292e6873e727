package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-ledger/docs"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// stores puertos que dependen del driver configurado.
type stores struct {
	txRunner  inventory.TxRunner
	products  repository.ProductDirectory
	balances  repository.BalanceQueryRepository
	movements repository.MovementRepository
	close     func()
}

// @title          Inventario Ledger API
// @version        1.0
// @description    Libro de movimientos de inventario por producto, lote y vencimiento con saldos versionados.
// @BasePath       /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	if cfg.JWT.Secret == "" {
		panic("JWT_SECRET es obligatorio")
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("abrir almacenamiento")
	}
	defer st.close()

	policy := inventory.RetryPolicy{
		MaxRetries: cfg.Ledger.MaxRetries,
		Initial:    cfg.Ledger.RetryInitial,
		Max:        cfg.Ledger.RetryMax,
	}
	registerMovementUC := inventory.NewRegisterMovementUseCase(st.txRunner, st.products, policy, log.Component("coordinator"))
	balanceQueriesUC := inventory.NewBalanceQueryUseCase(st.balances, st.movements, cfg.Ledger.ExpiringDefaultDays)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FileContent: docs.SwaggerJSON,
		Path:        "docs",
		Title:       "Inventario Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RegisterMovement: registerMovementUC,
		BalanceQueries:   balanceQueriesUC,
		JWTSecret:        cfg.JWT.Secret,
		Logger:           log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.DB.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.DB.SQLitePath).Msg("almacén SQLite listo")
		return &stores{
			txRunner:  sqlite.NewTxRunner(store, cfg.Ledger.TxTimeout),
			products:  sqlite.NewProductRepository(store.DB()),
			balances:  sqlite.NewBalanceRepository(store.DB()),
			movements: sqlite.NewMovementRepository(store.DB()),
			close:     func() { _ = store.Close() },
		}, nil
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			log.Info().Msg("migraciones aplicadas")
		}
		return &stores{
			txRunner:  postgres.NewTxRunner(pool, cfg.Ledger),
			products:  postgres.NewProductRepository(pool),
			balances:  postgres.NewBalanceRepository(pool),
			movements: postgres.NewMovementRepository(pool),
			close:     pool.Close,
		}, nil
	}
}
