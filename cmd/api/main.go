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
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/jobs"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		Name:  "api",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	var deps inventory.LedgerDeps

	switch cfg.Storage.Driver {
	case config.StorageMemory:
		// Sin persistencia: solo desarrollo local.
		store := memory.NewStore()
		deps = inventory.LedgerDeps{
			Items:     store.Items(),
			Movements: store.Movements(),
			Recipes:   store.Recipes(),
			Recalc:    store.Recipes(),
			TxRunner:  store.TxRunner(),
		}
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		deps = inventory.LedgerDeps{
			Items:     postgres.NewItemRepository(pool),
			Movements: postgres.NewMovementRepository(pool),
			Recipes:   postgres.NewRecipeCatalog(pool),
			TxRunner:  postgres.NewTxRunner(pool),
		}
	}

	// Con Redis y PostgreSQL los cambios de precio y los recálculos de recetas van por la cola.
	if cfg.Queue.Enabled() && !cfg.UseQueue() {
		log.Warn().Str("storage", cfg.Storage.Driver).
			Msg("REDIS_ADDR ignorado: el worker no procesa el store en memoria, los cambios de precio se notifican en línea")
	}
	if cfg.UseQueue() {
		jobClient := jobs.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Queue.RedisAddr,
			Password: cfg.Queue.RedisPassword,
			DB:       cfg.Queue.RedisDB,
		})
		defer jobClient.Close()
		deps.Dispatcher = jobClient
		if deps.Recalc == nil {
			deps.Recalc = jobClient
		}
	}
	if deps.Recalc == nil {
		log.Warn().Msg("sin cola configurada: los recálculos de recetas quedan deshabilitados")
		deps.Recalc = noopRecalculator{log: log}
	}

	ledger := inventory.NewLedgerService(deps, inventory.ServiceConfig{
		ReadConcurrency: cfg.Ledger.ReadConcurrency,
	}, log.Component("ledger"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    6 << 20,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:    ledger,
		Reports:   infrapdf.NewValuationReportGenerator(),
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
		Logger:    log.Component("http"),
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
