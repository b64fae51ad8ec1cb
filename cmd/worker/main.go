package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/jobs"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
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
		Name:  "worker",
	})
	if !cfg.Queue.Enabled() {
		log.Fatal().Msg("REDIS_ADDR requerido para el worker")
	}
	if cfg.Storage.Driver != config.StoragePostgres {
		log.Fatal().Str("storage", cfg.Storage.Driver).Msg("el worker requiere STORAGE_DRIVER=postgres")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.Queue.RedisAddr,
		Password: cfg.Queue.RedisPassword,
		DB:       cfg.Queue.RedisDB,
	}
	jobClient := jobs.NewClient(redisOpts)
	defer jobClient.Close()

	// El worker no agrega movimientos; solo notifica a las recetas, así que no necesita dispatcher.
	ledger := inventory.NewLedgerService(inventory.LedgerDeps{
		Items:     postgres.NewItemRepository(pool),
		Movements: postgres.NewMovementRepository(pool),
		Recipes:   postgres.NewRecipeCatalog(pool),
		Recalc:    jobClient,
		TxRunner:  postgres.NewTxRunner(pool),
	}, inventory.ServiceConfig{
		ReadConcurrency: cfg.Ledger.ReadConcurrency,
	}, log.Component("ledger"))

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:    redisOpts,
		Concurrency:  cfg.Queue.Concurrency,
		PriceChanged: jobs.NewPriceChangedHandler(ledger, log.Component("jobs")),
		Logger:       log.Component("jobs"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("crear worker")
	}

	log.Info().Int("concurrency", cfg.Queue.Concurrency).Msg("worker iniciado")
	if err := worker.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("worker finalizado con error")
	}
	log.Info().Msg("worker detenido")
}
