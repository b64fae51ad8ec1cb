package jobs

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Worker envuelve el servidor asynq.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// WorkerConfig dependencias del worker.
type WorkerConfig struct {
	RedisOpts    asynq.RedisClientOpt
	Concurrency  int
	PriceChanged *PriceChangedHandler
	Logger       zerolog.Logger
}

// NewWorker construye el worker con los handlers del libro registrados.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.PriceChanged == nil {
		return nil, errors.New("worker: falta el handler de cambios de precio")
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	log := cfg.Logger
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueDefault: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).Str("task", task.Type()).Msg("tarea fallida")
		}),
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskPriceChanged, cfg.PriceChanged.Handle)
	return &Worker{server: srv, mux: mux}, nil
}

// Run procesa tareas hasta que se cancela el contexto y luego espera las tareas en curso.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}
