package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/FlakM/czujka-librus/internal/config"
	"github.com/FlakM/czujka-librus/internal/infrastructure/email"
	"github.com/FlakM/czujka-librus/internal/infrastructure/librus"
	"github.com/FlakM/czujka-librus/internal/infrastructure/llm"
	"github.com/FlakM/czujka-librus/internal/infrastructure/scheduler"
	"github.com/FlakM/czujka-librus/internal/infrastructure/storage"
	"github.com/FlakM/czujka-librus/internal/infrastructure/telegram"
	"github.com/FlakM/czujka-librus/internal/logging"
	"github.com/FlakM/czujka-librus/internal/ports"
	"github.com/FlakM/czujka-librus/internal/usecase"
)

// Application wires configuration to use cases and owns the storage pool.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB
	store  *storage.PostgresRepository
	runner *usecase.Runner
}

// New builds a runnable application instance. The database handle is a
// pool owned here and passed down explicitly; it is closed once in Run.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := storage.NewPostgresRepository(db)
	portal := librus.NewClient(cfg.Librus, baseLogger.With("component", "librus"))
	classifier := llm.NewOpenAIClassifier(cfg.OpenAI)

	notifiers := []ports.Notifier{
		email.NewNotifier(cfg.Email, baseLogger.With("component", "email")),
	}
	if cfg.Telegram.BotToken != "" {
		tg, err := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID,
			baseLogger.With("component", "telegram"))
		if err != nil {
			baseLogger.Warn("telegram channel unavailable", "error", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	syncer := usecase.NewSyncer(portal, store, baseLogger.With("component", "sync"))
	runner := usecase.NewRunner(portal, syncer, classifier, notifiers,
		baseLogger.With("component", "runner"))

	return &Application{
		cfg:    cfg,
		logger: baseLogger,
		db:     db,
		store:  store,
		runner: runner,
	}, nil
}

// Run initializes storage and executes either a single sync run or the
// cron-driven loop, depending on configuration.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		if err := a.db.Close(); err != nil {
			a.logger.Error("closing database", "error", err)
		}
	}()

	if err := a.store.Init(ctx); err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	if a.cfg.Scheduler.CronExpression == "" {
		return a.runner.Run(ctx)
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	recurring := usecase.NewScheduler(driver, a.runner, a.logger.With("component", "scheduler"))

	if err := recurring.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return recurring.Stop(context.Background())
}
