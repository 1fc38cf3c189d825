package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/validoc/validoc/pkg/cmd"
	"github.com/validoc/validoc/pkg/config"
	"github.com/validoc/validoc/pkg/log"
	"github.com/validoc/validoc/pkg/otelhelper"
	"github.com/validoc/validoc/pkg/registry"
	"github.com/validoc/validoc/pkg/reminder"
	"github.com/validoc/validoc/pkg/services"
	"github.com/validoc/validoc/pkg/watcher"
	"github.com/validoc/validoc/pkg/workflow"

	"go.opentelemetry.io/otel/trace"
)

func main() {
	app := &cli.Command{
		Name:                  "validoc-watcher",
		Usage:                 "Watch source folders and run document validation workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "watcher-id",
				Aliases: []string{"id"},
				Usage:   "Custom watcher service ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WATCHER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file:// or redis://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "documents-path",
				Usage:   "Directory for document records (file persistence only)",
				Value:   "./data",
				Sources: cli.EnvVars("DOCUMENTS_PATH"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "watchers-config",
				Usage:   "Optional YAML file declaring additional folder watchers",
				Value:   "",
				Sources: cli.EnvVars("WATCHERS_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "reminder-cron",
				Usage:   "Cron expression for overdue review reminders",
				Value:   "",
				Sources: cli.EnvVars("REMINDER_CRON"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Value:   false,
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	serviceID := command.String("watcher-id")
	if serviceID == "" {
		serviceID = fmt.Sprintf("watcher-%s", uuid.New().String()[:8])
	}

	logger := log.WithModule("validoc-watcher").With("service_id", serviceID)

	logger.Info("Initializing validoc watcher service")

	var tracer trace.Tracer

	if command.Bool("tracing") {
		t, err := otelhelper.NewTracer(ctx, "validoc-watcher")
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}

		tracer = t
	}

	persistence := cmd.NewPersistence(command.String("database-url"))
	defer func() {
		if err := persistence.Close(ctx); err != nil {
			logger.Error("Failed to close persistence", "error", err)
		}
	}()

	eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.Error("Failed to close event bus", "error", err)
		}
	}()

	files := services.NewLocalFileService()
	documents := services.NewFileDocumentService(command.String("documents-path"))
	notifier := services.NewLogNotifier(logger)

	reg := cmd.NewRegistry(logger)
	executor := registry.NewExecutor(reg, logger)

	engine := workflow.NewEngine(workflow.Config{
		Persistence: persistence,
		Executor:    executor,
		Documents:   documents,
		Files:       files,
		Notifier:    notifier,
		EventBus:    eventBus,
		Logger:      logger,
		Tracer:      tracer,
	})

	manager := watcher.NewManager(
		engine,
		files,
		documents,
		notifier,
		persistence.DefinitionRepository(),
		eventBus,
		logger,
	)

	ids, err := manager.StartForActiveWorkflows(ctx)
	if err != nil {
		return fmt.Errorf("failed to start watchers: %w", err)
	}

	if path := command.String("watchers-config"); path != "" {
		configs, err := config.LoadWatcherConfigs(path)
		if err != nil {
			return fmt.Errorf("failed to load watcher config: %w", err)
		}

		for _, watcherConfig := range configs {
			id, err := manager.Start(ctx, watcherConfig)
			if err != nil {
				logger.Error("Failed to start configured watcher",
					"folder_id", watcherConfig.FolderID,
					"error", err,
				)

				continue
			}

			ids = append(ids, id)
		}
	}

	logger.Info("Watchers running", "count", len(ids))

	reminders := reminder.NewScheduler(persistence, notifier, logger)
	if err := reminders.Start(command.String("reminder-cron")); err != nil {
		return fmt.Errorf("failed to start reminder scheduler: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutting down...")

	reminders.Stop()
	manager.StopAll()

	return nil
}
