package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"TeluguNews/internal/config"
	"TeluguNews/internal/infrastructure/enrich"
	"TeluguNews/internal/infrastructure/feed"
	"TeluguNews/internal/infrastructure/langdetect"
	"TeluguNews/internal/infrastructure/llm"
	"TeluguNews/internal/infrastructure/scheduler"
	"TeluguNews/internal/infrastructure/storage"
	"TeluguNews/internal/infrastructure/telegram"
	"TeluguNews/internal/infrastructure/translate"
	"TeluguNews/internal/logging"
	"TeluguNews/internal/ports"
	"TeluguNews/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	closers  []io.Closer
}

// New builds a runnable application instance. The caller must Close it.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	client := &http.Client{}

	fetcher := feed.NewFetcher(client, cfg.Feeds, cfg.Fetch, baseLogger.With("component", "feed"))
	if cfg.Fetch.DetectLanguage {
		fetcher.WithDetector(langdetect.NewDetector())
	}

	var enricher ports.Enricher
	if cfg.Enrichment.Enabled {
		enricher = enrich.NewEnricher(
			enrich.NewHTTPPageFetcher(client),
			nil,
			cfg.Enrichment,
			baseLogger.With("component", "enrich"),
		)
	}

	providers := []ports.TranslationProvider{
		translate.NewGoogleProvider(cfg.Translation.Google, client),
		translate.NewMyMemoryProvider(cfg.Translation.MyMemory, client),
	}
	if cfg.Translation.ChatGPT.APIKey != "" {
		providers = append(providers, llm.NewChatGPTClient(cfg.Translation.ChatGPT))
	}
	chain := translate.NewChain(cfg.Translation.TargetLanguage, baseLogger.With("component", "translate"), providers...)

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     fetcher,
		Enricher:   enricher,
		Translator: usecase.NewTranslator(chain, cfg.Translation, baseLogger.With("component", "translator")),
		Persister: usecase.NewPersister(store, usecase.PersistOptions{
			MaxTotal:       cfg.Storage.MaxTotal,
			MaxPerCategory: cfg.Storage.MaxPerCategory,
			FeedsCount:     len(cfg.Feeds),
			Location:       cfg.Scheduler.Location(),
		}, baseLogger.With("component", "persist")),
		Notifier: notifier,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	baseLogger.Info("application ready",
		"feeds", len(cfg.Feeds),
		"storage", cfg.Storage.Backend,
		"enrichment", cfg.Enrichment.Enabled,
		"providers", chain.Providers(),
		"telegram", notifier != nil,
	)
	return a, nil
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	_, err := a.pipeline.Run(ctx)
	return err
}

// Serve runs the pipeline now and then every scheduler interval until ctx
// is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	driver := scheduler.NewTickerScheduler(a.cfg.Scheduler.Interval, a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watching feeds", "interval", a.cfg.Scheduler.Interval)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	return nil
}

// Close releases storage connections.
func (a *Application) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Application) openStore(ctx context.Context) (ports.ArticleStore, error) {
	cfg := a.cfg.Storage
	switch cfg.Backend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), nil
	case config.BackendSQL:
		store, err := storage.OpenSQL(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sql store: %w", err)
		}
		store.WithLogger(a.logger.With("component", "storage"))
		a.closers = append(a.closers, store)
		return store, nil
	default:
		store, err := storage.NewFileStore(cfg.Dir, storage.FileOptions{
			ExportRSS: cfg.ExportRSS,
			SiteURL:   cfg.SiteURL,
		}, a.logger.With("component", "storage"))
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return store, nil
	}
}
