package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"TeluguNews/internal/domain"
	"TeluguNews/internal/logging"
	"TeluguNews/internal/ports"
)

// ErrNotConfigured is returned by Run when a required stage is missing.
var ErrNotConfigured = errors.New("pipeline is missing a required stage")

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.ArticleSource
	Enricher   ports.Enricher
	Translator *Translator
	Persister  *Persister
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// Pipeline implements the news-ingestion workflow.
type Pipeline struct {
	source     ports.ArticleSource
	enricher   ports.Enricher
	translator *Translator
	persister  *Persister
	notifier   ports.Notifier
	logger     *slog.Logger
}

// RunReport summarizes one pipeline execution.
type RunReport struct {
	RunID                string
	Started              time.Time
	Fetched              int
	Unique               int
	Enriched             int
	Translated           int
	AlreadyTelugu        int
	TranslationFallbacks int
	Persisted            int
	Duration             time.Duration
}

// NewPipeline constructs the orchestration component. Enricher and
// Notifier are optional.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:     deps.Source,
		enricher:   deps.Enricher,
		translator: deps.Translator,
		persister:  deps.Persister,
		notifier:   deps.Notifier,
		logger:     logging.OrDiscard(deps.Logger),
	}
}

// Run fetches, deduplicates, enriches, translates and persists once. Only
// a cancelled context or a persistence failure makes it return an error.
func (p *Pipeline) Run(ctx context.Context) (RunReport, error) {
	report := RunReport{RunID: uuid.NewString(), Started: time.Now()}
	if p.source == nil || p.translator == nil || p.persister == nil {
		return report, ErrNotConfigured
	}
	log := p.logger.With("run_id", report.RunID)
	log.Info("run started")

	fetched, err := p.source.FetchAll(ctx)
	if err != nil {
		return report, fmt.Errorf("collect articles: %w", err)
	}
	report.Fetched = len(fetched)

	articles := Dedup(fetched)
	report.Unique = len(articles)
	log.Info("articles collected", "fetched", report.Fetched, "unique", report.Unique)

	if p.enricher != nil {
		enriched := p.enricher.Enrich(ctx, articles)
		report.Enriched = countChanged(articles, enriched)
		articles = enriched
	}

	articles, stats := p.translator.TranslateAll(ctx, articles)
	report.Translated = stats.Translated
	report.AlreadyTelugu = stats.Skipped
	report.TranslationFallbacks = stats.Fallbacks

	// A cancelled run must not overwrite the store with a half-translated batch.
	if err := ctx.Err(); err != nil {
		return report, err
	}

	meta, err := p.persister.Persist(ctx, articles)
	if err != nil {
		return report, fmt.Errorf("persist: %w", err)
	}
	report.Persisted = meta.TotalArticles
	report.Duration = time.Since(report.Started)

	log.Info("run finished",
		"persisted", report.Persisted,
		"translated", report.Translated,
		"fallbacks", report.TranslationFallbacks,
		"took", report.Duration.Round(time.Millisecond),
	)

	if p.notifier != nil {
		if err := p.notifier.PublishReport(ctx, report.Message()); err != nil {
			log.Warn("run report not delivered", "error", err)
		}
	}
	return report, nil
}

// Message renders the report for chat delivery.
func (r RunReport) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Telugu news run %s\n", shortID(r.RunID))
	fmt.Fprintf(&b, "fetched: %d, unique: %d, enriched: %d\n", r.Fetched, r.Unique, r.Enriched)
	fmt.Fprintf(&b, "translated: %d, already telugu: %d, fallbacks: %d\n", r.Translated, r.AlreadyTelugu, r.TranslationFallbacks)
	fmt.Fprintf(&b, "stored: %d, took %s", r.Persisted, r.Duration.Round(time.Second))
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func countChanged(before, after []domain.Article) int {
	changed := 0
	for i := range after {
		if i >= len(before) {
			break
		}
		if after[i].Summary != before[i].Summary || after[i].HasImage() != before[i].HasImage() {
			changed++
		}
	}
	return changed
}
