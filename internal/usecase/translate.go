package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"TeluguNews/internal/config"
	"TeluguNews/internal/domain"
	"TeluguNews/internal/logging"
	"TeluguNews/internal/ports"
)

// TranslationStats counts the outcome of one TranslateAll call.
type TranslationStats struct {
	Translated int
	Skipped    int
	Fallbacks  int
}

// Translator fills the Telugu fields of every article, at most
// concurrency articles at a time.
type Translator struct {
	texts       ports.TextTranslator
	concurrency int
	stagger     time.Duration
	logger      *slog.Logger

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewTranslator wires the fallback chain with the stage limits.
func NewTranslator(texts ports.TextTranslator, cfg config.TranslationConfig, log *slog.Logger) *Translator {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Translator{
		texts:       texts,
		concurrency: concurrency,
		stagger:     cfg.Stagger,
		logger:      logging.OrDiscard(log),
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// TranslateArticle translates title and summary concurrently. Telugu
// articles are copied into the Telugu fields without any call.
func (t *Translator) TranslateArticle(ctx context.Context, a domain.Article) domain.Article {
	if a.Language == domain.TeluguLanguage {
		a.TitleTE = a.Title
		a.SummaryTE = a.Summary
		a.Translated = false
		a.TranslationFallback = false
		return a
	}

	var (
		wg                 sync.WaitGroup
		summary            string
		titleOK, summaryOK bool
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		summary, summaryOK = t.texts.TranslateText(ctx, a.Summary, a.Language)
	}()
	title, titleOK := t.texts.TranslateText(ctx, a.Title, a.Language)
	wg.Wait()

	a.TitleTE = title
	a.SummaryTE = summary
	a.Translated = true
	a.TranslationFallback = !titleOK || !summaryOK
	return a
}

// TranslateAll returns a translated copy of articles in the same order.
// The k-th article needing a provider is not admitted before batch start
// plus k*stagger, which spreads requests without holding a slot while waiting.
func (t *Translator) TranslateAll(ctx context.Context, articles []domain.Article) ([]domain.Article, TranslationStats) {
	out := make([]domain.Article, len(articles))
	copy(out, articles)

	var g errgroup.Group
	g.SetLimit(t.concurrency)

	start := t.now()
	position := 0
	for i := range out {
		if out[i].Language == domain.TeluguLanguage {
			out[i] = t.TranslateArticle(ctx, out[i])
			continue
		}

		if t.stagger > 0 {
			due := start.Add(time.Duration(position) * t.stagger)
			if err := t.sleep(ctx, due.Sub(t.now())); err != nil {
				break
			}
		}
		position++

		g.Go(func() error {
			out[i] = t.TranslateArticle(ctx, out[i])
			return nil
		})
	}
	_ = g.Wait()

	var stats TranslationStats
	for _, a := range out {
		switch {
		case a.Language == domain.TeluguLanguage:
			stats.Skipped++
		case a.Translated:
			stats.Translated++
			if a.TranslationFallback {
				stats.Fallbacks++
			}
		}
	}

	t.logger.Info("translation done",
		"articles", len(out),
		"translated", stats.Translated,
		"already_telugu", stats.Skipped,
		"fallbacks", stats.Fallbacks,
	)
	return out, stats
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
