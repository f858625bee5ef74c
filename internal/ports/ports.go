package ports

import (
	"context"
	"time"

	"TeluguNews/internal/domain"
)

// ArticleSource pulls the current articles of every configured feed.
// Per-source failures are absorbed; only a cancelled context is reported.
type ArticleSource interface {
	FetchAll(ctx context.Context) ([]domain.Article, error)
}

// PageFetcher downloads raw HTML for an article page.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

// Enricher backfills short summaries and missing images. It never fails.
type Enricher interface {
	Enrich(ctx context.Context, articles []domain.Article) []domain.Article
}

// TranslationProvider converts text between two language codes.
type TranslationProvider interface {
	Name() string
	MaxChars() int
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// TextTranslator is the fallback-aware translation entry used per field.
// ok is false when every provider failed and text holds the truncated source.
type TextTranslator interface {
	TranslateText(ctx context.Context, text, from string) (translated string, ok bool)
}

// ArticleStore is the capability set every persistence backend offers.
// ReadAll returns an empty slice when nothing has been persisted yet.
type ArticleStore interface {
	ReadAll(ctx context.Context) ([]domain.Article, error)
	ReplaceAll(ctx context.Context, articles []domain.Article) error
	ReadMeta(ctx context.Context) (domain.Meta, error)
	WriteMeta(ctx context.Context, meta domain.Meta) error
}

// CategoryViewWriter is implemented by stores that materialize per-category views.
type CategoryViewWriter interface {
	WriteCategoryViews(ctx context.Context, views []domain.CategoryView) error
}

// LanguageDetector guesses whether text is written in Telugu.
type LanguageDetector interface {
	IsTelugu(text string) bool
}

// Notifier streams run reports to Telegram or other channels.
type Notifier interface {
	PublishReport(ctx context.Context, report string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
