// Package feed harvests the configured RSS/Atom feeds into domain articles.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"golang.org/x/sync/errgroup"

	"TeluguNews/internal/config"
	"TeluguNews/internal/domain"
	"TeluguNews/internal/logging"
	"TeluguNews/internal/ports"
	"TeluguNews/internal/textutil"
)

// Fetcher implements ArticleSource over a static feed registry.
type Fetcher struct {
	client      *http.Client
	feeds       []domain.FeedSource
	timeout     time.Duration
	maxPerFeed  int
	concurrency int
	userAgent   string
	detector    ports.LanguageDetector
	logger      *slog.Logger
	now         func() time.Time
}

var _ ports.ArticleSource = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; a nil client gets one bounded by cfg.Timeout.
func NewFetcher(client *http.Client, feeds []domain.FeedSource, cfg config.FetchConfig, log *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fetcher{
		client:      client,
		feeds:       feeds,
		timeout:     cfg.Timeout,
		maxPerFeed:  cfg.MaxPerFeed,
		concurrency: concurrency,
		userAgent:   cfg.UserAgent,
		logger:      logging.OrDiscard(log),
		now:         time.Now,
	}
}

// WithDetector enables script detection for items of non-Telugu sources.
func (f *Fetcher) WithDetector(d ports.LanguageDetector) *Fetcher {
	f.detector = d
	return f
}

// FetchAll fetches every source and flattens the results in registry order.
// A failing source is logged and skipped.
func (f *Fetcher) FetchAll(ctx context.Context) ([]domain.Article, error) {
	perSource := make([][]domain.Article, len(f.feeds))

	var g errgroup.Group
	g.SetLimit(f.concurrency)

	for i, src := range f.feeds {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			articles, err := f.fetchSource(ctx, src)
			if err != nil {
				f.logger.Warn("feed failed", "source", src.Source, "url", src.URL, "error", err)
				return nil
			}
			f.logger.Debug("feed fetched", "source", src.Source, "articles", len(articles))
			perSource[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch feeds: %w", err)
	}

	var aggregated []domain.Article
	for _, articles := range perSource {
		aggregated = append(aggregated, articles...)
	}
	f.logger.Info("feeds fetched", "sources", len(f.feeds), "articles", len(aggregated))
	return aggregated, nil
}

func (f *Fetcher) fetchSource(ctx context.Context, src domain.FeedSource) ([]domain.Article, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := parsed.Items
	if f.maxPerFeed > 0 && len(items) > f.maxPerFeed {
		items = items[:f.maxPerFeed]
	}

	fetchedAt := f.now().UTC()
	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		article, ok := f.convertItem(item, src, fetchedAt)
		if !ok {
			continue
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func (f *Fetcher) convertItem(item *gofeed.Item, src domain.FeedSource, fetchedAt time.Time) (domain.Article, bool) {
	if item == nil {
		return domain.Article{}, false
	}

	title := textutil.Normalize(item.Title)
	if title == "" {
		return domain.Article{}, false
	}

	summary := textutil.Normalize(item.Description)
	if summary == "" {
		summary = textutil.Normalize(item.Content)
	}

	link := strings.TrimSpace(item.Link)

	publishedAt := fetchedAt
	if item.PublishedParsed != nil {
		publishedAt = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		publishedAt = item.UpdatedParsed.UTC()
	}

	language := src.Language
	if language == "" {
		language = "en"
	}
	if language != domain.TeluguLanguage && f.detector != nil && f.detector.IsTelugu(title) {
		language = domain.TeluguLanguage
	}

	article := domain.Article{
		ID:          domain.NewID(link, title),
		Title:       title,
		Summary:     summary,
		URL:         link,
		PublishedAt: publishedAt,
		Source:      src.Source,
		Category:    src.Category,
		Language:    language,
	}
	article.SetImage(extractImage(item))
	return article, true
}

// extractImage checks media:content, media:thumbnail, enclosure, itunes:image
// and finally the first inline <img> of the item HTML.
func extractImage(item *gofeed.Item) string {
	if url := mediaURL(item.Extensions, "content"); url != "" {
		return url
	}
	if url := mediaURL(item.Extensions, "thumbnail"); url != "" {
		return url
	}
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	if item.ITunesExt != nil && item.ITunesExt.Image != "" {
		return item.ITunesExt.Image
	}
	if src := textutil.FirstImageSrc(item.Description); src != "" {
		return src
	}
	if src := textutil.FirstImageSrc(item.Content); src != "" {
		return src
	}
	if item.Image != nil {
		return item.Image.URL
	}
	return ""
}

func mediaURL(extensions ext.Extensions, name string) string {
	media, ok := extensions["media"]
	if !ok {
		return ""
	}
	if url := firstAttr(media[name], "url"); url != "" {
		return url
	}
	for _, group := range media["group"] {
		if url := firstAttr(group.Children[name], "url"); url != "" {
			return url
		}
	}
	return ""
}

func firstAttr(elements []ext.Extension, attr string) string {
	for _, el := range elements {
		if v := strings.TrimSpace(el.Attrs[attr]); v != "" {
			return v
		}
	}
	return ""
}
