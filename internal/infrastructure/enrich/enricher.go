// Package enrich scrapes article pages to replace feed snippets that are too short.
package enrich

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/semaphore"

	"TeluguNews/internal/config"
	"TeluguNews/internal/domain"
	"TeluguNews/internal/extract"
	"TeluguNews/internal/logging"
	"TeluguNews/internal/ports"
	"TeluguNews/internal/ratelimit"
	"TeluguNews/internal/textutil"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Mobile Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
}

// Enricher replaces short summaries with text scraped from the article page.
type Enricher struct {
	pages     ports.PageFetcher
	chain     *extract.Chain
	cfg       config.EnrichmentConfig
	logger    *slog.Logger
	newSpacer func() *ratelimit.HostSpacer
	pickAgent func() string
}

var _ ports.Enricher = (*Enricher)(nil)

// NewEnricher wires the page fetcher and extraction chain; a nil chain uses the defaults.
func NewEnricher(pages ports.PageFetcher, chain *extract.Chain, cfg config.EnrichmentConfig, log *slog.Logger) *Enricher {
	if chain == nil {
		chain = extract.DefaultChain(cfg.MaxParagraphs)
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Enricher{
		pages:  pages,
		chain:  chain,
		cfg:    cfg,
		logger: logging.OrDiscard(log),
		newSpacer: func() *ratelimit.HostSpacer {
			return ratelimit.NewHostSpacer(cfg.HostSpacing)
		},
		pickAgent: func() string {
			return userAgents[rand.IntN(len(userAgents))]
		},
	}
}

// NeedsEnrichment reports whether the feed summary is below the configured threshold.
func (e *Enricher) NeedsEnrichment(a domain.Article) bool {
	return a.URL != "" && textutil.RuneLen(a.Summary) < e.cfg.MinSummaryLength
}

// Enrich returns every input article, enriched where possible. Failures leave
// the article untouched.
func (e *Enricher) Enrich(ctx context.Context, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles)

	spacer := e.newSpacer()
	sem := semaphore.NewWeighted(int64(e.cfg.Concurrency))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		enriched int
	)
	for i := range out {
		if !e.NeedsEnrichment(out[i]) {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)

			updated, ok := e.enrichOne(ctx, spacer, out[i])
			if !ok {
				return
			}
			out[i] = updated
			mu.Lock()
			enriched++
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	e.logger.Info("enrichment done", "articles", len(out), "enriched", enriched)
	return out
}

func (e *Enricher) enrichOne(ctx context.Context, spacer *ratelimit.HostSpacer, a domain.Article) (domain.Article, bool) {
	if err := spacer.WaitURL(ctx, a.URL); err != nil {
		return a, false
	}

	reqCtx := ctx
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	started := time.Now()
	body, err := e.pages.FetchPage(reqCtx, a.URL, map[string]string{
		"User-Agent":      e.pickAgent(),
		"Accept":          "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-IN,en;q=0.9",
	})
	if err != nil {
		e.logger.Debug("page fetch failed", "url", a.URL, "error", err)
		return a, false
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		e.logger.Debug("page parse failed", "url", a.URL, "error", err)
		return a, false
	}

	image := extract.Image(doc)
	text, strategy := e.chain.Content(doc)
	text = textutil.Truncate(text, e.cfg.MaxSummaryLength)
	if textutil.RuneLen(text) <= e.cfg.MinExtractedLength {
		e.logger.Debug("no usable content", "url", a.URL)
		return a, false
	}

	a.Summary = text
	if !a.HasImage() {
		a.SetImage(image)
	}
	e.logger.Debug("article enriched", "url", a.URL, "strategy", strategy, "chars", textutil.RuneLen(text), "took", time.Since(started))
	return a, true
}
