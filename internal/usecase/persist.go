package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"TeluguNews/internal/domain"
	"TeluguNews/internal/logging"
	"TeluguNews/internal/ports"
)

// localTimeLayout renders last_updated_local the way Indian readers expect.
const localTimeLayout = "02/01/2006, 3:04:05 pm"

// PersistOptions bounds the stored collection and describes the meta document.
type PersistOptions struct {
	MaxTotal       int
	MaxPerCategory int
	FeedsCount     int
	Location       *time.Location
}

// Persister merges fresh articles into the stored collection.
type Persister struct {
	store  ports.ArticleStore
	opts   PersistOptions
	logger *slog.Logger
	now    func() time.Time
}

// NewPersister wires a store with its bounds.
func NewPersister(store ports.ArticleStore, opts PersistOptions, log *slog.Logger) *Persister {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Persister{
		store:  store,
		opts:   opts,
		logger: logging.OrDiscard(log),
		now:    time.Now,
	}
}

// Persist reads the stored collection, merges fresh into it, keeps the
// newest MaxTotal entries and writes collection, category views and meta in
// that order. Any store failure aborts the remaining writes.
func (p *Persister) Persist(ctx context.Context, fresh []domain.Article) (domain.Meta, error) {
	existing, err := p.store.ReadAll(ctx)
	switch {
	case errors.Is(err, domain.ErrCorrupt):
		p.logger.Warn("stored collection unreadable, starting empty", "error", err)
		existing = nil
	case err != nil:
		return domain.Meta{}, fmt.Errorf("read collection: %w", err)
	}

	merged := Merge(existing, fresh)
	SortByRecency(merged)
	if p.opts.MaxTotal > 0 && len(merged) > p.opts.MaxTotal {
		merged = merged[:p.opts.MaxTotal]
	}

	if err := p.store.ReplaceAll(ctx, merged); err != nil {
		return domain.Meta{}, fmt.Errorf("replace collection: %w", err)
	}

	now := p.now()
	if writer, ok := p.store.(ports.CategoryViewWriter); ok {
		views := CategoryViews(merged, p.opts.MaxPerCategory, now)
		if err := writer.WriteCategoryViews(ctx, views); err != nil {
			return domain.Meta{}, fmt.Errorf("write category views: %w", err)
		}
	}

	meta := BuildMeta(merged, now, p.opts.Location, p.opts.FeedsCount)
	if err := p.store.WriteMeta(ctx, meta); err != nil {
		return domain.Meta{}, fmt.Errorf("write meta: %w", err)
	}

	p.logger.Info("collection persisted",
		"existing", len(existing),
		"fresh", len(fresh),
		"stored", len(merged),
	)
	return meta, nil
}

// Merge overlays fresh on existing by id. Existing entries missing from
// fresh are kept untouched; duplicate ids collapse to one entry.
func Merge(existing, fresh []domain.Article) []domain.Article {
	index := make(map[string]int, len(existing)+len(fresh))
	merged := make([]domain.Article, 0, len(existing)+len(fresh))

	for _, a := range existing {
		if _, dup := index[a.ID]; dup {
			continue
		}
		index[a.ID] = len(merged)
		merged = append(merged, a)
	}
	for _, a := range fresh {
		if i, ok := index[a.ID]; ok {
			merged[i] = a
			continue
		}
		index[a.ID] = len(merged)
		merged = append(merged, a)
	}
	return merged
}

// SortByRecency orders newest first; equal timestamps fall back to id.
func SortByRecency(articles []domain.Article) {
	slices.SortStableFunc(articles, func(a, b domain.Article) int {
		if c := b.PublishedAt.Compare(a.PublishedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// CategoryViews derives the newest limit articles of every category present
// in a collection already sorted by recency.
func CategoryViews(sorted []domain.Article, limit int, now time.Time) []domain.CategoryView {
	byCategory := make(map[domain.Category][]domain.Article)
	var order []domain.Category
	for _, a := range sorted {
		list, seen := byCategory[a.Category]
		if !seen {
			order = append(order, a.Category)
		}
		if limit > 0 && len(list) >= limit {
			continue
		}
		byCategory[a.Category] = append(list, a)
	}

	slices.Sort(order)
	views := make([]domain.CategoryView, 0, len(order))
	for _, cat := range order {
		articles := byCategory[cat]
		views = append(views, domain.CategoryView{
			Category:  cat,
			UpdatedAt: now,
			Count:     len(articles),
			Articles:  articles,
		})
	}
	return views
}

// BuildMeta summarizes a stored collection.
func BuildMeta(articles []domain.Article, now time.Time, loc *time.Location, feedsCount int) domain.Meta {
	categories := make(map[string]struct{})
	sources := make(map[string]struct{})
	for _, a := range articles {
		categories[string(a.Category)] = struct{}{}
		sources[a.Source] = struct{}{}
	}
	if loc == nil {
		loc = time.UTC
	}

	return domain.Meta{
		LastUpdated:      now.UTC(),
		LastUpdatedLocal: now.In(loc).Format(localTimeLayout),
		TotalArticles:    len(articles),
		Categories:       sortedKeys(categories),
		Sources:          sortedKeys(sources),
		FeedsCount:       feedsCount,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
