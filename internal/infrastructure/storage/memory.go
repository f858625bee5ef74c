package storage

import (
	"context"
	"sync"

	"TeluguNews/internal/domain"
	"TeluguNews/internal/ports"
)

// MemoryStore keeps everything in process. It backs dry runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	articles []domain.Article
	meta     *domain.Meta
	views    map[domain.Category]domain.CategoryView
}

var (
	_ ports.ArticleStore       = (*MemoryStore)(nil)
	_ ports.CategoryViewWriter = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{views: make(map[domain.Category]domain.CategoryView)}
}

// ReadAll returns a copy of the stored collection.
func (m *MemoryStore) ReadAll(_ context.Context) ([]domain.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Article{}, m.articles...), nil
}

// ReplaceAll swaps the collection.
func (m *MemoryStore) ReplaceAll(_ context.Context, articles []domain.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articles = append([]domain.Article{}, articles...)
	return nil
}

// ReadMeta returns domain.ErrNotFound until meta has been written once.
func (m *MemoryStore) ReadMeta(_ context.Context) (domain.Meta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.meta == nil {
		return domain.Meta{}, domain.ErrNotFound
	}
	return *m.meta, nil
}

// WriteMeta stores meta.
func (m *MemoryStore) WriteMeta(_ context.Context, meta domain.Meta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta = &meta
	return nil
}

// WriteCategoryViews replaces the stored views.
func (m *MemoryStore) WriteCategoryViews(_ context.Context, views []domain.CategoryView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views = make(map[domain.Category]domain.CategoryView, len(views))
	for _, v := range views {
		m.views[v.Category] = v
	}
	return nil
}

// View returns the last written view of category.
func (m *MemoryStore) View(category domain.Category) (domain.CategoryView, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.views[category]
	return v, ok
}
