package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/feeds"

	"TeluguNews/internal/domain"
	"TeluguNews/internal/logging"
	"TeluguNews/internal/ports"
)

const (
	newsFile = "news.json"
	metaFile = "meta.json"
	rssFile  = "news.xml"
)

// FileOptions tunes the optional outputs of the file store.
type FileOptions struct {
	ExportRSS bool
	FeedTitle string
	SiteURL   string
}

// FileStore keeps the collection as a tree of JSON documents under one
// directory. Every document is replaced by write-to-temp then rename, so
// readers never observe a partial file.
type FileStore struct {
	dir    string
	opts   FileOptions
	logger *slog.Logger

	mu      sync.Mutex
	written map[string]struct{}
	views   map[string]struct{}
}

var (
	_ ports.ArticleStore       = (*FileStore)(nil)
	_ ports.CategoryViewWriter = (*FileStore)(nil)
)

// NewFileStore creates dir if needed.
func NewFileStore(dir string, opts FileOptions, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if opts.FeedTitle == "" {
		opts.FeedTitle = "తెలుగు వార్తలు"
	}
	if opts.SiteURL == "" {
		opts.SiteURL = "/"
	}
	return &FileStore{
		dir:     dir,
		opts:    opts,
		logger:  logging.OrDiscard(log),
		written: make(map[string]struct{}),
		views:   make(map[string]struct{}),
	}, nil
}

// ReadAll returns the persisted collection; a missing file is an empty one.
func (s *FileStore) ReadAll(_ context.Context) ([]domain.Article, error) {
	var articles []domain.Article
	if err := s.readJSON(newsFile, &articles); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Article{}, nil
		}
		return nil, err
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	return articles, nil
}

// ReplaceAll swaps news.json (and news.xml when enabled) for the given set.
func (s *FileStore) ReplaceAll(_ context.Context, articles []domain.Article) error {
	if articles == nil {
		articles = []domain.Article{}
	}
	if err := s.writeJSON(newsFile, articles); err != nil {
		return err
	}
	if !s.opts.ExportRSS {
		return nil
	}

	rss, err := s.renderRSS(articles)
	if err != nil {
		return fmt.Errorf("render rss: %w", err)
	}
	return s.writeFile(rssFile, []byte(rss))
}

// WriteCategoryViews writes one <category>.json per view and removes the
// files of categories that no longer have one.
func (s *FileStore) WriteCategoryViews(_ context.Context, views []domain.CategoryView) error {
	current := make(map[string]struct{}, len(views))
	for _, view := range views {
		name := viewFile(view.Category)
		if err := s.writeJSON(name, view); err != nil {
			return err
		}
		current[name] = struct{}{}
	}

	s.mu.Lock()
	stale := make(map[string]struct{}, len(s.views)+len(domain.Categories))
	for name := range s.views {
		stale[name] = struct{}{}
	}
	for _, cat := range domain.Categories {
		stale[viewFile(cat)] = struct{}{}
	}
	for name := range current {
		delete(stale, name)
	}
	s.views = current
	for name := range stale {
		delete(s.written, name)
	}
	s.mu.Unlock()

	for name := range stale {
		err := os.Remove(filepath.Join(s.dir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove stale view %s: %w", name, err)
		}
		if err == nil {
			s.logger.Debug("stale view removed", "file", name)
		}
	}
	return nil
}

func viewFile(c domain.Category) string {
	return string(c) + ".json"
}

// ReadMeta returns domain.ErrNotFound until meta has been written once.
func (s *FileStore) ReadMeta(_ context.Context) (domain.Meta, error) {
	var meta domain.Meta
	if err := s.readJSON(metaFile, &meta); err != nil {
		return domain.Meta{}, err
	}
	return meta, nil
}

// WriteMeta stores meta, listing the data files this store has produced.
func (s *FileStore) WriteMeta(_ context.Context, meta domain.Meta) error {
	if len(meta.DataFiles) == 0 {
		meta.DataFiles = s.dataFiles()
	}
	return s.writeJSON(metaFile, meta)
}

// Dir is the directory holding the documents.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) dataFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := make([]string, 0, len(s.written)+1)
	for name := range s.written {
		files = append(files, name)
	}
	if _, ok := s.written[metaFile]; !ok {
		files = append(files, metaFile)
	}
	sort.Strings(files)
	return files
}

func (s *FileStore) readJSON(name string, dst any) error {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrCorrupt, name, err)
	}
	return nil
}

func (s *FileStore) writeJSON(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.writeFile(name, raw)
}

func (s *FileStore) writeFile(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}

	s.mu.Lock()
	s.written[name] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug("document written", "file", name, "bytes", len(data))
	return nil
}

// renderRSS prefers the Telugu fields and falls back to the source text.
func (s *FileStore) renderRSS(articles []domain.Article) (string, error) {
	updated := time.Now()
	if len(articles) > 0 && !articles[0].PublishedAt.IsZero() {
		updated = articles[0].PublishedAt
	}

	feed := &feeds.Feed{
		Title:       s.opts.FeedTitle,
		Link:        &feeds.Link{Href: s.opts.SiteURL},
		Description: "Latest news in Telugu",
		Created:     updated,
	}
	feed.Items = make([]*feeds.Item, 0, len(articles))
	for _, a := range articles {
		title := a.TitleTE
		if title == "" {
			title = a.Title
		}
		summary := a.SummaryTE
		if summary == "" {
			summary = a.Summary
		}
		item := &feeds.Item{
			Id:          a.ID,
			Title:       title,
			Link:        &feeds.Link{Href: a.URL},
			Description: summary,
			Author:      &feeds.Author{Name: a.Source},
			Created:     a.PublishedAt,
		}
		if a.HasImage() {
			item.Enclosure = &feeds.Enclosure{Url: *a.Image, Length: "0", Type: imageType(*a.Image)}
		}
		feed.Items = append(feed.Items, item)
	}
	return feed.ToRss()
}

func imageType(rawURL string) string {
	if t := mime.TypeByExtension(path.Ext(rawURL)); t != "" {
		return t
	}
	return "image/jpeg"
}
