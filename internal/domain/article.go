package domain

import (
	"errors"
	"time"
)

// TeluguLanguage is the language code of the translation target.
const TeluguLanguage = "te"

var (
	// ErrNotFound reports that a store holds nothing under the requested key yet.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt reports that persisted data exists but cannot be decoded.
	ErrCorrupt = errors.New("corrupt payload")
)

// Article is the single normalized news item flowing through the pipeline.
type Article struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Summary             string    `json:"summary"`
	TitleTE             string    `json:"title_te"`
	SummaryTE           string    `json:"summary_te"`
	URL                 string    `json:"url"`
	Image               *string   `json:"image"`
	PublishedAt         time.Time `json:"published_at"`
	Source              string    `json:"source"`
	Category            Category  `json:"category"`
	Language            string    `json:"language"`
	Translated          bool      `json:"translated"`
	TranslationFallback bool      `json:"translation_fallback,omitempty"`
}

// HasImage reports whether a non-empty image URL is attached.
func (a Article) HasImage() bool {
	return a.Image != nil && *a.Image != ""
}

// SetImage attaches url as the hero image; an empty url clears it.
func (a *Article) SetImage(url string) {
	if url == "" {
		a.Image = nil
		return
	}
	a.Image = &url
}

// FeedSource is one entry of the static feed registry.
type FeedSource struct {
	URL      string   `yaml:"url"`
	Category Category `yaml:"category"`
	Source   string   `yaml:"source"`
	Language string   `yaml:"language"`
}

// Meta summarizes the persisted collection for readers.
type Meta struct {
	LastUpdated      time.Time `json:"last_updated"`
	LastUpdatedLocal string    `json:"last_updated_local,omitempty"`
	TotalArticles    int       `json:"total_articles"`
	Categories       []string  `json:"categories"`
	Sources          []string  `json:"sources"`
	FeedsCount       int       `json:"feeds_count,omitempty"`
	DataFiles        []string  `json:"data_files,omitempty"`
}

// CategoryView is the derived newest-first slice of one category.
type CategoryView struct {
	Category  Category  `json:"category"`
	UpdatedAt time.Time `json:"updated_at"`
	Count     int       `json:"count"`
	Articles  []Article `json:"articles"`
}
