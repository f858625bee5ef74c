package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"TeluguNews/internal/domain"
	"TeluguNews/pkg/logger"
)

const (
	defaultTimezone   = "Asia/Kolkata"
	configPathEnv     = "TELUGU_NEWS_CONFIG"
	storageDSNEnv     = "TELUGU_NEWS_STORAGE_DSN"
	logLevelEnv       = "LOG_LEVEL"
	chatGPTAPIKeyEnv  = "CHATGPT_API_KEY"
	myMemoryEmailEnv  = "MYMEMORY_EMAIL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQL    = "sql"
	BackendMemory = "memory"
)

// Validation errors.
var (
	ErrNoFeeds             = errors.New("at least one feed is required")
	ErrFeedMissingURL      = errors.New("feed url is required")
	ErrFeedMissingSource   = errors.New("feed source label is required")
	ErrFeedUnknownCategory = errors.New("feed category is not a known category")
	ErrInvalidMaxTotal     = errors.New("storage.maxTotal must be at least 1")
	ErrInvalidMaxPerFeed   = errors.New("fetch.maxPerFeed must be at least 1")
	ErrInvalidConcurrency  = errors.New("concurrency settings must be at least 1")
	ErrUnknownBackend      = errors.New("storage.backend must be one of: file, sql, memory")
	ErrMissingDSN          = errors.New("storage.dsn is required for the sql backend")
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig       `yaml:"logging"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Fetch         FetchConfig         `yaml:"fetch"`
	Enrichment    EnrichmentConfig    `yaml:"enrichment"`
	Translation   TranslationConfig   `yaml:"translation"`
	Storage       StorageConfig       `yaml:"storage"`
	Notifications NotificationConfig  `yaml:"notifications"`
	Feeds         []domain.FeedSource `yaml:"feeds"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines how often the pipeline runs in watch mode.
type SchedulerConfig struct {
	Interval time.Duration  `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FetchConfig tunes the feed fetcher.
type FetchConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	MaxPerFeed     int           `yaml:"maxPerFeed"`
	Concurrency    int           `yaml:"concurrency"`
	UserAgent      string        `yaml:"userAgent"`
	DetectLanguage bool          `yaml:"detectLanguage"`
}

// EnrichmentConfig tunes article page scraping for short summaries.
type EnrichmentConfig struct {
	Enabled            bool          `yaml:"enabled"`
	MinSummaryLength   int           `yaml:"minSummaryLength"`
	HostSpacing        time.Duration `yaml:"hostSpacing"`
	Timeout            time.Duration `yaml:"timeout"`
	Concurrency        int           `yaml:"concurrency"`
	MaxSummaryLength   int           `yaml:"maxSummaryLength"`
	MinExtractedLength int           `yaml:"minExtractedLength"`
	MaxParagraphs      int           `yaml:"maxParagraphs"`
}

// TranslationConfig describes the provider chain and its admission limits.
type TranslationConfig struct {
	TargetLanguage string         `yaml:"targetLanguage"`
	Concurrency    int            `yaml:"concurrency"`
	Stagger        time.Duration  `yaml:"stagger"`
	Google         ProviderConfig `yaml:"google"`
	MyMemory       ProviderConfig `yaml:"myMemory"`
	ChatGPT        ChatGPTConfig  `yaml:"chatgpt"`
}

// ProviderConfig holds the endpoint and limits of one HTTP translation provider.
type ProviderConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxChars    int           `yaml:"maxChars"`
	MinInterval time.Duration `yaml:"minInterval"`
	Email       string        `yaml:"email"`
}

// ChatGPTConfig defines how to contact an OpenAI-compatible chat API.
type ChatGPTConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"apiKey"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxChars     int           `yaml:"maxChars"`
}

// StorageConfig selects and bounds the persistence backend.
type StorageConfig struct {
	Backend        string `yaml:"backend"`
	Dir            string `yaml:"dir"`
	Driver         string `yaml:"driver"`
	DSN            string `yaml:"dsn"`
	MaxTotal       int    `yaml:"maxTotal"`
	MaxPerCategory int    `yaml:"maxPerCategory"`
	ExportRSS      bool   `yaml:"exportRSS"`
	SiteURL        string `yaml:"siteURL"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both token and chat are configured.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

var bootLog = logger.New("config")

// Load reads YAML configuration (if present) and applies environment overrides.
// An empty path falls back to the TELUGU_NEWS_CONFIG variable.
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if fileCfg, err := readFile(path); err != nil {
			bootLog.Printf("%v (falling back to defaults)", err)
		} else {
			cfg = fileCfg
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if err := cfg.Validate(); err != nil {
		bootLog.Printf("invalid configuration: %v (falling back to defaults)", err)
		cfg = Default()
		cfg.applyEnvOverrides()
		cfg.bindTimezone()
	}

	return cfg
}

// readFile decodes path over the defaults so absent keys keep default values.
func readFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	if len(cfg.Feeds) == 0 {
		cfg.Feeds = DefaultFeeds()
	}
	for i := range cfg.Feeds {
		if cfg.Feeds[i].Language == "" {
			cfg.Feeds[i].Language = "en"
		}
	}
	return cfg, nil
}

// Validate reports every invalid setting joined into one error.
func (c Config) Validate() error {
	var errs []error

	if len(c.Feeds) == 0 {
		errs = append(errs, ErrNoFeeds)
	}
	for _, feed := range c.Feeds {
		if feed.URL == "" {
			errs = append(errs, ErrFeedMissingURL)
		}
		if feed.Source == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrFeedMissingSource, feed.URL))
		}
		if !feed.Category.Valid() {
			errs = append(errs, fmt.Errorf("%w: %q", ErrFeedUnknownCategory, feed.Category))
		}
	}

	if c.Storage.MaxTotal < 1 {
		errs = append(errs, ErrInvalidMaxTotal)
	}
	if c.Fetch.MaxPerFeed < 1 {
		errs = append(errs, ErrInvalidMaxPerFeed)
	}
	if c.Fetch.Concurrency < 1 || c.Translation.Concurrency < 1 || c.Enrichment.Concurrency < 1 {
		errs = append(errs, ErrInvalidConcurrency)
	}

	switch c.Storage.Backend {
	case BackendFile, BackendMemory:
	case BackendSQL:
		if c.Storage.DSN == "" {
			errs = append(errs, ErrMissingDSN)
		}
	default:
		errs = append(errs, ErrUnknownBackend)
	}

	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(storageDSNEnv); v != "" {
		c.Storage.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(chatGPTAPIKeyEnv); v != "" {
		c.Translation.ChatGPT.APIKey = v
	}

	if v := os.Getenv(myMemoryEmailEnv); v != "" {
		c.Translation.MyMemory.Email = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		bootLog.Printf("unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, err = time.LoadLocation(defaultTimezone)
		if err != nil {
			loc = time.UTC
		}
	}
	c.Scheduler.location = loc
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{Interval: 30 * time.Minute, Timezone: defaultTimezone},
		Fetch: FetchConfig{
			Timeout:     10 * time.Second,
			MaxPerFeed:  15,
			Concurrency: 1,
			UserAgent:   "TeluguNews/1.0 (+rss harvester)",
		},
		Enrichment: EnrichmentConfig{
			Enabled:            false,
			MinSummaryLength:   50,
			HostSpacing:        2500 * time.Millisecond,
			Timeout:            12 * time.Second,
			Concurrency:        2,
			MaxSummaryLength:   3000,
			MinExtractedLength: 20,
			MaxParagraphs:      15,
		},
		Translation: TranslationConfig{
			TargetLanguage: domain.TeluguLanguage,
			Concurrency:    3,
			Stagger:        150 * time.Millisecond,
			Google: ProviderConfig{
				Endpoint: "https://translate.googleapis.com/translate_a/single",
				Timeout:  8 * time.Second,
				MaxChars: 1000,
			},
			MyMemory: ProviderConfig{
				Endpoint:    "https://api.mymemory.translated.net/get",
				Timeout:     8 * time.Second,
				MaxChars:    500,
				MinInterval: 500 * time.Millisecond,
			},
			ChatGPT: ChatGPTConfig{
				Endpoint:     "https://api.openai.com/v1/chat/completions",
				Model:        "gpt-4o-mini",
				SystemPrompt: "Translate the user's news text into Telugu. Reply with the translation only.",
				Timeout:      20 * time.Second,
				MaxChars:     4000,
			},
		},
		Storage: StorageConfig{
			Backend:        BackendFile,
			Dir:            "data",
			Driver:         "sqlite",
			MaxTotal:       500,
			MaxPerCategory: 50,
			ExportRSS:      true,
		},
		Feeds: DefaultFeeds(),
	}
}
