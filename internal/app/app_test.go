package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"TeluguNews/internal/config"
	"TeluguNews/internal/domain"
	"TeluguNews/internal/logging"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>T</title>
  <item><title>హైదరాబాద్ మెట్రో</title><link>https://t.example/1</link><description>కొత్త మార్గం</description></item>
</channel></rss>`

func testConfig(t *testing.T, feedURL string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Feeds = []domain.FeedSource{{URL: feedURL, Category: domain.CategoryTelangana, Source: "Test", Language: "te"}}
	cfg.Storage.Dir = t.TempDir()
	return cfg
}

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedXML))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunWritesFileTree(t *testing.T) {
	t.Parallel()

	server := feedServer(t)
	cfg := testConfig(t, server.URL)

	application, err := New(context.Background(), cfg, logging.OrDiscard(nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer application.Close()

	if err := application.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, name := range []string{"news.json", "telangana.json", "meta.json", "news.xml"} {
		if _, err := os.Stat(filepath.Join(cfg.Storage.Dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestRunWithSQLBackend(t *testing.T) {
	t.Parallel()

	server := feedServer(t)
	cfg := testConfig(t, server.URL)
	cfg.Storage.Backend = config.BackendSQL
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = filepath.Join(t.TempDir(), "news.db")

	application, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer application.Close()

	if err := application.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	server := feedServer(t)
	cfg := testConfig(t, server.URL)
	cfg.Storage.Backend = config.BackendMemory
	cfg.Scheduler.Interval = time.Hour

	application, err := New(context.Background(), cfg, logging.OrDiscard(nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
