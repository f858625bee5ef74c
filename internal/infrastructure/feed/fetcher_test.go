package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TeluguNews/internal/config"
	"TeluguNews/internal/domain"
)

const richFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
  xmlns:media="http://search.yahoo.com/mrss/"
  xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd"
  xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Test Feed</title>
    <item>
      <title><![CDATA[<b>Budget</b> &amp; taxes]]></title>
      <link>https://a.example/1</link>
      <description><![CDATA[<p>Finance minister   presents budget.</p>]]></description>
      <pubDate>Mon, 01 Jan 2024 12:00:00 GMT</pubDate>
      <media:content url="https://img.example/content.jpg" medium="image"/>
      <media:thumbnail url="https://img.example/thumb.jpg"/>
    </item>
    <item>
      <title>Thumbnail only</title>
      <link>https://a.example/2</link>
      <description>Second</description>
      <media:thumbnail url="https://img.example/thumb2.jpg"/>
    </item>
    <item>
      <title>Enclosure</title>
      <link>https://a.example/3</link>
      <enclosure url="https://img.example/enc.jpg" type="image/jpeg" length="10"/>
    </item>
    <item>
      <title>Inline image</title>
      <link>https://a.example/4</link>
      <content:encoded><![CDATA[<div><img src="https://img.example/inline.jpg"/> body</div>]]></content:encoded>
    </item>
    <item>
      <title>   </title>
      <link>https://a.example/5</link>
    </item>
  </channel>
</rss>`

const itunesFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>Podcast</title>
    <item>
      <title>Episode</title>
      <link>https://p.example/1</link>
      <description><![CDATA[<p><img src="https://img.example/inline-ep.jpg"/> notes</p>]]></description>
      <itunes:image href="https://img.example/itunes.jpg"/>
    </item>
    <item>
      <title>Inline only</title>
      <link>https://p.example/2</link>
      <description><![CDATA[<img src="https://img.example/desc.jpg"> text]]></description>
    </item>
  </channel>
</rss>`

const simpleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>B</title>
  <item><title>బడ్జెట్</title><link>https://b.example/2</link><description>వివరాలు</description></item>
</channel></rss>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rich":
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(richFeed))
		case "/itunes":
			_, _ = w.Write([]byte(itunesFeed))
		case "/simple":
			_, _ = w.Write([]byte(simpleFeed))
		case "/garbage":
			_, _ = w.Write([]byte("this is not a feed"))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig() config.FetchConfig {
	cfg := config.Default().Fetch
	cfg.Timeout = 5 * time.Second
	return cfg
}

func TestFetchAllMapsItems(t *testing.T) {
	t.Parallel()

	server := newFeedServer(t)
	feeds := []domain.FeedSource{
		{URL: server.URL + "/rich", Category: domain.CategoryBusiness, Source: "A", Language: "en"},
	}

	fetcher := NewFetcher(server.Client(), feeds, testConfig(), nil)
	fixed := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	fetcher.now = func() time.Time { return fixed }

	articles, err := fetcher.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(articles) != 4 {
		t.Fatalf("expected 4 articles (blank title dropped), got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "Budget & taxes" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.Summary != "Finance minister presents budget." {
		t.Fatalf("unexpected summary: %q", first.Summary)
	}
	if first.ID != domain.NewID("https://a.example/1", "Budget & taxes") {
		t.Fatalf("unexpected id: %s", first.ID)
	}
	if !first.PublishedAt.Equal(time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published_at: %v", first.PublishedAt)
	}
	if first.Translated || first.TitleTE != "" || first.SummaryTE != "" {
		t.Fatalf("fresh article must not carry translation: %+v", first)
	}
	if first.Category != domain.CategoryBusiness || first.Source != "A" || first.Language != "en" {
		t.Fatalf("source fields not copied: %+v", first)
	}

	wantImages := []string{
		"https://img.example/content.jpg",
		"https://img.example/thumb2.jpg",
		"https://img.example/enc.jpg",
		"https://img.example/inline.jpg",
	}
	for i, want := range wantImages {
		if !articles[i].HasImage() || *articles[i].Image != want {
			t.Errorf("article %d: expected image %s, got %v", i, want, articles[i].Image)
		}
	}

	if !articles[1].PublishedAt.Equal(fixed) {
		t.Fatalf("missing pubDate should default to fetch time, got %v", articles[1].PublishedAt)
	}
}

func TestFetchAllPrefersITunesImageOverInline(t *testing.T) {
	t.Parallel()

	server := newFeedServer(t)
	feeds := []domain.FeedSource{
		{URL: server.URL + "/itunes", Category: domain.CategoryTech, Source: "P", Language: "en"},
	}

	articles, err := NewFetcher(server.Client(), feeds, testConfig(), nil).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	for i, want := range []string{"https://img.example/itunes.jpg", "https://img.example/desc.jpg"} {
		if !articles[i].HasImage() || *articles[i].Image != want {
			t.Errorf("article %d: expected image %s, got %v", i, want, articles[i].Image)
		}
	}
}

func TestFetchAllCapsPerFeed(t *testing.T) {
	t.Parallel()

	server := newFeedServer(t)
	cfg := testConfig()
	cfg.MaxPerFeed = 2

	fetcher := NewFetcher(server.Client(), []domain.FeedSource{
		{URL: server.URL + "/rich", Category: domain.CategoryIndia, Source: "A", Language: "en"},
	}, cfg, nil)

	articles, err := fetcher.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
}

func TestFetchAllSkipsFailingSources(t *testing.T) {
	t.Parallel()

	server := newFeedServer(t)
	cfg := testConfig()
	cfg.Concurrency = 3

	fetcher := NewFetcher(server.Client(), []domain.FeedSource{
		{URL: server.URL + "/broken", Category: domain.CategoryIndia, Source: "Down", Language: "en"},
		{URL: server.URL + "/garbage", Category: domain.CategoryIndia, Source: "Junk", Language: "en"},
		{URL: server.URL + "/simple", Category: domain.CategoryTelangana, Source: "B", Language: "te"},
	}, cfg, nil)

	articles, err := fetcher.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected only the healthy source, got %d", len(articles))
	}
	if articles[0].Title != "బడ్జెట్" || articles[0].Language != domain.TeluguLanguage {
		t.Fatalf("unexpected article: %+v", articles[0])
	}
	if articles[0].HasImage() {
		t.Fatalf("expected no image, got %v", *articles[0].Image)
	}
}

type scriptDetector struct{}

func (scriptDetector) IsTelugu(text string) bool {
	return strings.ContainsRune(text, 'బ')
}

func TestFetchAllDetectsTeluguItems(t *testing.T) {
	t.Parallel()

	server := newFeedServer(t)
	fetcher := NewFetcher(server.Client(), []domain.FeedSource{
		{URL: server.URL + "/simple", Category: domain.CategoryIndia, Source: "Mixed", Language: "en"},
	}, testConfig(), nil).WithDetector(scriptDetector{})

	articles, err := fetcher.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(articles) != 1 || articles[0].Language != domain.TeluguLanguage {
		t.Fatalf("expected detected telugu article, got %+v", articles)
	}
}

func TestFetchAllCancelled(t *testing.T) {
	t.Parallel()

	server := newFeedServer(t)
	fetcher := NewFetcher(server.Client(), []domain.FeedSource{
		{URL: server.URL + "/simple", Category: domain.CategoryIndia, Source: "B", Language: "te"},
	}, testConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fetcher.FetchAll(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
