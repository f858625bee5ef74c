package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"TeluguNews/internal/config"
	"TeluguNews/internal/domain"
	"TeluguNews/internal/infrastructure/storage"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeTexts struct {
	mu       sync.Mutex
	calls    int
	fail     map[string]bool
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (f *fakeTexts) TranslateText(_ context.Context, text, _ string) (string, bool) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.calls++
	failed := f.fail[text]
	f.mu.Unlock()

	if text == "" {
		return "", true
	}
	if failed {
		return text, false
	}
	return "te:" + text, true
}

func newTestTranslator(texts *fakeTexts) *Translator {
	cfg := config.Default().Translation
	cfg.Stagger = 0
	return NewTranslator(texts, cfg, nil)
}

func article(id string, at time.Time, cat domain.Category) domain.Article {
	return domain.Article{
		ID:          id,
		Title:       "title " + id,
		Summary:     "summary " + id,
		URL:         "https://news.example/" + id,
		PublishedAt: at,
		Source:      "Source " + string(cat),
		Category:    cat,
		Language:    "en",
	}
}

func TestDedupFirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	first := article("a", t0, domain.CategoryIndia)
	dup := article("a", t0.Add(time.Hour), domain.CategorySports)
	in := []domain.Article{first, article("b", t0, domain.CategoryIndia), dup, article("c", t0, domain.CategoryTech)}

	out := Dedup(in)
	if len(out) != 3 {
		t.Fatalf("expected 3 unique articles, got %d", len(out))
	}
	if out[0].Category != domain.CategoryIndia || out[1].ID != "b" || out[2].ID != "c" {
		t.Fatalf("order or winner wrong: %+v", out)
	}

	again := Dedup(out)
	for i := range out {
		if again[i].ID != out[i].ID {
			t.Fatal("dedup of a unique list must be the identity")
		}
	}
}

func TestTranslateArticleTeluguIsNoop(t *testing.T) {
	t.Parallel()

	texts := &fakeTexts{}
	a := article("te", t0, domain.CategoryTelangana)
	a.Language = domain.TeluguLanguage
	a.Title = "బడ్జెట్"
	a.Summary = "వివరాలు"
	a.Translated = true

	out := newTestTranslator(texts).TranslateArticle(context.Background(), a)
	if out.TitleTE != "బడ్జెట్" || out.SummaryTE != "వివరాలు" || out.Translated {
		t.Fatalf("unexpected result %+v", out)
	}
	if texts.calls != 0 {
		t.Fatalf("no translation call expected, got %d", texts.calls)
	}
}

func TestTranslateArticleMarksFallback(t *testing.T) {
	t.Parallel()

	a := article("x", t0, domain.CategoryIndia)
	texts := &fakeTexts{fail: map[string]bool{a.Summary: true}}

	out := newTestTranslator(texts).TranslateArticle(context.Background(), a)
	if !out.Translated || !out.TranslationFallback {
		t.Fatalf("expected translated with fallback, got %+v", out)
	}
	if out.TitleTE != "te:"+a.Title || out.SummaryTE != a.Summary {
		t.Fatalf("unexpected fields %q / %q", out.TitleTE, out.SummaryTE)
	}

	clean := newTestTranslator(&fakeTexts{}).TranslateArticle(context.Background(), a)
	if !clean.Translated || clean.TranslationFallback {
		t.Fatalf("expected clean translation, got %+v", clean)
	}
}

func TestTranslateAllBoundsConcurrency(t *testing.T) {
	t.Parallel()

	texts := &fakeTexts{delay: 10 * time.Millisecond}
	var in []domain.Article
	for i := 0; i < 12; i++ {
		in = append(in, article(fmt.Sprint(i), t0, domain.CategoryIndia))
	}
	te := article("te", t0, domain.CategoryTelangana)
	te.Language = domain.TeluguLanguage
	in = append(in, te)

	out, stats := newTestTranslator(texts).TranslateAll(context.Background(), in)
	if len(out) != len(in) {
		t.Fatalf("expected %d articles, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i].ID != in[i].ID {
			t.Fatal("order must be preserved")
		}
	}
	if stats.Translated != 12 || stats.Skipped != 1 || stats.Fallbacks != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	// three articles, two fields each
	if peak := texts.peak.Load(); peak > 6 {
		t.Fatalf("expected at most 6 concurrent field translations, saw %d", peak)
	}
}

func TestTranslateAllStaggersAdmission(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Translation
	cfg.Stagger = 150 * time.Millisecond
	tr := NewTranslator(&fakeTexts{}, cfg, nil)

	var (
		mu     sync.Mutex
		delays []time.Duration
	)
	tr.now = func() time.Time { return t0 }
	tr.sleep = func(_ context.Context, d time.Duration) error {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
		return nil
	}

	te := article("te", t0, domain.CategoryTelangana)
	te.Language = domain.TeluguLanguage
	in := []domain.Article{article("a", t0, domain.CategoryIndia), te, article("b", t0, domain.CategoryIndia), article("c", t0, domain.CategoryIndia)}
	tr.TranslateAll(context.Background(), in)

	want := []time.Duration{0, 150 * time.Millisecond, 300 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("expected %d waits, got %v", len(want), delays)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("wait %d = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestMergeRetainsHistory(t *testing.T) {
	t.Parallel()

	existing := []domain.Article{article("old1", t0, domain.CategoryIndia), article("old2", t0.Add(-time.Hour), domain.CategorySports)}
	updated := article("old1", t0, domain.CategoryIndia)
	updated.TitleTE = "new"
	fresh := []domain.Article{updated, article("new", t0.Add(time.Hour), domain.CategoryTech)}

	merged := Merge(existing, fresh)
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged articles, got %d", len(merged))
	}
	byID := map[string]domain.Article{}
	for _, a := range merged {
		byID[a.ID] = a
	}
	if byID["old1"].TitleTE != "new" {
		t.Fatal("fresh article must overwrite the stored one")
	}
	if byID["old2"].Title != existing[1].Title || byID["old2"].Category != domain.CategorySports {
		t.Fatal("stored article absent from batch must be untouched")
	}
}

func TestSortByRecencyBreaksTiesByID(t *testing.T) {
	t.Parallel()

	list := []domain.Article{
		article("b", t0, domain.CategoryIndia),
		article("old", t0.Add(-time.Minute), domain.CategoryIndia),
		article("a", t0, domain.CategoryIndia),
		article("new", t0.Add(time.Minute), domain.CategoryIndia),
	}
	SortByRecency(list)

	got := []string{list[0].ID, list[1].ID, list[2].ID, list[3].ID}
	if strings.Join(got, ",") != "new,a,b,old" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestPersistBoundsAndSummarizes(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	ctx := context.Background()
	var seed []domain.Article
	for i := 0; i < 4; i++ {
		seed = append(seed, article(fmt.Sprintf("s%d", i), t0.Add(-time.Duration(i+1)*time.Hour), domain.CategoryIndia))
	}
	if err := store.ReplaceAll(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	p := NewPersister(store, PersistOptions{MaxTotal: 5, MaxPerCategory: 2, FeedsCount: 19, Location: ist}, nil)
	p.now = func() time.Time { return t0 }

	fresh := []domain.Article{
		article("f1", t0, domain.CategorySports),
		article("f2", t0.Add(time.Minute), domain.CategoryTech),
		article("s0", t0.Add(-time.Hour), domain.CategoryIndia),
	}
	meta, err := p.Persist(ctx, fresh)
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}

	stored, _ := store.ReadAll(ctx)
	if len(stored) != 5 {
		t.Fatalf("expected bound of 5, got %d", len(stored))
	}
	seen := map[string]bool{}
	for i, a := range stored {
		if seen[a.ID] {
			t.Fatalf("duplicate id %s", a.ID)
		}
		seen[a.ID] = true
		if i > 0 && stored[i-1].PublishedAt.Before(a.PublishedAt) {
			t.Fatal("collection must be newest first")
		}
	}
	if seen["s3"] {
		t.Fatal("oldest article must be evicted")
	}

	if meta.TotalArticles != 5 || meta.FeedsCount != 19 {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if strings.Join(meta.Categories, ",") != "india,sports,tech" {
		t.Fatalf("unexpected categories %v", meta.Categories)
	}
	if meta.LastUpdatedLocal != "01/03/2026, 5:30:00 pm" {
		t.Fatalf("unexpected local time %q", meta.LastUpdatedLocal)
	}
	if stored, err := store.ReadMeta(ctx); err != nil || stored.TotalArticles != 5 {
		t.Fatalf("meta not written: %+v %v", stored, err)
	}

	india, ok := store.View(domain.CategoryIndia)
	if !ok || india.Count != 2 || india.Articles[0].ID != "s0" {
		t.Fatalf("unexpected india view %+v", india)
	}
}

type faultyStore struct {
	*storage.MemoryStore
	readErr    error
	replaceErr error
	metaWrites atomic.Int32
}

func (f *faultyStore) ReadAll(ctx context.Context) ([]domain.Article, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.MemoryStore.ReadAll(ctx)
}

func (f *faultyStore) ReplaceAll(ctx context.Context, articles []domain.Article) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	return f.MemoryStore.ReplaceAll(ctx, articles)
}

func (f *faultyStore) WriteMeta(ctx context.Context, meta domain.Meta) error {
	f.metaWrites.Add(1)
	return f.MemoryStore.WriteMeta(ctx, meta)
}

func TestPersistFailureHandling(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fresh := []domain.Article{article("a", t0, domain.CategoryIndia)}

	corrupt := &faultyStore{MemoryStore: storage.NewMemoryStore(), readErr: fmt.Errorf("%w: news.json", domain.ErrCorrupt)}
	if _, err := NewPersister(corrupt, PersistOptions{MaxTotal: 10}, nil).Persist(ctx, fresh); err != nil {
		t.Fatalf("corrupt collection must be treated as empty, got %v", err)
	}

	down := &faultyStore{MemoryStore: storage.NewMemoryStore(), readErr: errors.New("connection refused")}
	if _, err := NewPersister(down, PersistOptions{MaxTotal: 10}, nil).Persist(ctx, fresh); err == nil {
		t.Fatal("unreachable store must fail the stage")
	}

	readOnly := &faultyStore{MemoryStore: storage.NewMemoryStore(), replaceErr: errors.New("disk full")}
	if _, err := NewPersister(readOnly, PersistOptions{MaxTotal: 10}, nil).Persist(ctx, fresh); err == nil {
		t.Fatal("replace failure must fail the stage")
	}
	if readOnly.metaWrites.Load() != 0 {
		t.Fatal("meta must not be written after a failed replace")
	}
}
