package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"NewsIntel/internal/config"
	"NewsIntel/internal/domain"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Test Feed</title>
<item>
<title>Tea exports hit record growth</title>
<link>https://news.example/tea-record</link>
<description>Plantation companies report a record harvest.</description>
<pubDate>Sun, 01 Mar 2026 06:00:00 GMT</pubDate>
</item>
</channel>
</rss>`

func testConfig(t *testing.T, sources ...config.SourceConfig) config.Config {
	t.Helper()
	cfg := config.Config{
		Database:  config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "app.db")},
		Logging:   config.LoggingConfig{Level: "error"},
		Scheduler: config.SchedulerConfig{Interval: config.Duration(time.Minute)},
		Collector: config.CollectorConfig{
			MaxConcurrency:        2,
			SourceTimeout:         config.Duration(5 * time.Second),
			MaxArticlesPerSource:  10,
			DegradedAfterFailures: 3,
			BackoffFactor:         2,
			MaxBackoffInterval:    config.Duration(time.Hour),
		},
		Classifier: config.ClassifierConfig{
			HoldoutFraction:        0.2,
			MinExamplesPerCategory: 4,
			Smoothing:              0.1,
		},
		Signals: config.SignalConfig{
			MinSeverity: 2,
			RiskLexicon: map[string]float64{"strike": 5, "halts": 3},
		},
		Sentiment: config.SentimentConfig{
			Positive: map[string]float64{"growth": 1, "record": 1},
			Negative: map[string]float64{"strike": 1},
		},
		Categories: config.CategoryTaxonomy{
			"finance":     {"bank": 2, "rates": 1.5},
			"agriculture": {"tea": 2, "harvest": 1.5},
		},
		Sources: sources,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return cfg
}

func newTestApp(t *testing.T, sources ...config.SourceConfig) *Application {
	t.Helper()
	application, err := New(testConfig(t, sources...), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { application.Close() })
	return application
}

func feedSource(t *testing.T, id string) config.SourceConfig {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testFeed))
	}))
	t.Cleanup(server.Close)
	return config.SourceConfig{ID: id, Name: id, Endpoint: server.URL, Enabled: true}
}

func downSource(t *testing.T, id string) config.SourceConfig {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	return config.SourceConfig{ID: id, Name: id, Endpoint: server.URL, Enabled: true}
}

func TestRunOnceSuccess(t *testing.T) {
	t.Parallel()

	application := newTestApp(t, feedSource(t, "healthy"))
	if code := application.RunOnce(context.Background()); code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d", code, ExitSuccess)
	}

	articles, err := application.store.ArticlesByWindow(context.Background(), domain.ArticleQuery{})
	if err != nil {
		t.Fatalf("ArticlesByWindow() error: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("articles = %d, want 1", len(articles))
	}
	// The bootstrap model trained on the taxonomy should label this one.
	if articles[0].Category != "agriculture" {
		t.Errorf("category = %q, want agriculture", articles[0].Category)
	}
	if articles[0].SentimentScore <= 0 {
		t.Errorf("sentiment = %v, want positive", articles[0].SentimentScore)
	}
}

func TestRunOnceSkipsDisabledSources(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(testFeed))
	}))
	t.Cleanup(server.Close)
	disabled := config.SourceConfig{ID: "paused", Name: "paused", Endpoint: server.URL, Enabled: false}

	application := newTestApp(t, feedSource(t, "healthy"), disabled)
	if code := application.RunOnce(context.Background()); code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d", code, ExitSuccess)
	}

	if hits.Load() != 0 {
		t.Errorf("disabled source fetched %d times", hits.Load())
	}
	states, err := application.store.SourceStates(context.Background())
	if err != nil {
		t.Fatalf("SourceStates() error: %v", err)
	}
	if _, ok := states["paused"]; ok {
		t.Error("disabled source acquired collection state")
	}
}

func TestRunOncePartial(t *testing.T) {
	t.Parallel()

	application := newTestApp(t, feedSource(t, "healthy"), downSource(t, "broken"))
	if code := application.RunOnce(context.Background()); code != ExitPartial {
		t.Fatalf("exit code = %d, want %d", code, ExitPartial)
	}

	states, err := application.store.SourceStates(context.Background())
	if err != nil {
		t.Fatalf("SourceStates() error: %v", err)
	}
	if states["broken"].Failures != 1 {
		t.Errorf("broken failures = %d, want 1", states["broken"].Failures)
	}
}

func TestRunOnceTotalFailure(t *testing.T) {
	t.Parallel()

	application := newTestApp(t, feedSource(t, "healthy"))
	application.store.Close()

	if code := application.RunOnce(context.Background()); code != ExitTotalFailure {
		t.Fatalf("exit code = %d, want %d", code, ExitTotalFailure)
	}
}

func TestNewRestoresActiveSnapshot(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, feedSource(t, "healthy"))
	first, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := first.Retrain(context.Background()); err != nil {
		t.Fatalf("Retrain() error: %v", err)
	}
	trained := first.model.Load()
	first.Close()

	second, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("reopen New() error: %v", err)
	}
	defer second.Close()

	restored := second.model.Load()
	if restored == nil {
		t.Fatal("active snapshot not restored on startup")
	}
	if restored.Version != trained.Version {
		t.Errorf("restored version = %s, want %s", restored.Version, trained.Version)
	}
}
