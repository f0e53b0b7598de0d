package usecase

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"NewsIntel/internal/dedup"
	"NewsIntel/internal/domain"
	"NewsIntel/internal/infrastructure/storage"
)

func seedArticle(t *testing.T, store *storage.Store, sourceID, title, body, category string, sentiment float64, at time.Time) {
	t.Helper()
	art := domain.Article{
		SourceID:       sourceID,
		URL:            "https://" + sourceID + ".example/" + title,
		Title:          title,
		Body:           body,
		PublishedAt:    at,
		CollectedAt:    at,
		Fingerprint:    dedup.Fingerprint(title, body),
		Category:       category,
		SentimentScore: sentiment,
	}
	if _, _, err := store.InsertArticle(context.Background(), art); err != nil {
		t.Fatalf("seed article: %v", err)
	}
}

func TestTrendingTopics(t *testing.T) {
	t.Parallel()

	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	at := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	seedArticle(t, store, "mirror", "Port strike disrupts exports", "The port strike continues.", "infrastructure", -0.4, at)
	seedArticle(t, store, "derana", "Strike spreads to the airport", "Port workers join the strike.", "infrastructure", -0.3, at)
	seedArticle(t, store, "mirror", "Tea prices climb", "Auction demand is strong.", "agriculture", 0.5, at)
	// Outside the window.
	seedArticle(t, store, "mirror", "Old strike story", "A strike from last week.", "infrastructure", 0, at.Add(-48*time.Hour))

	analytics := NewAnalytics(store)
	topics, err := analytics.TrendingTopics(context.Background(), at.Add(-time.Hour), 3, 10)
	if err != nil {
		t.Fatalf("TrendingTopics() error: %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("topics = %+v, want strike and port above threshold", topics)
	}
	if topics[0].Term != "strike" || topics[0].Count != 4 {
		t.Errorf("top topic = %+v, want strike with 4 mentions", topics[0])
	}
	if topics[1].Term != "port" || topics[1].Count != 3 {
		t.Errorf("second topic = %+v, want port with 3 mentions", topics[1])
	}

	// Short tokens never trend even when frequent.
	topics, err = analytics.TrendingTopics(context.Background(), at.Add(-time.Hour), 2, 10)
	if err != nil {
		t.Fatalf("TrendingTopics() error: %v", err)
	}
	for _, topic := range topics {
		if len(topic.Term) < 4 {
			t.Errorf("short term %q should be excluded", topic.Term)
		}
	}
}

func TestVolumeSpikes(t *testing.T) {
	t.Parallel()

	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	asOf := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	// Steady baseline, one finance article per hour for the previous day.
	for i := 0; i < 24; i++ {
		at := asOf.Add(-time.Duration(i+1)*time.Hour - 30*time.Minute)
		seedArticle(t, store, "mirror", "Hourly market note "+at.Format("15:04"), "Routine update.", "finance", 0, at)
	}
	// Burst in the most recent hour.
	for i := 0; i < 6; i++ {
		at := asOf.Add(-30 * time.Minute)
		seedArticle(t, store, "derana", "Bank collapse update "+string(rune('a'+i)), "Developing story.", "finance", -0.5, at)
	}
	seedArticle(t, store, "derana", "Tea auction opens", "Normal session.", "agriculture", 0.2, asOf.Add(-30*time.Minute))

	analytics := NewAnalytics(store)
	spikes, err := analytics.VolumeSpikes(context.Background(), asOf, 2, 5)
	if err != nil {
		t.Fatalf("VolumeSpikes() error: %v", err)
	}
	if len(spikes) != 2 {
		t.Fatalf("spikes = %+v, want overall and finance", spikes)
	}
	if spikes[0].Category != "" || spikes[0].Recent != 7 {
		t.Errorf("overall spike = %+v, want 7 recent articles", spikes[0])
	}
	if spikes[1].Category != "finance" || spikes[1].Recent != 6 {
		t.Errorf("finance spike = %+v, want 6 recent articles", spikes[1])
	}
	if spikes[1].Baseline < 0.99 || spikes[1].Baseline > 1.01 {
		t.Errorf("finance baseline = %v, want one article per hour", spikes[1].Baseline)
	}
	if spikes[1].Ratio < 5.9 || spikes[1].Ratio > 6.1 {
		t.Errorf("finance ratio = %v, want 6", spikes[1].Ratio)
	}

	// The same volume against a high factor is unremarkable.
	spikes, err = analytics.VolumeSpikes(context.Background(), asOf, 10, 5)
	if err != nil {
		t.Fatalf("VolumeSpikes() error: %v", err)
	}
	if len(spikes) != 0 {
		t.Errorf("spikes = %+v, want none at factor 10", spikes)
	}
}

func TestCategoryAndSourceBreakdowns(t *testing.T) {
	t.Parallel()

	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	at := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	seedArticle(t, store, "mirror", "Bank rates climb", "Lending tightens.", "finance", -0.2, at)
	seedArticle(t, store, "mirror", "Bond yields steady", "No change expected.", "finance", 0.4, at)
	seedArticle(t, store, "derana", "Harvest improves", "Rains helped.", "agriculture", 0.6, at)

	analytics := NewAnalytics(store)
	counts, sentiment, err := analytics.CategoryBreakdown(context.Background(), at.Add(-time.Hour))
	if err != nil {
		t.Fatalf("CategoryBreakdown() error: %v", err)
	}
	if counts["finance"] != 2 || counts["agriculture"] != 1 {
		t.Errorf("counts = %v", counts)
	}
	if avg := sentiment["finance"]; avg < 0.099 || avg > 0.101 {
		t.Errorf("finance sentiment = %v, want 0.1", avg)
	}

	sources, err := analytics.SourceBreakdown(context.Background(), at.Add(-time.Hour))
	if err != nil {
		t.Fatalf("SourceBreakdown() error: %v", err)
	}
	if sources["mirror"] != 2 || sources["derana"] != 1 {
		t.Errorf("sources = %v", sources)
	}
}
