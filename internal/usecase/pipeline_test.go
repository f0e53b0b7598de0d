package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"NewsIntel/internal/classifier"
	"NewsIntel/internal/collector"
	"NewsIntel/internal/domain"
	"NewsIntel/internal/infrastructure/storage"
	"NewsIntel/internal/sentiment"
	"NewsIntel/internal/signal"
)

type stubFetcher struct {
	mu      sync.Mutex
	batches map[string][]domain.RawArticle
	errs    map[string]error
	block   chan struct{}
}

func (f *stubFetcher) Fetch(ctx context.Context, source domain.Source) ([]domain.RawArticle, int, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[source.ID]; err != nil {
		return nil, 0, err
	}
	return f.batches[source.ID], 0, nil
}

func testPipeline(t *testing.T, fetcher *stubFetcher, sources []domain.Source) (*Pipeline, *storage.Store) {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	policy := collector.BackoffPolicy{BaseInterval: 15 * time.Minute, Factor: 2, MaxInterval: 4 * time.Hour, DegradedAfter: 3}
	pipe := NewPipeline(PipelineDeps{
		Collector: collector.New(fetcher, policy, 4, 5*time.Second, nil),
		Store:     store,
		Model:     classifier.NewActiveModel(nil),
		Sentiment: sentiment.NewScorer(map[string]float64{"growth": 1}, map[string]float64{"strike": 1}),
		Detector:  signal.NewDetector(map[string]float64{"strike": 5, "halts": 3}, nil, 2, 0),
		Sources:   sources,
	})
	return pipe, store
}

func rawArticle(sourceID, title, body string, at time.Time) domain.RawArticle {
	return domain.RawArticle{
		SourceID:    sourceID,
		URL:         "https://" + sourceID + ".example/" + title,
		Title:       title,
		Body:        body,
		PublishedAt: at,
		CollectedAt: at,
	}
}

func TestRunCycleEndToEnd(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{
		batches: map[string][]domain.RawArticle{
			"mirror": {
				rawArticle("mirror", "Port strike halts exports", "Unions say the strike continues.", at),
				rawArticle("mirror", "Tea exports show growth", "Strong quarter for tea.", at),
			},
			"derana": {
				// Same story republished; should collapse.
				rawArticle("derana", "PORT STRIKE halts exports", "Unions say the  strike continues.", at.Add(time.Hour)),
			},
		},
		errs: map[string]error{"down": domain.ErrSourceUnreachable},
	}
	sources := []domain.Source{
		{ID: "mirror", Enabled: true},
		{ID: "derana", Enabled: true},
		{ID: "down", Enabled: true},
	}

	pipe, store := testPipeline(t, fetcher, sources)
	report, err := pipe.RunCycle(context.Background(), at)
	if err != nil {
		t.Fatalf("RunCycle() error: %v", err)
	}

	if report.Collected != 3 {
		t.Errorf("collected = %d, want 3", report.Collected)
	}
	if report.Duplicates != 1 {
		t.Errorf("duplicates = %d, want 1", report.Duplicates)
	}
	if report.Persisted != 2 {
		t.Errorf("persisted = %d, want 2", report.Persisted)
	}
	if report.Signals != 1 {
		t.Errorf("signals = %d, want 1 risk signal", report.Signals)
	}
	if !report.Partial() {
		t.Error("report should be partial with one source down")
	}
	if got := report.Outcomes["down"].Status; got != domain.OutcomeUnreachable {
		t.Errorf("down status = %s", got)
	}

	articles, err := store.ArticlesByWindow(context.Background(), domain.ArticleQuery{})
	if err != nil {
		t.Fatalf("ArticlesByWindow() error: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("stored articles = %d, want 2", len(articles))
	}
	for _, art := range articles {
		// No model snapshot is active yet.
		if art.Category != domain.CategoryUncategorized {
			t.Errorf("category = %q, want uncategorized before first training", art.Category)
		}
	}

	signals, err := store.SignalsByWindow(context.Background(), domain.SignalRisk, at.Add(-time.Hour))
	if err != nil {
		t.Fatalf("SignalsByWindow() error: %v", err)
	}
	if len(signals) != 1 || signals[0].Severity != 8 {
		t.Errorf("signals = %+v, want one with severity 8", signals)
	}

	states, err := store.SourceStates(context.Background())
	if err != nil {
		t.Fatalf("SourceStates() error: %v", err)
	}
	if states["down"].Failures != 1 {
		t.Errorf("down failures = %d, want 1", states["down"].Failures)
	}
	if states["mirror"].Failures != 0 || states["mirror"].LastSuccess.IsZero() {
		t.Errorf("mirror state = %+v, want recorded success", states["mirror"])
	}
}

func TestRunCycleIdempotent(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{batches: map[string][]domain.RawArticle{
		"mirror": {rawArticle("mirror", "Fuel prices revised", "Effective at midnight.", at)},
	}}
	pipe, _ := testPipeline(t, fetcher, []domain.Source{{ID: "mirror", Enabled: true}})

	first, err := pipe.RunCycle(context.Background(), at)
	if err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	if first.Persisted != 1 {
		t.Fatalf("first persisted = %d, want 1", first.Persisted)
	}

	second, err := pipe.RunCycle(context.Background(), at.Add(15*time.Minute))
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if second.Persisted != 0 {
		t.Errorf("second persisted = %d, want 0 for repeated content", second.Persisted)
	}
	if second.Duplicates != 1 {
		t.Errorf("second duplicates = %d, want 1", second.Duplicates)
	}
}

func TestRunCycleRejectsOverlap(t *testing.T) {
	t.Parallel()

	at := time.Now().UTC()
	block := make(chan struct{})
	fetcher := &stubFetcher{
		batches: map[string][]domain.RawArticle{"mirror": {rawArticle("mirror", "Slow story", "body", at)}},
		block:   block,
	}
	pipe, _ := testPipeline(t, fetcher, []domain.Source{{ID: "mirror", Enabled: true}})

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := pipe.RunCycle(context.Background(), at)
		done <- err
	}()

	<-started
	// Wait until the first cycle is actually inside collection.
	deadline := time.After(2 * time.Second)
	for pipe.State() != StateCollecting {
		select {
		case <-deadline:
			t.Fatal("first cycle never reached collecting state")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := pipe.RunCycle(context.Background(), at); !errors.Is(err, ErrCycleActive) {
		t.Errorf("overlapping cycle err = %v, want ErrCycleActive", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}
	if pipe.State() != StateIdle {
		t.Errorf("state = %s, want idle after completion", pipe.State())
	}

	// With the first cycle finished the lock is free again.
	if _, err := pipe.RunCycle(context.Background(), at.Add(time.Minute)); err != nil {
		t.Errorf("post-completion cycle err = %v", err)
	}
}

func TestRunCycleHonorsCancellation(t *testing.T) {
	t.Parallel()

	at := time.Now().UTC()
	fetcher := &stubFetcher{batches: map[string][]domain.RawArticle{
		"mirror": {rawArticle("mirror", "Some story", "body", at)},
	}}
	pipe, store := testPipeline(t, fetcher, []domain.Source{{ID: "mirror", Enabled: true}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipe.RunCycle(ctx, at)
	if err == nil {
		t.Fatal("cancelled cycle should not succeed")
	}

	articles, qerr := store.ArticlesByWindow(context.Background(), domain.ArticleQuery{})
	if qerr != nil {
		t.Fatalf("ArticlesByWindow() error: %v", qerr)
	}
	if len(articles) != 0 {
		t.Errorf("articles = %d, cancelled cycle must not persist", len(articles))
	}
}
