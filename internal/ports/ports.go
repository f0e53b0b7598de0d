package ports

import (
	"context"
	"time"

	"NewsIntel/internal/domain"
)

// FeedFetcher turns a source endpoint into a sequence of raw articles. The
// underlying feed format handling is delegated; implementations only report
// how many entries had to be skipped as unparsable.
type FeedFetcher interface {
	Fetch(ctx context.Context, source domain.Source) ([]domain.RawArticle, int, error)
}

// ArticleRepository persists canonical articles keyed by fingerprint.
type ArticleRepository interface {
	// InsertArticle registers the article and its fingerprint atomically.
	// A previously seen fingerprint is absorbed: inserted reports false and
	// no error is returned.
	InsertArticle(ctx context.Context, article domain.Article) (id int64, inserted bool, err error)
	HasFingerprint(ctx context.Context, fingerprint string) (bool, error)
	UpdateEnrichment(ctx context.Context, id int64, category string, confidence, sentiment float64) error
	ArticlesByWindow(ctx context.Context, q domain.ArticleQuery) ([]domain.Article, error)
	LabeledCorpus(ctx context.Context) ([]domain.LabeledExample, error)
	CategoryDistribution(ctx context.Context, since time.Time) (map[string]int, error)
	SourceDistribution(ctx context.Context, since time.Time) (map[string]int, error)
	// CategorySentiment averages sentiment scores per category since the
	// cutoff.
	CategorySentiment(ctx context.Context, since time.Time) (map[string]float64, error)
}

// SignalRepository persists derived signals, deduplicating by (article, kind).
type SignalRepository interface {
	InsertSignal(ctx context.Context, sig domain.Signal) (inserted bool, err error)
	DeleteSignalsForArticle(ctx context.Context, articleID int64) error
	SignalsByWindow(ctx context.Context, kind domain.SignalKind, since time.Time) ([]domain.Signal, error)
}

// SnapshotRepository stores immutable model snapshots and the active pointer.
type SnapshotRepository interface {
	// SaveSnapshot writes a new snapshot without touching the active one.
	SaveSnapshot(ctx context.Context, snap *domain.ModelSnapshot) error
	// ActivateSnapshot atomically moves the active pointer to version.
	ActivateSnapshot(ctx context.Context, version string) error
	ActiveSnapshot(ctx context.Context) (*domain.ModelSnapshot, error)
}

// SourceStateRepository persists the per-source backoff state machine.
type SourceStateRepository interface {
	SourceStates(ctx context.Context) (map[string]domain.SourceState, error)
	SaveSourceState(ctx context.Context, state domain.SourceState) error
}

// Store aggregates every repository the pipeline and trainer depend on, plus
// the transactional cycle write.
type Store interface {
	ArticleRepository
	SignalRepository
	SnapshotRepository
	SourceStateRepository

	// PersistCycle writes one cycle's articles and signals atomically and
	// reports how many of each were inserted.
	PersistCycle(ctx context.Context, entries []domain.CycleEntry) (articles, signals int, err error)
	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}

// CycleDriver controls when collection cycles execute.
type CycleDriver interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
