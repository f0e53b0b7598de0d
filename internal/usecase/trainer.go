package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"NewsIntel/internal/classifier"
	"NewsIntel/internal/config"
	"NewsIntel/internal/domain"
	"NewsIntel/internal/ports"
	"NewsIntel/internal/sentiment"
	"NewsIntel/internal/signal"
)

// TrainerDeps wires the retraining path.
type TrainerDeps struct {
	Store     ports.Store
	Model     *classifier.ActiveModel
	Detector  *signal.Detector
	Sentiment *sentiment.Scorer
	Taxonomy  config.CategoryTaxonomy
	Options   classifier.TrainOptions
	// Reclassify re-labels stored articles under the new snapshot.
	Reclassify bool
	// RecomputeSignals re-runs detection for articles whose category changed;
	// only meaningful with Reclassify.
	RecomputeSignals bool
	Logger           *slog.Logger
}

// Trainer produces and activates model snapshots. Training is mutually
// exclusive with snapshot activation but runs concurrently with collection
// cycles, which keep using the previous snapshot until the swap.
type Trainer struct {
	deps TrainerDeps
	mu   sync.Mutex
}

// NewTrainer constructs the retraining use case.
func NewTrainer(deps TrainerDeps) *Trainer {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Trainer{deps: deps}
}

// Retrain reads the labeled corpus, always seeded with the taxonomy bootstrap
// so every category clears the per-category minimum, trains a new snapshot,
// persists it, and only then swaps the active pointer. A failed run leaves
// the previous snapshot active.
func (t *Trainer) Retrain(ctx context.Context, now time.Time) (*domain.ModelSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stored, err := t.deps.Store.LabeledCorpus(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read corpus: %v", domain.ErrStoreUnavailable, err)
	}

	corpus := classifier.BootstrapCorpus(t.deps.Taxonomy)
	corpus = append(corpus, stored...)

	snap, err := classifier.Train(corpus, t.deps.Options, now)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	if err := t.deps.Store.SaveSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("%w: save snapshot: %v", domain.ErrStoreUnavailable, err)
	}
	if err := t.deps.Store.ActivateSnapshot(ctx, snap.Version); err != nil {
		return nil, fmt.Errorf("%w: activate snapshot: %v", domain.ErrStoreUnavailable, err)
	}
	t.deps.Model.Swap(snap)

	t.deps.Logger.Info("model retrained",
		"version", snap.Version,
		"categories", len(snap.Categories),
		"vocabulary", len(snap.Vocabulary),
		"holdout_accuracy", snap.HoldoutAccuracy,
		"examples", len(corpus),
	)

	if t.deps.Reclassify {
		if err := t.reclassifyStored(ctx, snap, now); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

// reclassifyStored re-labels every persisted article under the new snapshot
// and, when configured, supersedes signals for articles whose category
// changed.
func (t *Trainer) reclassifyStored(ctx context.Context, snap *domain.ModelSnapshot, now time.Time) error {
	articles, err := t.deps.Store.ArticlesByWindow(ctx, domain.ArticleQuery{})
	if err != nil {
		return fmt.Errorf("%w: load articles: %v", domain.ErrStoreUnavailable, err)
	}

	changed := 0
	for _, art := range articles {
		category, confidence := classifier.Classify(art.Title+"\n"+art.Body, snap)
		if category == art.Category && confidence == art.CategoryConfidence {
			continue
		}

		if err := t.deps.Store.UpdateEnrichment(ctx, art.ID, category, confidence, art.SentimentScore); err != nil {
			return fmt.Errorf("%w: update article %d: %v", domain.ErrStoreUnavailable, art.ID, err)
		}

		if t.deps.RecomputeSignals && category != art.Category {
			if err := t.deps.Store.DeleteSignalsForArticle(ctx, art.ID); err != nil {
				return fmt.Errorf("%w: supersede signals for %d: %v", domain.ErrStoreUnavailable, art.ID, err)
			}
			art.Category = category
			art.CategoryConfidence = confidence
			for _, sig := range t.deps.Detector.Detect(art, now) {
				if _, err := t.deps.Store.InsertSignal(ctx, sig); err != nil {
					return fmt.Errorf("%w: insert signal for %d: %v", domain.ErrStoreUnavailable, art.ID, err)
				}
			}
		}
		changed++
	}

	t.deps.Logger.Info("reclassification complete", "articles", len(articles), "changed", changed)
	return nil
}
