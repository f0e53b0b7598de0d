package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"NewsIntel/internal/classifier"
	"NewsIntel/internal/collector"
	"NewsIntel/internal/config"
	"NewsIntel/internal/domain"
	"NewsIntel/internal/infrastructure/scheduler"
	"NewsIntel/internal/infrastructure/storage"
	"NewsIntel/internal/logging"
	"NewsIntel/internal/ports"
	"NewsIntel/internal/sentiment"
	"NewsIntel/internal/signal"
	"NewsIntel/internal/usecase"
)

// Exit codes for single-shot mode.
const (
	ExitSuccess      = 0
	ExitTotalFailure = 1
	ExitPartial      = 2
)

// Application wires configuration to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *storage.Store
	model     *classifier.ActiveModel
	pipeline  *usecase.Pipeline
	trainer   *usecase.Trainer
	analytics *usecase.Analytics
}

// New builds a runnable application instance: opens the store, restores the
// active model snapshot, and wires the pipeline and trainer.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	enabled := cfg.EnabledSources()
	baseLogger.Info("configuration loaded",
		"sources", len(enabled),
		"categories", cfg.Categories.Names())

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	snap, err := store.ActiveSnapshot(context.Background())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load active snapshot: %w", err)
	}
	model := classifier.NewActiveModel(snap)

	fetcher := collector.NewFeedClient(nil, cfg.Collector.MaxArticlesPerSource)
	policy := collector.BackoffPolicy{
		BaseInterval:  cfg.Scheduler.Interval.Std(),
		Factor:        cfg.Collector.BackoffFactor,
		MaxInterval:   cfg.Collector.MaxBackoffInterval.Std(),
		DegradedAfter: cfg.Collector.DegradedAfterFailures,
	}
	coll := collector.New(fetcher, policy, cfg.Collector.MaxConcurrency,
		cfg.Collector.SourceTimeout.Std(), baseLogger.With("component", "collector"))

	detector := signal.NewDetector(cfg.Signals.RiskLexicon, cfg.Signals.OpportunityLexicon,
		cfg.Signals.MinSeverity, cfg.Signals.DecayHalfLife.Std())
	scorer := sentiment.NewScorer(cfg.Sentiment.Positive, cfg.Sentiment.Negative)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Collector: coll,
		Store:     store,
		Model:     model,
		Sentiment: scorer,
		Detector:  detector,
		Sources:   toDomainSources(enabled),
		Logger:    baseLogger.With("component", "pipeline"),
	})

	trainer := usecase.NewTrainer(usecase.TrainerDeps{
		Store:     store,
		Model:     model,
		Detector:  detector,
		Sentiment: scorer,
		Taxonomy:  cfg.Categories,
		Options: classifier.TrainOptions{
			HoldoutFraction:        cfg.Classifier.HoldoutFraction,
			MinExamplesPerCategory: cfg.Classifier.MinExamplesPerCategory,
			Smoothing:              cfg.Classifier.Smoothing,
		},
		Reclassify:       cfg.Classifier.ReclassifyOnRetrain,
		RecomputeSignals: cfg.Classifier.RecomputeSignalsOnRecat,
		Logger:           baseLogger.With("component", "trainer"),
	})

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		store:     store,
		model:     model,
		pipeline:  pipeline,
		trainer:   trainer,
		analytics: usecase.NewAnalytics(store),
	}, nil
}

// ensureModel trains a first snapshot from the bootstrap corpus when no
// snapshot has ever been activated.
func (a *Application) ensureModel(ctx context.Context) error {
	if a.model.Load() != nil {
		return nil
	}
	a.logger.Info("no active model snapshot, training from bootstrap corpus")
	_, err := a.trainer.Retrain(ctx, time.Now().UTC())
	return err
}

// RunContinuous fires cycles on the configured interval until the context is
// cancelled. Retraining runs on its own coarser interval when enabled.
func (a *Application) RunContinuous(ctx context.Context) error {
	if err := a.ensureModel(ctx); err != nil {
		return fmt.Errorf("initial training: %w", err)
	}

	cycleDriver := scheduler.NewIntervalDriver(a.cfg.Scheduler.Interval.Std())
	var retrainDriver ports.CycleDriver
	if a.cfg.Scheduler.RetrainInterval.Std() > 0 {
		retrainDriver = scheduler.NewIntervalDriver(a.cfg.Scheduler.RetrainInterval.Std())
	}

	sched := usecase.NewScheduler(cycleDriver, retrainDriver, a.pipeline, a.trainer,
		a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Collector.SourceTimeout.Std())
	defer cancel()
	return sched.Stop(stopCtx)
}

// RunOnce executes exactly one cycle and reports an exit code distinguishing
// full success, partial success, and total failure.
func (a *Application) RunOnce(ctx context.Context) int {
	if err := a.ensureModel(ctx); err != nil {
		a.logger.Error("initial training failed", "error", err)
		return ExitTotalFailure
	}

	report, err := a.pipeline.RunCycle(ctx, time.Now().UTC())
	if err != nil {
		a.logger.Error("cycle failed", "error", err)
		return ExitTotalFailure
	}

	a.printSummary(ctx, report)
	if report.Partial() {
		return ExitPartial
	}
	return ExitSuccess
}

// Retrain runs the explicit training trigger.
func (a *Application) Retrain(ctx context.Context) error {
	snap, err := a.trainer.Retrain(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Printf("model %s activated (holdout accuracy %.3f, %d categories, %d terms)\n",
		snap.Version, snap.HoldoutAccuracy, len(snap.Categories), len(snap.Vocabulary))
	return nil
}

// Close releases the store.
func (a *Application) Close() error {
	return a.store.Close()
}

func (a *Application) printSummary(ctx context.Context, report domain.CycleReport) {
	fmt.Printf("collected %d articles (%d duplicates absorbed), persisted %d, %d signals\n",
		report.Collected, report.Duplicates, report.Persisted, report.Signals)

	if degraded := report.Degraded(); len(degraded) > 0 {
		fmt.Printf("degraded sources: %v\n", degraded)
	}

	since := time.Now().UTC().Add(-24 * time.Hour)
	counts, sentiments, err := a.analytics.CategoryBreakdown(ctx, since)
	if err == nil && len(counts) > 0 {
		categories := make([]string, 0, len(counts))
		for category := range counts {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		fmt.Println("category breakdown (last 24h):")
		for _, category := range categories {
			fmt.Printf("  %s: %d articles, avg sentiment %+.2f\n",
				category, counts[category], sentiments[category])
		}
	}

	topics, err := a.analytics.TrendingTopics(ctx, since, 3, 10)
	if err == nil && len(topics) > 0 {
		fmt.Println("trending topics (last 24h):")
		for _, topic := range topics {
			fmt.Printf("  %s: %d mentions\n", topic.Term, topic.Count)
		}
	}

	spikes, err := a.analytics.VolumeSpikes(ctx, time.Now().UTC(), 2, 5)
	if err == nil && len(spikes) > 0 {
		fmt.Println("volume spikes (last hour vs 24h baseline):")
		for _, spike := range spikes {
			label := spike.Category
			if label == "" {
				label = "all categories"
			}
			fmt.Printf("  %s: %d articles, baseline %.1f/h\n", label, spike.Recent, spike.Baseline)
		}
	}
}

func toDomainSources(configs []config.SourceConfig) []domain.Source {
	sources := make([]domain.Source, 0, len(configs))
	for _, c := range configs {
		sources = append(sources, domain.Source{
			ID:       c.ID,
			Name:     c.Name,
			Endpoint: c.Endpoint,
			Enabled:  c.Enabled,
		})
	}
	return sources
}
