package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"NewsIntel/internal/classifier"
	"NewsIntel/internal/collector"
	"NewsIntel/internal/dedup"
	"NewsIntel/internal/domain"
	"NewsIntel/internal/ports"
	"NewsIntel/internal/sentiment"
	"NewsIntel/internal/signal"
)

// CycleState tracks where an active cycle is; Failed is reachable from any
// state on unrecoverable error.
type CycleState string

const (
	StateIdle            CycleState = "idle"
	StateCollecting      CycleState = "collecting"
	StateDeduplicating   CycleState = "deduplicating"
	StateClassifying     CycleState = "classifying"
	StateSignalDetecting CycleState = "signal_detecting"
	StatePersisting      CycleState = "persisting"
	StateFailed          CycleState = "failed"
)

// ErrCycleActive reports a tick that fired while the previous cycle had not
// returned to idle. The tick is skipped, never queued.
var ErrCycleActive = errors.New("cycle already in progress")

// PipelineDeps wires all collaborators into the orchestration pipeline.
type PipelineDeps struct {
	Collector *collector.Collector
	Store     ports.Store
	Model     *classifier.ActiveModel
	Sentiment *sentiment.Scorer
	Detector  *signal.Detector
	Sources   []domain.Source
	Logger    *slog.Logger
}

// Pipeline implements one full pass: collect, dedupe, classify, detect,
// persist. At most one cycle executes at a time.
type Pipeline struct {
	collector *collector.Collector
	store     ports.Store
	model     *classifier.ActiveModel
	sentiment *sentiment.Scorer
	detector  *signal.Detector
	sources   []domain.Source
	logger    *slog.Logger

	mu    sync.Mutex
	state atomic.Value
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		collector: deps.Collector,
		store:     deps.Store,
		model:     deps.Model,
		sentiment: deps.Sentiment,
		detector:  deps.Detector,
		sources:   deps.Sources,
		logger:    logger,
	}
	p.state.Store(StateIdle)
	return p
}

// State returns the pipeline's current cycle state.
func (p *Pipeline) State() CycleState {
	return p.state.Load().(CycleState)
}

// RunCycle executes one cycle. A call while a cycle is active returns
// ErrCycleActive; store failures abort with no partial persistence; external
// cancellation is honored at the next stage boundary.
func (p *Pipeline) RunCycle(ctx context.Context, now time.Time) (domain.CycleReport, error) {
	if !p.mu.TryLock() {
		return domain.CycleReport{}, ErrCycleActive
	}
	defer p.mu.Unlock()
	defer p.state.Store(StateIdle)

	report := domain.CycleReport{}

	// Collecting.
	p.state.Store(StateCollecting)
	if err := p.store.Ping(ctx); err != nil {
		p.state.Store(StateFailed)
		return report, err
	}
	states, err := p.store.SourceStates(ctx)
	if err != nil {
		p.state.Store(StateFailed)
		return report, fmt.Errorf("%w: load source state: %v", domain.ErrStoreUnavailable, err)
	}

	collected := p.collector.CollectAll(ctx, p.sources, states)
	report.Collected = len(collected.Articles)
	report.Outcomes = collected.Outcomes
	if err := p.stageBoundary(ctx); err != nil {
		return report, err
	}

	// Deduplicating.
	p.state.Store(StateDeduplicating)
	survivors, fingerprints := dedup.Canonicalize(collected.Articles)
	fresh := make([]domain.RawArticle, 0, len(survivors))
	freshPrints := make([]string, 0, len(survivors))
	for i, raw := range survivors {
		seen, err := p.store.HasFingerprint(ctx, fingerprints[i])
		if err != nil {
			p.state.Store(StateFailed)
			return report, fmt.Errorf("%w: fingerprint check: %v", domain.ErrStoreUnavailable, err)
		}
		if seen {
			continue
		}
		fresh = append(fresh, raw)
		freshPrints = append(freshPrints, fingerprints[i])
	}
	report.Duplicates = report.Collected - len(fresh)
	if err := p.stageBoundary(ctx); err != nil {
		return report, err
	}

	// Classifying. A nil snapshot is a defined outcome: everything lands in
	// the reserved uncategorized label until the first training run.
	p.state.Store(StateClassifying)
	snapshot := p.model.Load()
	articles := make([]domain.Article, len(fresh))
	for i, raw := range fresh {
		category, confidence := classifier.Classify(raw.Title+"\n"+raw.Body, snapshot)
		articles[i] = domain.Article{
			SourceID:           raw.SourceID,
			URL:                raw.URL,
			Title:              raw.Title,
			Body:               raw.Body,
			PublishedAt:        raw.PublishedAt,
			CollectedAt:        raw.CollectedAt,
			Fingerprint:        freshPrints[i],
			Category:           category,
			CategoryConfidence: confidence,
			SentimentScore:     p.sentiment.Score(raw.Title + "\n" + raw.Body),
		}
	}
	if err := p.stageBoundary(ctx); err != nil {
		return report, err
	}

	// SignalDetecting.
	p.state.Store(StateSignalDetecting)
	entries := make([]domain.CycleEntry, len(articles))
	for i, art := range articles {
		entries[i] = domain.CycleEntry{Article: art, Signals: p.detector.Detect(art, now)}
	}
	if err := p.stageBoundary(ctx); err != nil {
		return report, err
	}

	// Persisting.
	p.state.Store(StatePersisting)
	persisted, signals, err := p.store.PersistCycle(ctx, entries)
	if err != nil {
		p.state.Store(StateFailed)
		return report, err
	}
	report.Persisted = persisted
	report.Signals = signals

	for _, state := range collected.States {
		if err := p.store.SaveSourceState(ctx, state); err != nil {
			p.state.Store(StateFailed)
			return report, fmt.Errorf("%w: save source state: %v", domain.ErrStoreUnavailable, err)
		}
	}

	p.logger.Info("cycle complete",
		"collected", report.Collected,
		"duplicates", report.Duplicates,
		"persisted", report.Persisted,
		"signals", report.Signals,
		"degraded_sources", report.Degraded(),
	)
	return report, nil
}

func (p *Pipeline) stageBoundary(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		p.logger.Info("cycle stopped at stage boundary", "state", p.State())
		return err
	}
	return nil
}
