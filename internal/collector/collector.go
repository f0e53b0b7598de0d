// Package collector fetches raw entries per source with bounded concurrency,
// isolating per-source failures so one unreachable feed never stalls a cycle.
package collector

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"NewsIntel/internal/domain"
	"NewsIntel/internal/ports"
)

// Collector drives per-source fetches for one cycle.
type Collector struct {
	fetcher       ports.FeedFetcher
	policy        BackoffPolicy
	maxConcurrent int
	sourceTimeout time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// New wires the fetcher with concurrency and backoff settings.
func New(fetcher ports.FeedFetcher, policy BackoffPolicy, maxConcurrent int, sourceTimeout time.Duration, logger *slog.Logger) *Collector {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		fetcher:       fetcher,
		policy:        policy,
		maxConcurrent: maxConcurrent,
		sourceTimeout: sourceTimeout,
		logger:        logger,
		now:           time.Now,
	}
}

// Result bundles one cycle's raw articles with per-source outcomes and the
// advanced backoff states to persist.
type Result struct {
	Articles []domain.RawArticle
	Outcomes map[string]domain.CollectorOutcome
	States   map[string]domain.SourceState
}

// CollectAll fetches from every enabled source in parallel, capped at
// min(len(sources), maxConcurrent) workers. Each fetch carries its own
// timeout and is cancelled independently. Per-source failures are folded into
// outcomes and the backoff state machine, never returned as errors.
func (c *Collector) CollectAll(ctx context.Context, sources []domain.Source, states map[string]domain.SourceState) Result {
	now := c.now().UTC()
	result := Result{
		Outcomes: make(map[string]domain.CollectorOutcome, len(sources)),
		States:   make(map[string]domain.SourceState, len(sources)),
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.maxConcurrent)

	for _, source := range sources {
		source := source
		if !source.Enabled {
			continue
		}

		state, ok := states[source.ID]
		if !ok {
			state = domain.SourceState{SourceID: source.ID}
		}

		if !Eligible(state, now) {
			c.debug("source backed off", "source", source.ID, "next_eligible", state.NextEligible)
			result.Outcomes[source.ID] = domain.CollectorOutcome{
				SourceID: source.ID,
				Status:   domain.OutcomeBackedOff,
			}
			result.States[source.ID] = state
			continue
		}

		group.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(groupCtx, c.sourceTimeout)
			defer cancel()

			articles, skipped, err := c.fetcher.Fetch(fetchCtx, source)
			outcome := domain.CollectorOutcome{
				SourceID:       source.ID,
				Status:         domain.OutcomeOK,
				Collected:      len(articles),
				SkippedEntries: skipped,
			}
			if err != nil {
				outcome.Status = statusFor(err)
				outcome.Err = err
				c.logger.Warn("source failed", "source", source.ID, "status", outcome.Status, "error", err)
			} else {
				c.debug("source collected", "source", source.ID, "articles", len(articles), "skipped", skipped)
			}

			mu.Lock()
			result.Articles = append(result.Articles, articles...)
			result.Outcomes[source.ID] = outcome
			result.States[source.ID] = c.policy.Advance(state, outcome.Status, now)
			mu.Unlock()
			return nil
		})
	}

	// Workers swallow their own failures, so the only error path is context
	// cancellation, which the caller observes directly.
	_ = group.Wait()
	return result
}

func statusFor(err error) domain.OutcomeStatus {
	if errors.Is(err, domain.ErrFeedMalformed) {
		return domain.OutcomeParseFailed
	}
	return domain.OutcomeUnreachable
}

func (c *Collector) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
