package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"NewsIntel/internal/classifier"
	"NewsIntel/internal/domain"
	"NewsIntel/internal/ports"
)

// TopicCount is one trending keyword with its mention count.
type TopicCount struct {
	Term  string
	Count int
}

// Analytics answers read-side questions over the persisted corpus.
type Analytics struct {
	store ports.Store
}

// NewAnalytics wraps the store's query surface.
func NewAnalytics(store ports.Store) *Analytics {
	return &Analytics{store: store}
}

// TrendingTopics counts keyword mentions across article titles and bodies
// collected since the cutoff. Terms shorter than four characters and stop
// words are excluded; terms below minMentions are dropped. Results are sorted
// by count, ties alphabetically, and capped at limit when positive.
func (a *Analytics) TrendingTopics(ctx context.Context, since time.Time, minMentions, limit int) ([]TopicCount, error) {
	articles, err := a.store.ArticlesByWindow(ctx, domain.ArticleQuery{Since: since})
	if err != nil {
		return nil, fmt.Errorf("load window: %w", err)
	}

	counts := map[string]int{}
	for _, art := range articles {
		for _, tok := range classifier.Tokenize(art.Title + "\n" + art.Body) {
			if len(tok) < 4 {
				continue
			}
			counts[tok]++
		}
	}

	topics := make([]TopicCount, 0, len(counts))
	for term, count := range counts {
		if count < minMentions {
			continue
		}
		topics = append(topics, TopicCount{Term: term, Count: count})
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Count != topics[j].Count {
			return topics[i].Count > topics[j].Count
		}
		return topics[i].Term < topics[j].Term
	})

	if limit > 0 && len(topics) > limit {
		topics = topics[:limit]
	}
	return topics, nil
}

// VolumeSpike flags a stream whose recent article volume runs well above its
// baseline rate. An empty Category means the feed as a whole.
type VolumeSpike struct {
	Category string
	Recent   int
	Baseline float64
	Ratio    float64
}

// VolumeSpikes compares the hour before asOf against the hourly average of
// the 24 hours preceding it, overall and per category. A spike is reported
// when the recent count reaches minArticles and exceeds factor times the
// baseline; a stream with no baseline history spikes on the minimum count
// alone.
func (a *Analytics) VolumeSpikes(ctx context.Context, asOf time.Time, factor float64, minArticles int) ([]VolumeSpike, error) {
	recentStart := asOf.Add(-time.Hour)
	recent, err := a.store.ArticlesByWindow(ctx, domain.ArticleQuery{Since: recentStart, Until: asOf})
	if err != nil {
		return nil, fmt.Errorf("load recent window: %w", err)
	}
	baseline, err := a.store.ArticlesByWindow(ctx, domain.ArticleQuery{
		Since: recentStart.Add(-24 * time.Hour),
		Until: recentStart,
	})
	if err != nil {
		return nil, fmt.Errorf("load baseline window: %w", err)
	}

	var spikes []VolumeSpike
	if spike, ok := compareVolumes("", len(recent), len(baseline), factor, minArticles); ok {
		spikes = append(spikes, spike)
	}

	recentByCat := countByCategory(recent)
	baselineByCat := countByCategory(baseline)
	categories := make([]string, 0, len(recentByCat))
	for category := range recentByCat {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		if spike, ok := compareVolumes(category, recentByCat[category], baselineByCat[category], factor, minArticles); ok {
			spikes = append(spikes, spike)
		}
	}
	return spikes, nil
}

func countByCategory(articles []domain.Article) map[string]int {
	counts := map[string]int{}
	for _, art := range articles {
		if art.Category == "" {
			continue
		}
		counts[art.Category]++
	}
	return counts
}

func compareVolumes(category string, recent, baselineTotal int, factor float64, minArticles int) (VolumeSpike, bool) {
	if recent < minArticles {
		return VolumeSpike{}, false
	}
	hourly := float64(baselineTotal) / 24
	ratio := float64(recent)
	if hourly > 0 {
		ratio = float64(recent) / hourly
		if float64(recent) <= factor*hourly {
			return VolumeSpike{}, false
		}
	}
	return VolumeSpike{Category: category, Recent: recent, Baseline: hourly, Ratio: ratio}, true
}

// CategoryBreakdown pairs per-category article counts with average sentiment
// since the cutoff.
func (a *Analytics) CategoryBreakdown(ctx context.Context, since time.Time) (map[string]int, map[string]float64, error) {
	counts, err := a.store.CategoryDistribution(ctx, since)
	if err != nil {
		return nil, nil, fmt.Errorf("category distribution: %w", err)
	}
	sentiment, err := a.store.CategorySentiment(ctx, since)
	if err != nil {
		return nil, nil, fmt.Errorf("category sentiment: %w", err)
	}
	return counts, sentiment, nil
}

// SourceBreakdown counts articles per source since the cutoff.
func (a *Analytics) SourceBreakdown(ctx context.Context, since time.Time) (map[string]int, error) {
	dist, err := a.store.SourceDistribution(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("source distribution: %w", err)
	}
	return dist, nil
}
