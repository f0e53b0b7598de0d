// Package signal derives risk/opportunity records from classified,
// sentiment-scored articles via weighted lexical rules.
package signal

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"NewsIntel/internal/domain"
)

// Detector evaluates articles against configured risk and opportunity
// lexicons. Detection is pure and deterministic given the article and the
// lexicons; re-running it on the same inputs yields the same matches and
// severities, so consumers dedupe by (article_id, kind) before persisting.
type Detector struct {
	risk        map[string]float64
	opportunity map[string]float64
	minSeverity float64
	halfLife    time.Duration

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// NewDetector builds a detector over the configured lexicons. Severities below
// minSeverity produce no signal.
func NewDetector(risk, opportunity map[string]float64, minSeverity float64, halfLife time.Duration) *Detector {
	return &Detector{
		risk:        risk,
		opportunity: opportunity,
		minSeverity: minSeverity,
		halfLife:    halfLife,
		patterns:    map[string]*regexp.Regexp{},
	}
}

// Detect returns zero or more signals for the article. A single article may
// yield both a risk and an opportunity signal when both lexicons match.
func (d *Detector) Detect(article domain.Article, now time.Time) []domain.Signal {
	text := strings.ToLower(article.Title + "\n" + article.Body)

	var signals []domain.Signal
	if sig, ok := d.evaluate(article.ID, domain.SignalRisk, d.risk, text, now); ok {
		signals = append(signals, sig)
	}
	if sig, ok := d.evaluate(article.ID, domain.SignalOpportunity, d.opportunity, text, now); ok {
		signals = append(signals, sig)
	}
	return signals
}

func (d *Detector) evaluate(articleID int64, kind domain.SignalKind, lexicon map[string]float64, text string, now time.Time) (domain.Signal, bool) {
	var severity float64
	var matched []string

	// Sum in sorted term order so the float accumulation is reproducible.
	for _, term := range sortedTerms(lexicon) {
		if d.matches(term, text) {
			severity += lexicon[term]
			matched = append(matched, term)
		}
	}

	if severity < d.minSeverity || len(matched) == 0 {
		return domain.Signal{}, false
	}

	return domain.Signal{
		ID:           uuid.NewString(),
		ArticleID:    articleID,
		Kind:         kind,
		Severity:     severity,
		MatchedTerms: matched,
		CreatedAt:    now,
	}, true
}

func sortedTerms(lexicon map[string]float64) []string {
	terms := make([]string, 0, len(lexicon))
	for term := range lexicon {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

func (d *Detector) matches(term, text string) bool {
	d.mu.Lock()
	pattern, ok := d.patterns[term]
	if !ok {
		pattern = regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(term)) + `\b`)
		d.patterns[term] = pattern
	}
	d.mu.Unlock()
	return pattern.MatchString(text)
}

// DecayedSeverity scales a signal's raw severity by the age of its parent
// article's publication relative to asOf. The stored severity stays raw;
// decay is strictly a read-time concern of the consumer.
func (d *Detector) DecayedSeverity(sig domain.Signal, publishedAt, asOf time.Time) float64 {
	if d.halfLife <= 0 || !asOf.After(publishedAt) {
		return sig.Severity
	}
	age := asOf.Sub(publishedAt)
	return sig.Severity * math.Exp2(-float64(age)/float64(d.halfLife))
}
