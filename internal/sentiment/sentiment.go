// Package sentiment scores article text with weighted positive/negative term
// lists. Deterministic and offline; the classifier pipeline treats the score
// as an enrichment field.
package sentiment

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Scorer holds compiled term lexicons.
type Scorer struct {
	positive map[string]float64
	negative map[string]float64

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// NewScorer builds a scorer over the configured lexicons. Terms are matched
// case-insensitively on word boundaries.
func NewScorer(positive, negative map[string]float64) *Scorer {
	return &Scorer{
		positive: positive,
		negative: negative,
		patterns: map[string]*regexp.Regexp{},
	}
}

// Score returns a sentiment value in [-1, 1]; 0 when no term matches.
func (s *Scorer) Score(text string) float64 {
	lower := strings.ToLower(text)

	// Sum in sorted term order so the float accumulation is reproducible.
	var posScore, negScore float64
	for _, term := range sortedTerms(s.positive) {
		if s.matches(term, lower) {
			posScore += s.positive[term]
		}
	}
	for _, term := range sortedTerms(s.negative) {
		if s.matches(term, lower) {
			negScore += s.negative[term]
		}
	}

	total := posScore + negScore
	if total == 0 {
		return 0
	}
	return (posScore - negScore) / total
}

func sortedTerms(lexicon map[string]float64) []string {
	terms := make([]string, 0, len(lexicon))
	for term := range lexicon {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

func (s *Scorer) matches(term, lowerText string) bool {
	s.mu.Lock()
	pattern, ok := s.patterns[term]
	if !ok {
		pattern = regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(term)) + `\b`)
		s.patterns[term] = pattern
	}
	s.mu.Unlock()
	return pattern.MatchString(lowerText)
}
