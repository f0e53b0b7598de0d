package classifier

import (
	"math"

	"NewsIntel/internal/domain"
)

// posteriorTolerance treats log posteriors this close as equal, so ties break
// to the lexicographically first category name.
const posteriorTolerance = 1e-9

// Classify vectorizes the text under the snapshot's fixed vocabulary and
// returns the maximum-posterior category with its normalized posterior as
// confidence. Out-of-vocabulary terms are ignored. Text yielding an all-zero
// vector classifies into the reserved uncategorized label with confidence 0;
// that is a defined outcome, not an error. The snapshot is never mutated, so
// concurrent invocation is safe.
func Classify(text string, snap *domain.ModelSnapshot) (string, float64) {
	if snap == nil || len(snap.Categories) == 0 {
		return domain.CategoryUncategorized, 0
	}

	counts := termCounts(Tokenize(text), snap.Vocabulary)
	nonZero := false
	for j := range counts {
		if counts[j] != 0 {
			nonZero = true
			counts[j] *= snap.IDF[j]
		}
	}
	if !nonZero {
		return domain.CategoryUncategorized, 0
	}

	scores := make([]float64, len(snap.Categories))
	for ci := range snap.Categories {
		score := snap.ClassPriors[ci]
		for j, w := range counts {
			if w != 0 {
				score += w * snap.FeatureWeights[ci][j]
			}
		}
		scores[ci] = score
	}

	// Categories are stored sorted, so a strict comparison with tolerance
	// keeps the lexicographically first name on equal posteriors.
	best := 0
	for ci := 1; ci < len(scores); ci++ {
		if scores[ci] > scores[best]+posteriorTolerance {
			best = ci
		}
	}

	return snap.Categories[best], normalizedPosterior(scores, best)
}

// normalizedPosterior converts log scores to a probability for the winning
// category via a max-shifted softmax.
func normalizedPosterior(scores []float64, best int) float64 {
	maxScore := scores[best]
	var total float64
	for _, s := range scores {
		total += math.Exp(s - maxScore)
	}
	if total == 0 {
		return 0
	}
	return math.Exp(scores[best]-maxScore) / total
}
