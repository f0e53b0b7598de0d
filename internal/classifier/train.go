// Package classifier trains and applies a multinomial naive Bayes model over
// TF-IDF weighted term vectors. Snapshots are immutable; training builds a new
// versioned snapshot and never touches the one currently serving reads.
package classifier

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"NewsIntel/internal/domain"
)

// splitSeed fixes the holdout shuffle so repeated training runs on the same
// corpus produce the same train/holdout partition.
const splitSeed = 42

// TrainOptions tunes a training run.
type TrainOptions struct {
	HoldoutFraction        float64
	MinExamplesPerCategory int
	Smoothing              float64
}

// Train fits a model to the labeled corpus and reports holdout accuracy
// measured only on examples disjoint from the training fraction. Corpora with
// fewer than MinExamplesPerCategory examples for any category fail with
// domain.ErrInsufficientTrainingData instead of producing a degenerate model.
func Train(corpus []domain.LabeledExample, opts TrainOptions, now time.Time) (*domain.ModelSnapshot, error) {
	if opts.HoldoutFraction <= 0 || opts.HoldoutFraction >= 1 {
		return nil, fmt.Errorf("holdout fraction %v out of range", opts.HoldoutFraction)
	}
	if opts.Smoothing <= 0 {
		opts.Smoothing = 1
	}

	byCategory := map[string][]domain.LabeledExample{}
	for _, ex := range corpus {
		byCategory[ex.Category] = append(byCategory[ex.Category], ex)
	}
	if len(byCategory) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 categories, got %d", domain.ErrInsufficientTrainingData, len(byCategory))
	}
	for cat, examples := range byCategory {
		if len(examples) < opts.MinExamplesPerCategory {
			return nil, fmt.Errorf("%w: category %q has %d examples, need %d",
				domain.ErrInsufficientTrainingData, cat, len(examples), opts.MinExamplesPerCategory)
		}
	}

	train, holdout := split(byCategory, opts.HoldoutFraction)

	snap := fit(train, opts.Smoothing, now)
	snap.HoldoutAccuracy = accuracy(snap, holdout)
	return snap, nil
}

// split partitions each category deterministically: examples are ordered,
// shuffled with a fixed seed, and the tail fraction becomes the holdout. At
// least one example per category always stays in the training set.
func split(byCategory map[string][]domain.LabeledExample, fraction float64) (train, holdout []domain.LabeledExample) {
	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	rng := rand.New(rand.NewSource(splitSeed))
	for _, cat := range categories {
		examples := append([]domain.LabeledExample(nil), byCategory[cat]...)
		sort.Slice(examples, func(i, j int) bool { return examples[i].Text < examples[j].Text })
		rng.Shuffle(len(examples), func(i, j int) {
			examples[i], examples[j] = examples[j], examples[i]
		})

		cut := int(math.Round(float64(len(examples)) * fraction))
		if cut >= len(examples) {
			cut = len(examples) - 1
		}
		boundary := len(examples) - cut
		train = append(train, examples[:boundary]...)
		holdout = append(holdout, examples[boundary:]...)
	}
	return train, holdout
}

func fit(train []domain.LabeledExample, smoothing float64, now time.Time) *domain.ModelSnapshot {
	// Vocabulary and document frequencies come from the training fraction
	// only; the holdout never leaks into the feature space.
	vocabulary := map[string]int{}
	docFreq := map[string]int{}
	tokenized := make([][]string, len(train))
	for i, ex := range train {
		tokens := Tokenize(ex.Text)
		tokenized[i] = tokens
		seen := map[string]struct{}{}
		for _, tok := range tokens {
			if _, ok := vocabulary[tok]; !ok {
				vocabulary[tok] = 0
			}
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				docFreq[tok]++
			}
		}
	}

	terms := make([]string, 0, len(vocabulary))
	for term := range vocabulary {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	for i, term := range terms {
		vocabulary[term] = i
	}

	docs := float64(len(train))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log((1+docs)/(1+float64(docFreq[term]))) + 1
	}

	categorySet := map[string]int{}
	for _, ex := range train {
		categorySet[ex.Category]++
	}
	categories := make([]string, 0, len(categorySet))
	for cat := range categorySet {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	catIndex := map[string]int{}
	priors := make([]float64, len(categories))
	for i, cat := range categories {
		catIndex[cat] = i
		priors[i] = math.Log(float64(categorySet[cat]) / docs)
	}

	// Accumulate TF-IDF mass per category per term, then convert to smoothed
	// log likelihoods.
	mass := make([][]float64, len(categories))
	totals := make([]float64, len(categories))
	for i := range mass {
		mass[i] = make([]float64, len(terms))
	}
	for i, ex := range train {
		ci := catIndex[ex.Category]
		counts := termCounts(tokenized[i], vocabulary)
		for j, tf := range counts {
			if tf == 0 {
				continue
			}
			w := tf * idf[j]
			mass[ci][j] += w
			totals[ci] += w
		}
	}

	weights := make([][]float64, len(categories))
	vocabSize := float64(len(terms))
	for ci := range categories {
		weights[ci] = make([]float64, len(terms))
		denom := totals[ci] + smoothing*vocabSize
		for j := range terms {
			weights[ci][j] = math.Log((mass[ci][j] + smoothing) / denom)
		}
	}

	return &domain.ModelSnapshot{
		Version:        uuid.NewString(),
		TrainedAt:      now,
		Vocabulary:     vocabulary,
		IDF:            idf,
		Categories:     categories,
		ClassPriors:    priors,
		FeatureWeights: weights,
	}
}

func termCounts(tokens []string, vocabulary map[string]int) []float64 {
	counts := make([]float64, len(vocabulary))
	for _, tok := range tokens {
		if idx, ok := vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	return counts
}

func accuracy(snap *domain.ModelSnapshot, holdout []domain.LabeledExample) float64 {
	if len(holdout) == 0 {
		return 0
	}
	correct := 0
	for _, ex := range holdout {
		category, _ := Classify(ex.Text, snap)
		if category == ex.Category {
			correct++
		}
	}
	return float64(correct) / float64(len(holdout))
}
