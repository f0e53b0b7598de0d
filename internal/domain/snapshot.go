package domain

import "time"

// ModelSnapshot is an immutable, versioned trained-model artifact. Exactly one
// snapshot is active at a time; a training run writes a new version and the
// swap to it is atomic.
type ModelSnapshot struct {
	Version   string
	TrainedAt time.Time

	// Vocabulary maps a term to its column index in the feature space.
	Vocabulary map[string]int

	// IDF holds the inverse-document-frequency weight per vocabulary index.
	IDF []float64

	// Categories is the fixed taxonomy in sorted order; parallel to
	// ClassPriors and the outer dimension of FeatureWeights.
	Categories []string

	// ClassPriors holds log prior probabilities per category.
	ClassPriors []float64

	// FeatureWeights holds smoothed log likelihoods per category per term.
	FeatureWeights [][]float64

	HoldoutAccuracy float64
}

// LabeledExample is one training record read from the store.
type LabeledExample struct {
	Text     string
	Category string
}
