package sentiment

import "testing"

func testScorer() *Scorer {
	return NewScorer(
		map[string]float64{"growth": 1, "record": 1.5, "recovery": 1},
		map[string]float64{"crisis": 2, "losses": 1, "shortage": 1.5},
	)
}

func TestScoreRange(t *testing.T) {
	t.Parallel()

	scorer := testScorer()
	cases := []struct {
		name string
		text string
		want float64
	}{
		{"neutral", "The committee met on Tuesday.", 0},
		{"all positive", "Record growth signals recovery.", 1},
		{"all negative", "Crisis deepens as losses mount.", -1},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := scorer.Score(tc.text); got != tc.want {
				t.Errorf("Score(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestScoreMixed(t *testing.T) {
	t.Parallel()

	// growth 1 vs crisis 2: (1-2)/(1+2).
	got := testScorer().Score("Growth slows amid the crisis.")
	want := -1.0 / 3.0
	if diff := got - want; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("Score() = %v, want %v", got, want)
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	t.Parallel()

	scorer := testScorer()
	if scorer.Score("RECORD GROWTH") != scorer.Score("record growth") {
		t.Error("scoring is case sensitive")
	}
}

func TestScoreDeterministic(t *testing.T) {
	t.Parallel()

	positive := map[string]float64{"growth": 1.1, "record": 1.5, "recovery": 0.7}
	negative := map[string]float64{"crisis": 2.3, "losses": 1.9, "shortage": 1.3}
	text := "Record growth and recovery despite the crisis, losses and a shortage."

	first := NewScorer(positive, negative).Score(text)
	for i := 0; i < 50; i++ {
		// Fresh scorers so map iteration order cannot leak into the sums.
		if got := NewScorer(positive, negative).Score(text); got != first {
			t.Fatalf("scores differ across runs: %v vs %v", got, first)
		}
	}
}

func TestScoreWordBoundaries(t *testing.T) {
	t.Parallel()

	if got := testScorer().Score("The crisishotline number changed."); got != 0 {
		t.Errorf("Score() = %v, substring matched across word boundary", got)
	}
}
