package domain

import "time"

// SignalKind distinguishes the two derived record families.
type SignalKind string

const (
	SignalRisk        SignalKind = "risk"
	SignalOpportunity SignalKind = "opportunity"
)

// Signal is a derived risk/opportunity record attached to a classified
// article. Never mutated after creation; recomputation produces a superseding
// record instead.
type Signal struct {
	ID           string
	ArticleID    int64
	Kind         SignalKind
	Severity     float64
	MatchedTerms []string
	CreatedAt    time.Time
}
