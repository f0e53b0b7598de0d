package domain

// CycleEntry pairs a fully enriched article with the signals detected for it.
// Article IDs are assigned at persist time; the store rewires each signal's
// ArticleID to the inserted row.
type CycleEntry struct {
	Article Article
	Signals []Signal
}

// CycleReport summarizes one full pass for logging and exit-code decisions.
type CycleReport struct {
	Collected  int
	Duplicates int
	Persisted  int
	Signals    int
	Outcomes   map[string]CollectorOutcome
}

// Degraded lists the sources that failed this cycle.
func (r CycleReport) Degraded() []string {
	var ids []string
	for id, outcome := range r.Outcomes {
		if outcome.Status.Failed() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Partial reports whether any source failed while the cycle itself completed.
func (r CycleReport) Partial() bool {
	return len(r.Degraded()) > 0
}
