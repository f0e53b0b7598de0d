package domain

import "errors"

// CollectorOutcome summarizes one source's fate within a cycle.
type CollectorOutcome struct {
	SourceID       string
	Status         OutcomeStatus
	Collected      int
	SkippedEntries int
	Err            error
}

// OutcomeStatus enumerates the per-source results the pipeline reports.
type OutcomeStatus string

const (
	OutcomeOK          OutcomeStatus = "ok"
	OutcomeUnreachable OutcomeStatus = "unreachable"
	OutcomeParseFailed OutcomeStatus = "parse_failed"
	OutcomeBackedOff   OutcomeStatus = "backed_off"
)

// Failed reports whether the outcome counts toward the source's consecutive
// failure streak. A backed-off source was never attempted.
func (s OutcomeStatus) Failed() bool {
	return s == OutcomeUnreachable || s == OutcomeParseFailed
}

// Error taxonomy. Per-source and per-entry failures are isolated and counted;
// only store failures abort a cycle.
var (
	ErrSourceUnreachable        = errors.New("source unreachable")
	ErrFeedMalformed            = errors.New("feed malformed")
	ErrInsufficientTrainingData = errors.New("insufficient training data")
	ErrStoreUnavailable         = errors.New("store unavailable")
)
