package collector

import (
	"math"
	"time"

	"NewsIntel/internal/domain"
)

// BackoffPolicy governs the per-source failure state machine:
// healthy -> degraded(n) -> degraded(n+1) ... until one success resets.
type BackoffPolicy struct {
	BaseInterval  time.Duration
	Factor        float64
	MaxInterval   time.Duration
	DegradedAfter int
}

// EffectiveInterval returns the polling interval after n consecutive
// failures: base * factor^n, capped at MaxInterval.
func (p BackoffPolicy) EffectiveInterval(failures int) time.Duration {
	if failures <= 0 {
		return p.BaseInterval
	}
	scaled := float64(p.BaseInterval) * math.Pow(p.Factor, float64(failures))
	if p.MaxInterval > 0 && scaled > float64(p.MaxInterval) {
		return p.MaxInterval
	}
	return time.Duration(scaled)
}

// Advance folds one cycle's outcome into the source state. Success resets the
// streak; failure extends it and pushes the next-eligible time out by the
// effective interval. Backed-off sources were not attempted, so their state
// is untouched.
func (p BackoffPolicy) Advance(state domain.SourceState, status domain.OutcomeStatus, now time.Time) domain.SourceState {
	state.LastAttempt = now

	switch {
	case status == domain.OutcomeBackedOff:
		return state
	case status.Failed():
		state.Failures++
		state.Degraded = state.Failures >= p.DegradedAfter
		state.NextEligible = now.Add(p.EffectiveInterval(state.Failures))
	default:
		state.Failures = 0
		state.Degraded = false
		state.LastSuccess = now
		state.NextEligible = now
	}
	return state
}

// Eligible reports whether the source may be visited this cycle.
func Eligible(state domain.SourceState, now time.Time) bool {
	return !state.NextEligible.After(now)
}
