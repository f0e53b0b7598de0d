package collector

import (
	"testing"
	"time"

	"NewsIntel/internal/domain"
)

func testPolicy() BackoffPolicy {
	return BackoffPolicy{
		BaseInterval:  15 * time.Minute,
		Factor:        2,
		MaxInterval:   4 * time.Hour,
		DegradedAfter: 3,
	}
}

func TestEffectiveInterval(t *testing.T) {
	t.Parallel()

	policy := testPolicy()
	cases := []struct {
		failures int
		want     time.Duration
	}{
		{0, 15 * time.Minute},
		{1, 30 * time.Minute},
		{2, time.Hour},
		{3, 2 * time.Hour},
		{4, 4 * time.Hour},
		{5, 4 * time.Hour},
		{10, 4 * time.Hour},
	}
	for _, tc := range cases {
		if got := policy.EffectiveInterval(tc.failures); got != tc.want {
			t.Errorf("EffectiveInterval(%d) = %v, want %v", tc.failures, got, tc.want)
		}
	}
}

func TestAdvanceFailureStreak(t *testing.T) {
	t.Parallel()

	policy := testPolicy()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	state := domain.SourceState{SourceID: "daily-mirror"}

	state = policy.Advance(state, domain.OutcomeUnreachable, now)
	if state.Failures != 1 || state.Degraded {
		t.Fatalf("after 1 failure: failures=%d degraded=%v", state.Failures, state.Degraded)
	}
	if want := now.Add(30 * time.Minute); !state.NextEligible.Equal(want) {
		t.Errorf("next eligible = %v, want %v", state.NextEligible, want)
	}

	state = policy.Advance(state, domain.OutcomeParseFailed, now)
	state = policy.Advance(state, domain.OutcomeUnreachable, now)
	if state.Failures != 3 || !state.Degraded {
		t.Fatalf("after 3 failures: failures=%d degraded=%v", state.Failures, state.Degraded)
	}
	if want := now.Add(2 * time.Hour); !state.NextEligible.Equal(want) {
		t.Errorf("next eligible = %v, want %v", state.NextEligible, want)
	}
}

func TestAdvanceSuccessResets(t *testing.T) {
	t.Parallel()

	policy := testPolicy()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	state := domain.SourceState{SourceID: "ada-derana", Failures: 4, Degraded: true, NextEligible: now.Add(4 * time.Hour)}

	state = policy.Advance(state, domain.OutcomeOK, now)
	if state.Failures != 0 || state.Degraded {
		t.Errorf("success should reset streak: failures=%d degraded=%v", state.Failures, state.Degraded)
	}
	if !state.LastSuccess.Equal(now) {
		t.Errorf("last success = %v, want %v", state.LastSuccess, now)
	}
	if !Eligible(state, now) {
		t.Error("source should be eligible immediately after success")
	}
}

func TestAdvanceBackedOffUntouched(t *testing.T) {
	t.Parallel()

	policy := testPolicy()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	state := domain.SourceState{SourceID: "ft-lk", Failures: 2, NextEligible: now.Add(time.Hour)}

	advanced := policy.Advance(state, domain.OutcomeBackedOff, now)
	if advanced.Failures != 2 {
		t.Errorf("failures = %d, backed-off source should keep its streak", advanced.Failures)
	}
	if !advanced.NextEligible.Equal(state.NextEligible) {
		t.Errorf("next eligible moved for a source that was never attempted")
	}
}

func TestEligible(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if !Eligible(domain.SourceState{}, now) {
		t.Error("zero state should be eligible")
	}
	if Eligible(domain.SourceState{NextEligible: now.Add(time.Minute)}, now) {
		t.Error("future next-eligible should not be eligible")
	}
	if !Eligible(domain.SourceState{NextEligible: now}, now) {
		t.Error("next-eligible exactly now should be eligible")
	}
}
