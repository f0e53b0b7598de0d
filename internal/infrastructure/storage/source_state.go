package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"NewsIntel/internal/domain"
	"NewsIntel/internal/ports"
)

var _ ports.SourceStateRepository = (*Store)(nil)

// SourceStates loads the persisted backoff state for every known source.
func (s *Store) SourceStates(ctx context.Context) (map[string]domain.SourceState, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_id, failures, degraded, last_attempt, last_success, next_eligible
		FROM source_state`)
	if err != nil {
		return nil, fmt.Errorf("query source state: %w", err)
	}
	defer rows.Close()

	states := map[string]domain.SourceState{}
	for rows.Next() {
		var state domain.SourceState
		var degraded int
		var lastAttempt, lastSuccess, nextEligible sql.NullTime
		if err := rows.Scan(&state.SourceID, &state.Failures, &degraded, &lastAttempt, &lastSuccess, &nextEligible); err != nil {
			return nil, fmt.Errorf("scan source state: %w", err)
		}
		state.Degraded = degraded != 0
		state.LastAttempt = nullTime(lastAttempt)
		state.LastSuccess = nullTime(lastSuccess)
		state.NextEligible = nullTime(nextEligible)
		states[state.SourceID] = state
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return states, nil
}

// SaveSourceState upserts one source's backoff state.
func (s *Store) SaveSourceState(ctx context.Context, state domain.SourceState) error {
	degraded := 0
	if state.Degraded {
		degraded = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO source_state (source_id, failures, degraded, last_attempt, last_success, next_eligible)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_id) DO UPDATE SET
		    failures = excluded.failures,
		    degraded = excluded.degraded,
		    last_attempt = excluded.last_attempt,
		    last_success = excluded.last_success,
		    next_eligible = excluded.next_eligible`,
		state.SourceID, state.Failures, degraded,
		state.LastAttempt, state.LastSuccess, state.NextEligible,
	)
	if err != nil {
		return fmt.Errorf("upsert source state: %w", err)
	}
	return nil
}

func nullTime(v sql.NullTime) time.Time {
	if v.Valid {
		return v.Time
	}
	return time.Time{}
}
