package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"NewsIntel/internal/domain"
	"NewsIntel/internal/ports"
)

var _ ports.SnapshotRepository = (*Store)(nil)

// snapshotPayload serializes the model body; version, accuracy, and the
// active flag live in their own columns.
type snapshotPayload struct {
	Vocabulary     map[string]int `json:"vocabulary"`
	IDF            []float64      `json:"idf"`
	Categories     []string       `json:"categories"`
	ClassPriors    []float64      `json:"class_priors"`
	FeatureWeights [][]float64    `json:"feature_weights"`
}

// SaveSnapshot writes a new snapshot without touching the active pointer:
// write-then-swap, never swap-then-write.
func (s *Store) SaveSnapshot(ctx context.Context, snap *domain.ModelSnapshot) error {
	payload, err := json.Marshal(snapshotPayload{
		Vocabulary:     snap.Vocabulary,
		IDF:            snap.IDF,
		Categories:     snap.Categories,
		ClassPriors:    snap.ClassPriors,
		FeatureWeights: snap.FeatureWeights,
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO model_snapshots (version, trained_at, payload, holdout_accuracy, active)
		VALUES (?, ?, ?, ?, 0)`,
		snap.Version, snap.TrainedAt, string(payload), snap.HoldoutAccuracy,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// ActivateSnapshot atomically moves the active pointer to version. Readers
// see either the previous snapshot or the new one, never a partial state.
func (s *Store) ActivateSnapshot(ctx context.Context, version string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE model_snapshots SET active = 1 WHERE version = ?", version)
	if err != nil {
		return fmt.Errorf("activate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("snapshot %s does not exist", version)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE model_snapshots SET active = 0 WHERE version != ?", version); err != nil {
		return fmt.Errorf("deactivate previous: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ActiveSnapshot loads the currently active snapshot, or nil when no training
// run has completed yet.
func (s *Store) ActiveSnapshot(ctx context.Context) (*domain.ModelSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT version, trained_at, payload, holdout_accuracy
		FROM model_snapshots WHERE active = 1 LIMIT 1`)

	var snap domain.ModelSnapshot
	var payloadJSON string
	err := row.Scan(&snap.Version, &snap.TrainedAt, &payloadJSON, &snap.HoldoutAccuracy)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query active snapshot: %w", err)
	}

	var payload snapshotPayload
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	snap.Vocabulary = payload.Vocabulary
	snap.IDF = payload.IDF
	snap.Categories = payload.Categories
	snap.ClassPriors = payload.ClassPriors
	snap.FeatureWeights = payload.FeatureWeights
	return &snap, nil
}
