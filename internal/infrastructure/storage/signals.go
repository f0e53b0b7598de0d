package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"NewsIntel/internal/domain"
	"NewsIntel/internal/ports"
)

var _ ports.SignalRepository = (*Store)(nil)

// InsertSignal persists a signal, deduplicating by (article_id, kind).
// Detection may intentionally re-fire on the same inputs; the unique index
// absorbs the repeat.
func (s *Store) InsertSignal(ctx context.Context, sig domain.Signal) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	inserted, err := insertSignalTx(ctx, tx, sig)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func insertSignalTx(ctx context.Context, tx *sql.Tx, sig domain.Signal) (bool, error) {
	terms, err := json.Marshal(sig.MatchedTerms)
	if err != nil {
		return false, fmt.Errorf("marshal terms: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO signals (id, article_id, kind, severity, matched_terms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (article_id, kind) DO NOTHING`,
		sig.ID, sig.ArticleID, string(sig.Kind), sig.Severity, string(terms), sig.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert signal: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeleteSignalsForArticle clears an article's signals so re-classification can
// supersede them.
func (s *Store) DeleteSignalsForArticle(ctx context.Context, articleID int64) error {
	query, args, err := s.builder.Delete("signals").Where(sq.Eq{"article_id": articleID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete signals: %w", err)
	}
	return nil
}

// SignalsByWindow returns signals of one kind created since the cutoff,
// newest first.
func (s *Store) SignalsByWindow(ctx context.Context, kind domain.SignalKind, since time.Time) ([]domain.Signal, error) {
	builder := s.builder.
		Select("id", "article_id", "kind", "severity", "matched_terms", "created_at").
		From("signals").
		Where(sq.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC")
	if kind != "" {
		builder = builder.Where(sq.Eq{"kind": string(kind)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var signals []domain.Signal
	for rows.Next() {
		var sig domain.Signal
		var kindStr, termsJSON string
		if err := rows.Scan(&sig.ID, &sig.ArticleID, &kindStr, &sig.Severity, &termsJSON, &sig.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Kind = domain.SignalKind(kindStr)
		if err := json.Unmarshal([]byte(termsJSON), &sig.MatchedTerms); err != nil {
			return nil, fmt.Errorf("unmarshal terms: %w", err)
		}
		signals = append(signals, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return signals, nil
}
