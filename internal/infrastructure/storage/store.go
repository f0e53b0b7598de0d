// Package storage persists articles, signals, model snapshots, and source
// state in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"NewsIntel/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    source_id           TEXT NOT NULL,
    url                 TEXT NOT NULL,
    title               TEXT NOT NULL,
    body                TEXT NOT NULL DEFAULT '',
    published_at        TIMESTAMP NOT NULL,
    collected_at        TIMESTAMP NOT NULL,
    fingerprint         TEXT NOT NULL UNIQUE,
    category            TEXT NOT NULL DEFAULT '',
    category_confidence REAL NOT NULL DEFAULT 0,
    sentiment_score     REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS signals (
    id            TEXT PRIMARY KEY,
    article_id    INTEGER NOT NULL REFERENCES articles(id),
    kind          TEXT NOT NULL,
    severity      REAL NOT NULL,
    matched_terms TEXT NOT NULL,
    created_at    TIMESTAMP NOT NULL,
    UNIQUE (article_id, kind)
);

CREATE TABLE IF NOT EXISTS model_snapshots (
    version          TEXT PRIMARY KEY,
    trained_at       TIMESTAMP NOT NULL,
    payload          TEXT NOT NULL,
    holdout_accuracy REAL NOT NULL,
    active           INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS source_state (
    source_id     TEXT PRIMARY KEY,
    failures      INTEGER NOT NULL DEFAULT 0,
    degraded      INTEGER NOT NULL DEFAULT 0,
    last_attempt  TIMESTAMP,
    last_success  TIMESTAMP,
    next_eligible TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_articles_collected ON articles(collected_at);
CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source_id);
CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);
CREATE INDEX IF NOT EXISTS idx_signals_created ON signals(created_at);
`

// Store wraps a SQLite database and implements the repository ports.
type Store struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

// Open connects to the SQLite file at path, enables WAL mode, and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, builder: sq.StatementBuilder.PlaceholderFormat(sq.Question)}, nil
}

// PersistCycle writes one cycle's articles and signals in a single
// transaction: either everything lands or nothing does. Fingerprints already
// present are absorbed silently and their entries (signals included) are
// skipped. Returns how many articles and signals were actually inserted.
func (s *Store) PersistCycle(ctx context.Context, entries []domain.CycleEntry) (articles, signals int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: begin: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	for _, entry := range entries {
		id, inserted, err := insertArticleTx(ctx, tx, entry.Article)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: insert article: %v", domain.ErrStoreUnavailable, err)
		}
		if !inserted {
			continue
		}
		articles++

		for _, sig := range entry.Signals {
			sig.ArticleID = id
			ok, err := insertSignalTx(ctx, tx, sig)
			if err != nil {
				return 0, 0, fmt.Errorf("%w: insert signal: %v", domain.ErrStoreUnavailable, err)
			}
			if ok {
				signals++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("%w: commit: %v", domain.ErrStoreUnavailable, err)
	}
	return articles, signals, nil
}

// Ping verifies the store is reachable before a cycle starts.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
