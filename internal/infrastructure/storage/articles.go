package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"NewsIntel/internal/domain"
	"NewsIntel/internal/ports"
)

var _ ports.ArticleRepository = (*Store)(nil)

// InsertArticle registers the article and its fingerprint atomically. A
// previously seen fingerprint is a no-op, not an error: identical collection
// cycles may overlap under retry.
func (s *Store) InsertArticle(ctx context.Context, article domain.Article) (int64, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	id, inserted, err := insertArticleTx(ctx, tx, article)
	if err != nil {
		return 0, false, err
	}
	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit: %w", err)
	}
	return id, inserted, nil
}

func insertArticleTx(ctx context.Context, tx *sql.Tx, article domain.Article) (int64, bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO articles
		    (source_id, url, title, body, published_at, collected_at, fingerprint,
		     category, category_confidence, sentiment_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (fingerprint) DO NOTHING`,
		article.SourceID, article.URL, article.Title, article.Body,
		article.PublishedAt, article.CollectedAt, article.Fingerprint,
		article.Category, article.CategoryConfidence, article.SentimentScore,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert article: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var id int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM articles WHERE fingerprint = ?", article.Fingerprint).Scan(&id)
		if err != nil {
			return 0, false, fmt.Errorf("resolve duplicate: %w", err)
		}
		return id, false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("last insert id: %w", err)
	}
	return id, true, nil
}

// HasFingerprint checks the persisted fingerprint index.
func (s *Store) HasFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM articles WHERE fingerprint = ?", fingerprint).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query fingerprint: %w", err)
	}
	return true, nil
}

// UpdateEnrichment rewrites an article's classification and sentiment fields,
// the only mutation persisted articles permit.
func (s *Store) UpdateEnrichment(ctx context.Context, id int64, category string, confidence, sentiment float64) error {
	query, args, err := s.builder.
		Update("articles").
		Set("category", category).
		Set("category_confidence", confidence).
		Set("sentiment_score", sentiment).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update enrichment: %w", err)
	}
	return nil
}

// ArticlesByWindow returns articles matching the query, newest first.
func (s *Store) ArticlesByWindow(ctx context.Context, q domain.ArticleQuery) ([]domain.Article, error) {
	builder := s.builder.
		Select("id", "source_id", "url", "title", "body", "published_at",
			"collected_at", "fingerprint", "category", "category_confidence", "sentiment_score").
		From("articles").
		OrderBy("collected_at DESC")

	if !q.Since.IsZero() {
		builder = builder.Where(sq.GtOrEq{"collected_at": q.Since})
	}
	if !q.Until.IsZero() {
		builder = builder.Where(sq.Lt{"collected_at": q.Until})
	}
	if q.SourceID != "" {
		builder = builder.Where(sq.Eq{"source_id": q.SourceID})
	}
	if q.Category != "" {
		builder = builder.Where(sq.Eq{"category": q.Category})
	}
	if q.Limit > 0 {
		builder = builder.Limit(uint64(q.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var art domain.Article
		err := rows.Scan(&art.ID, &art.SourceID, &art.URL, &art.Title, &art.Body,
			&art.PublishedAt, &art.CollectedAt, &art.Fingerprint,
			&art.Category, &art.CategoryConfidence, &art.SentimentScore)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, art)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

// LabeledCorpus reads every categorized article as a training example.
// Uncategorized articles carry no label worth learning from.
func (s *Store) LabeledCorpus(ctx context.Context) ([]domain.LabeledExample, error) {
	query, args, err := s.builder.
		Select("title", "body", "category").
		From("articles").
		Where(sq.NotEq{"category": ""}).
		Where(sq.NotEq{"category": domain.CategoryUncategorized}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query corpus: %w", err)
	}
	defer rows.Close()

	var corpus []domain.LabeledExample
	for rows.Next() {
		var title, body, category string
		if err := rows.Scan(&title, &body, &category); err != nil {
			return nil, fmt.Errorf("scan example: %w", err)
		}
		corpus = append(corpus, domain.LabeledExample{Text: title + "\n" + body, Category: category})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return corpus, nil
}

// CategoryDistribution counts articles per category collected since the
// cutoff.
func (s *Store) CategoryDistribution(ctx context.Context, since time.Time) (map[string]int, error) {
	query, args, err := s.builder.
		Select("category", "COUNT(*)").
		From("articles").
		Where(sq.GtOrEq{"collected_at": since}).
		Where(sq.NotEq{"category": ""}).
		GroupBy("category").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query distribution: %w", err)
	}
	defer rows.Close()

	dist := map[string]int{}
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		dist[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return dist, nil
}

// SourceDistribution counts articles per source collected since the cutoff.
func (s *Store) SourceDistribution(ctx context.Context, since time.Time) (map[string]int, error) {
	query, args, err := s.builder.
		Select("source_id", "COUNT(*)").
		From("articles").
		Where(sq.GtOrEq{"collected_at": since}).
		GroupBy("source_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query source distribution: %w", err)
	}
	defer rows.Close()

	dist := map[string]int{}
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("scan source distribution: %w", err)
		}
		dist[source] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return dist, nil
}

// CategorySentiment averages sentiment per category since the cutoff.
func (s *Store) CategorySentiment(ctx context.Context, since time.Time) (map[string]float64, error) {
	query, args, err := s.builder.
		Select("category", "AVG(sentiment_score)").
		From("articles").
		Where(sq.GtOrEq{"collected_at": since}).
		Where(sq.NotEq{"category": ""}).
		GroupBy("category").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query category sentiment: %w", err)
	}
	defer rows.Close()

	averages := map[string]float64{}
	for rows.Next() {
		var category string
		var avg float64
		if err := rows.Scan(&category, &avg); err != nil {
			return nil, fmt.Errorf("scan category sentiment: %w", err)
		}
		averages[category] = avg
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return averages, nil
}
