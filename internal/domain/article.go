package domain

import "time"

// CategoryUncategorized is the reserved label for articles whose text shares
// no vocabulary with the active model snapshot.
const CategoryUncategorized = "uncategorized"

// RawArticle is the normalized shape produced by the collector before
// deduplication: plain-text title and body, no enrichment yet.
type RawArticle struct {
	SourceID    string
	URL         string
	Title       string
	Body        string
	PublishedAt time.Time
	CollectedAt time.Time
}

// Article is the canonical persisted record. Identity is Fingerprint, not URL:
// sources republish identical stories under different URLs.
type Article struct {
	ID          int64
	SourceID    string
	URL         string
	Title       string
	Body        string
	PublishedAt time.Time
	CollectedAt time.Time
	Fingerprint string

	// Enrichment fields; the only mutable part of a persisted article.
	Category           string
	CategoryConfidence float64
	SentimentScore     float64
}

// Source is a configured feed endpoint. Created at startup from the registry,
// mutated only by operator action.
type Source struct {
	ID       string
	Name     string
	Endpoint string
	Enabled  bool
}

// SourceState tracks per-source collection health across cycles.
type SourceState struct {
	SourceID     string
	Failures     int
	Degraded     bool
	LastAttempt  time.Time
	LastSuccess  time.Time
	NextEligible time.Time
}
