package domain

import "time"

// ArticleQuery selects persisted articles by time window, source, and
// category. Zero values mean "no constraint".
type ArticleQuery struct {
	Since    time.Time
	Until    time.Time
	SourceID string
	Category string
	Limit    int
}
