// Package dedup computes content fingerprints and collapses republished
// stories to one canonical record.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"NewsIntel/internal/domain"
)

// Fingerprint hashes the normalized title+body concatenation. The hash is
// source-independent so identical stories republished by two sources collapse
// to one record.
func Fingerprint(title, body string) string {
	normalized := normalize(title) + "\n" + normalize(body)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Canonicalize reduces a batch of raw articles to at most one per fingerprint.
// First-seen wins; ties break by earliest PublishedAt, then earliest
// CollectedAt. The returned map carries each survivor's fingerprint.
func Canonicalize(batch []domain.RawArticle) ([]domain.RawArticle, map[int]string) {
	type candidate struct {
		article domain.RawArticle
		order   int
	}

	byPrint := map[string]candidate{}
	orderOf := map[string]int{}
	next := 0

	for i, art := range batch {
		fp := Fingerprint(art.Title, art.Body)
		current, ok := byPrint[fp]
		if !ok {
			byPrint[fp] = candidate{article: art, order: i}
			orderOf[fp] = next
			next++
			continue
		}
		if earlier(art, current.article) {
			byPrint[fp] = candidate{article: art, order: current.order}
		}
	}

	prints := make([]string, 0, len(byPrint))
	for fp := range byPrint {
		prints = append(prints, fp)
	}
	sort.Slice(prints, func(i, j int) bool { return orderOf[prints[i]] < orderOf[prints[j]] })

	survivors := make([]domain.RawArticle, 0, len(prints))
	fingerprints := make(map[int]string, len(prints))
	for i, fp := range prints {
		survivors = append(survivors, byPrint[fp].article)
		fingerprints[i] = fp
	}
	return survivors, fingerprints
}

func earlier(a, b domain.RawArticle) bool {
	if !a.PublishedAt.Equal(b.PublishedAt) {
		return a.PublishedAt.Before(b.PublishedAt)
	}
	return a.CollectedAt.Before(b.CollectedAt)
}
