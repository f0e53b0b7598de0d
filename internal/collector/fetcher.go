package collector

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"NewsIntel/internal/domain"
	"NewsIntel/internal/ports"
)

// FeedClient fetches a source endpoint and normalizes its entries into raw
// articles. Feed format handling (RSS/Atom/JSON) is delegated to gofeed; this
// type owns transport, error taxonomy, and normalization.
type FeedClient struct {
	client     *http.Client
	parser     *gofeed.Parser
	maxEntries int
	now        func() time.Time
}

var _ ports.FeedFetcher = (*FeedClient)(nil)

// NewFeedClient wires an HTTP client; a nil client gets a 10s timeout default.
func NewFeedClient(client *http.Client, maxEntries int) *FeedClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &FeedClient{
		client:     client,
		parser:     gofeed.NewParser(),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Fetch pulls the source's feed and returns normalized articles plus a count
// of unparsable entries that were skipped. Network failures map to
// domain.ErrSourceUnreachable, an entirely malformed feed to
// domain.ErrFeedMalformed; individual bad entries are skipped and counted,
// never fatal.
func (f *FeedClient) Fetch(ctx context.Context, source domain.Source) ([]domain.RawArticle, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.Endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request for %s: %v", domain.ErrSourceUnreachable, source.ID, err)
	}
	req.Header.Set("User-Agent", "NewsIntel/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnreachable, source.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("%w: %s returned %s", domain.ErrSourceUnreachable, source.ID, resp.Status)
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", domain.ErrFeedMalformed, source.ID, err)
	}

	collectedAt := f.now().UTC()
	articles := make([]domain.RawArticle, 0, len(feed.Items))
	skipped := 0
	for _, item := range feed.Items {
		if f.maxEntries > 0 && len(articles) >= f.maxEntries {
			break
		}

		article, ok := normalizeItem(item, source.ID, collectedAt)
		if !ok {
			skipped++
			continue
		}
		articles = append(articles, article)
	}

	return articles, skipped, nil
}

// normalizeItem turns one feed entry into the canonical raw article shape.
// Entries without a usable title are unparsable and rejected.
func normalizeItem(item *gofeed.Item, sourceID string, collectedAt time.Time) (domain.RawArticle, bool) {
	if item == nil || strings.TrimSpace(item.Title) == "" {
		return domain.RawArticle{}, false
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}

	publishedAt := collectedAt
	if item.PublishedParsed != nil {
		publishedAt = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		publishedAt = item.UpdatedParsed.UTC()
	}

	return domain.RawArticle{
		SourceID:    sourceID,
		URL:         strings.TrimSpace(item.Link),
		Title:       strings.TrimSpace(item.Title),
		Body:        stripHTML(body),
		PublishedAt: publishedAt,
		CollectedAt: collectedAt,
	}, true
}

// stripHTML flattens entry markup to plain text; feeds routinely embed
// formatted excerpts in description fields.
func stripHTML(raw string) string {
	if raw == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
