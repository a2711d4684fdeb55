package hada

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedFetcher reads the aggregator's RSS feed as an alternate listing source.
// The gofeed library detects and normalizes both RSS and Atom, so the same
// code serves either format.
type FeedFetcher struct {
	parser   *gofeed.Parser
	feedURL  string
	siteName string
}

// NewFeedFetcher creates a feed-backed listing fetcher.
func NewFeedFetcher(feedURL, userAgent, siteName string, timeout time.Duration) *FeedFetcher {
	p := gofeed.NewParser()
	p.UserAgent = userAgent
	p.Client = &http.Client{Timeout: timeout}

	return &FeedFetcher{
		parser:   p,
		feedURL:  feedURL,
		siteName: siteName,
	}
}

// Fetch retrieves and converts the feed into candidate articles.
func (f *FeedFetcher) Fetch() ([]Article, error) {
	feed, err := f.parser.ParseURL(f.feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return f.Convert(feed), nil
}

// Convert maps feed entries to articles, deduplicated by topic id. Entries
// whose link carries no topic id are skipped.
func (f *FeedFetcher) Convert(feed *gofeed.Feed) []Article {
	articles := make([]Article, 0, len(feed.Items))
	seen := make(map[string]bool)

	for _, item := range feed.Items {
		id := topicIDFrom(item.Link)
		if id == "" {
			id = topicIDFrom(item.GUID)
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		title := normalizeSpace(item.Title)
		if title == "" {
			continue
		}

		// Feeds supply the snippet up front; the detail fetcher may
		// still replace it with the full body.
		desc := item.Description
		if desc == "" {
			desc = item.Content
		}

		author := f.siteName
		if item.Author != nil && item.Author.Name != "" {
			author = item.Author.Name
		}

		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}

		articles = append(articles, Article{
			ID:          id,
			Title:       title,
			Author:      author,
			Published:   published,
			Description: truncateRunes(normalizeSpace(desc), maxDescriptionLen),
			SourceURL:   item.Link,
		})
	}

	return articles
}

// topicIDFrom extracts the numeric topic id from a feed link or GUID.
func topicIDFrom(link string) string {
	m := topicIDPattern.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return m[1]
}
