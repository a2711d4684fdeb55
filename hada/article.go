// Package hada fetches and extracts articles from the news.hada.io
// aggregator. The remote markup is uncontrolled, so every extraction here is
// best-effort: a candidate that fails to parse is skipped, never fatal.
package hada

import (
	"strings"
	"time"
)

// Article is one remote article, progressively enriched across fetch stages.
// The listing fetcher fills the identity and metadata fields; the detail
// fetcher fills Content.
type Article struct {
	// ID is the numeric topic identifier from the source link. It is the
	// stable identity key and must be non-empty and unique within a run.
	ID    string
	Title string

	Points int
	Author string
	// TimeMarker is the raw relative-time string from the listing, e.g.
	// "6시간전". Empty when the listing carried none.
	TimeMarker string
	// Published is the absolute publish time the feed supplied. Nil for
	// HTML-scraped candidates, which only carry a TimeMarker.
	Published *time.Time

	// ExternalURL is set when the article links off-site.
	ExternalURL string

	// Description is the short snippet from the listing. Content is the
	// longer body extracted from the detail page, when available.
	Description string
	Content     string

	// SourceURL is the canonical detail-page URL.
	SourceURL string
}

// Body returns the richest text available for rendering: the detail-page
// content when extraction succeeded, otherwise the listing description.
func (a *Article) Body() string {
	if strings.TrimSpace(a.Content) != "" {
		return a.Content
	}
	return a.Description
}
