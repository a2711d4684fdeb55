package hada

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	// maxDescriptionLen caps the listing snippet.
	maxDescriptionLen = 500
	// minTitleLen drops link fragments that are too short to be a title.
	minTitleLen = 3
)

var (
	topicIDPattern    = regexp.MustCompile(`id=(\d+)`)
	pointsPattern     = regexp.MustCompile(`(?i)(\d+)\s*points?`)
	authorPattern     = regexp.MustCompile(`(?i)by\s+([a-zA-Z0-9가-힣_]+)`)
	timeMarkerPattern = regexp.MustCompile(`(\d+(?:시간|일|분)\s?전)`)
	descClassPattern  = regexp.MustCompile(`(?i)desc|summary|content|text`)
)

// ListingFetcher extracts candidate articles from the aggregator front page.
type ListingFetcher struct {
	client   *Client
	siteName string
}

// NewListingFetcher creates a listing fetcher. siteName is the author
// fallback for rows without a "by" marker.
func NewListingFetcher(client *Client, siteName string) *ListingFetcher {
	return &ListingFetcher{client: client, siteName: siteName}
}

// Fetch retrieves the front page and returns deduplicated candidates with at
// least ID, Title and SourceURL populated. A total fetch failure returns an
// error; callers treat it as "nothing to do this run", not as fatal.
func (f *ListingFetcher) Fetch() ([]Article, error) {
	doc, err := f.client.GetDocument(f.client.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	return f.Extract(doc), nil
}

// Extract pulls candidate articles out of a parsed listing page. Malformed
// rows are logged and skipped; one bad entry never aborts the batch.
func (f *ListingFetcher) Extract(doc *goquery.Document) []Article {
	var articles []Article
	seen := make(map[string]bool)

	doc.Find(`a[href*="topic?id="]`).Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}

		m := topicIDPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		id := m[1]

		// Comment links reference the same topic id.
		if strings.Contains(href, "go=comments") || seen[id] {
			return
		}
		seen[id] = true

		title := normalizeSpace(link.Text())
		if title == "" {
			// The title may sit in a child element rather than the
			// link's direct text.
			title = normalizeSpace(link.Find("span, div, strong, b").First().Text())
		}
		if utf8.RuneCountInString(title) < minTitleLen {
			log.Printf("WARN: skipping topic %s: no usable title", id)
			return
		}

		container := containerOf(link)
		containerText := normalizeSpace(container.Text())

		article := Article{
			ID:        id,
			Title:     title,
			Author:    f.siteName,
			SourceURL: f.client.Resolve(href),
		}

		if pm := pointsPattern.FindStringSubmatch(containerText); pm != nil {
			if n, err := strconv.Atoi(pm[1]); err == nil {
				article.Points = n
			}
		}
		if am := authorPattern.FindStringSubmatch(containerText); am != nil {
			article.Author = am[1]
		}
		if tm := timeMarkerPattern.FindStringSubmatch(containerText); tm != nil {
			article.TimeMarker = tm[1]
		}

		article.ExternalURL = f.findExternalURL(container)
		article.Description = findDescription(container)

		articles = append(articles, article)
	})

	return articles
}

// containerOf returns the nearest structural ancestor of a listing link, the
// element whose full text carries the row's metadata.
func containerOf(link *goquery.Selection) *goquery.Selection {
	container := link.ParentsFiltered("tr, li, div").First()
	if container.Length() == 0 {
		container = link.Parent()
	}
	return container
}

// findExternalURL scans the row for the first outbound link, either a direct
// off-site href or a data-url attribute.
func (f *ListingFetcher) findExternalURL(container *goquery.Selection) string {
	var external string
	container.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.HasPrefix(href, "http") && f.client.Offsite(href) {
			external = href
			return false
		}
		if dataURL, ok := a.Attr("data-url"); ok && dataURL != "" {
			external = dataURL
			return false
		}
		return true
	})
	return external
}

// findDescription looks for a short snippet near the row: first inside the
// container, then in its following siblings, matching description-flavored
// class names.
func findDescription(container *goquery.Selection) string {
	desc := firstDescIn(container.Find("p, div, span"))
	if desc == "" {
		container.NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
			if hasDescClass(sib) {
				desc = strings.TrimSpace(sib.Text())
				return false
			}
			desc = firstDescIn(sib.Find("p, div, span"))
			return desc == ""
		})
	}
	return truncateRunes(desc, maxDescriptionLen)
}

func firstDescIn(sel *goquery.Selection) string {
	var desc string
	sel.EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if hasDescClass(el) {
			desc = strings.TrimSpace(el.Text())
			return false
		}
		return true
	})
	return desc
}

func hasDescClass(el *goquery.Selection) bool {
	class, ok := el.Attr("class")
	return ok && descClassPattern.MatchString(class)
}

// normalizeSpace collapses all runs of whitespace, including newlines, into
// single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes caps s at n runes without splitting a multi-byte character.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
