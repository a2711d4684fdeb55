package hada

import (
	"errors"
	"log"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// minContentLen rejects extractions that only caught page chrome.
const minContentLen = 40

var (
	contentClassPattern = regexp.MustCompile(`(?i)markdown|content|article|post`)
	chromeTextPattern   = regexp.MustCompile(`▲|(?i:points)|\bby\b|시간\s?전|일\s?전|분\s?전|댓글`)
	blankLinesPattern   = regexp.MustCompile(`\n{3,}`)
)

// ExtractStrategy is one named way of pulling the main body out of a detail
// page. Strategies are tried in order; the first non-empty result wins.
type ExtractStrategy interface {
	Name() string
	Extract(doc *goquery.Document, pageURL string) (string, error)
}

// DetailFetcher retrieves an article's detail page and fills in its Content.
type DetailFetcher struct {
	client     *Client
	strategies []ExtractStrategy
	maxLen     int
}

// NewDetailFetcher creates a detail fetcher with the default strategy order:
// structural container first, readability second, outbound-link sibling scan
// last.
func NewDetailFetcher(client *Client, maxLen int) *DetailFetcher {
	converter := md.NewConverter("", true, nil)

	return &DetailFetcher{
		client: client,
		maxLen: maxLen,
		strategies: []ExtractStrategy{
			&containerStrategy{converter: converter},
			&readabilityStrategy{},
			&siblingScanStrategy{client: client},
		},
	}
}

// Enrich fetches the article's detail page and populates Content. Any
// failure, fetch or parse, degrades the article to its listing description;
// the batch always continues.
func (d *DetailFetcher) Enrich(a *Article) {
	doc, err := d.client.GetDocument(a.SourceURL)
	if err != nil {
		log.Printf("WARN: failed to fetch detail page for topic %s: %v", a.ID, err)
		a.Content = a.Description
		return
	}

	text, strategy := d.extract(doc, a.SourceURL)
	if text == "" {
		log.Printf("WARN: no strategy extracted content for topic %s", a.ID)
		a.Content = a.Description
		return
	}

	log.Printf("INFO: extracted topic %s via %s strategy", a.ID, strategy)
	a.Content = text
}

// extract runs the strategy chain and returns the cleaned body plus the name
// of the strategy that produced it.
func (d *DetailFetcher) extract(doc *goquery.Document, pageURL string) (string, string) {
	for _, s := range d.strategies {
		text, err := s.Extract(doc, pageURL)
		if err != nil {
			continue
		}
		text = cleanBody(text)
		if utf8.RuneCountInString(text) < minContentLen {
			continue
		}
		return truncateRunes(text, d.maxLen), s.Name()
	}
	return "", ""
}

// cleanBody collapses runs of 3+ blank lines to one blank line and trims the
// edges.
func cleanBody(text string) string {
	return strings.TrimSpace(blankLinesPattern.ReplaceAllString(text, "\n\n"))
}

// containerStrategy locates the principal content container by class, id or
// element heuristics, strips navigation and UI chrome, and converts the rest
// to markdown.
type containerStrategy struct {
	converter *md.Converter
}

func (s *containerStrategy) Name() string { return "container" }

func (s *containerStrategy) Extract(doc *goquery.Document, _ string) (string, error) {
	container := findContentContainer(doc)
	if container == nil {
		return "", errors.New("no content container found")
	}

	container.Find("nav, header, footer, aside, script, style").Remove()

	// Vote counts, "by" lines, relative-time markers and comment counts
	// live in short inline elements inside the container.
	container.Find("span, a, div").Each(func(_ int, el *goquery.Selection) {
		text := normalizeSpace(el.Text())
		if text != "" && utf8.RuneCountInString(text) < 80 && chromeTextPattern.MatchString(text) {
			el.Remove()
		}
	})

	return s.converter.Convert(container), nil
}

// findContentContainer tries, in order: a div with a content-flavored class,
// the page's article or main element, a div with a content-flavored id, and
// finally the first div bearing a substantial amount of text.
func findContentContainer(doc *goquery.Document) *goquery.Selection {
	if sel := firstWithAttrMatch(doc, "div", "class", contentClassPattern); sel != nil {
		return sel
	}
	if sel := doc.Find("article").First(); sel.Length() > 0 {
		return sel
	}
	if sel := doc.Find("main").First(); sel.Length() > 0 {
		return sel
	}
	if sel := firstWithAttrMatch(doc, "div", "id", contentClassPattern); sel != nil {
		return sel
	}

	var largest *goquery.Selection
	doc.Find("div").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		if utf8.RuneCountInString(strings.TrimSpace(div.Text())) > 200 {
			largest = div
			return false
		}
		return true
	})
	return largest
}

func firstWithAttrMatch(doc *goquery.Document, tag, attr string, pattern *regexp.Regexp) *goquery.Selection {
	var match *goquery.Selection
	doc.Find(tag).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		val, ok := el.Attr(attr)
		if ok && pattern.MatchString(val) {
			match = el
			return false
		}
		return true
	})
	return match
}

// readabilityStrategy hands the whole page to go-readability, which keeps the
// largest text-bearing block.
type readabilityStrategy struct{}

func (s *readabilityStrategy) Name() string { return "readability" }

func (s *readabilityStrategy) Extract(doc *goquery.Document, pageURL string) (string, error) {
	html, err := doc.Html()
	if err != nil {
		return "", err
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return "", err
	}

	return article.TextContent, nil
}

// siblingScanStrategy handles the feed-sourced page shape: the body is the
// run of block elements following the first outbound link.
type siblingScanStrategy struct {
	client *Client
}

func (s *siblingScanStrategy) Name() string { return "sibling-scan" }

func (s *siblingScanStrategy) Extract(doc *goquery.Document, _ string) (string, error) {
	var anchor *goquery.Selection
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.HasPrefix(href, "http") && s.client.Offsite(href) {
			anchor = a
			return false
		}
		return true
	})
	if anchor == nil {
		return "", errors.New("no outbound link found")
	}

	var parts []string
	anchor.Parent().NextAll().Filter("p, ul, ol, blockquote, pre").Each(func(_ int, el *goquery.Selection) {
		if text := strings.TrimSpace(el.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		return "", errors.New("no content after outbound link")
	}

	return strings.Join(parts, "\n\n"), nil
}
