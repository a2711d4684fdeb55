package hada

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Client wraps the HTTP transport shared by the listing and detail fetchers.
// Every request carries the configured User-Agent and a Korean-first
// Accept-Language header, and blocks with a fixed timeout. There are no
// retries: a timeout or HTTP error is terminal for that one fetch.
type Client struct {
	http    *resty.Client
	baseURL *url.URL
}

// NewClient creates a client rooted at the aggregator's base URL.
func NewClient(baseURL, userAgent string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")

	return &Client{http: rc, baseURL: u}, nil
}

// BaseURL returns the aggregator front-page URL the client is rooted at.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// GetDocument fetches a page and parses it with goquery.
func (c *Client) GetDocument(pageURL string) (*goquery.Document, error) {
	resp, err := c.http.R().Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("HTTP error %d fetching %s", resp.StatusCode(), pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", pageURL, err)
	}

	return doc, nil
}

// Resolve joins a possibly relative href against the base URL.
func (c *Client) Resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return c.baseURL.ResolveReference(ref).String()
}

// Offsite reports whether an absolute URL points away from the aggregator's
// host. Subdomains of the aggregator's registrable domain count as on-site,
// so news.hada.io and hada.io agree.
func (c *Client) Offsite(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return !sameSite(u.Host, c.baseURL.Host)
}

// sameSite compares two hosts by their registrable domain (last two labels),
// ignoring ports.
func sameSite(a, b string) bool {
	return apexDomain(a) == apexDomain(b)
}

func apexDomain(host string) string {
	host = strings.ToLower(host)
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
