package post

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sungheyn/hadamirror/hada"
)

// TestSlug_Basic verifies ordinary titles become hyphenated names
func TestSlug_Basic(t *testing.T) {
	assert.Equal(t, "Hello-World", Slug("Hello, World!"))
	assert.Equal(t, "a-b-c", Slug("a  -  b --- c"))
	assert.Equal(t, "trimmed", Slug("  --trimmed--  "))
}

// TestSlug_Korean verifies Korean characters survive slug derivation
func TestSlug_Korean(t *testing.T) {
	assert.Equal(t, "오픈소스-LLM-비교", Slug("오픈소스 LLM 비교!"))
}

// TestSlug_Charset verifies the permitted-character property on varied input
func TestSlug_Charset(t *testing.T) {
	permitted := regexp.MustCompile(`^[\w가-힣-]*$`)
	titles := []string{
		"Rust 1.80: what's new?",
		"C++ / Go 비교 (2026년판)",
		`"Quotes" & <tags> & slashes///`,
		strings.Repeat("긴 제목 ", 60),
		"",
		"!!!",
	}

	for _, title := range titles {
		slug := Slug(title)
		assert.True(t, permitted.MatchString(slug), "slug %q has disallowed characters", slug)
		assert.LessOrEqual(t, utf8.RuneCountInString(slug), 100, "slug for %q too long", title)
		assert.False(t, strings.HasPrefix(slug, "-"), "slug %q has leading hyphen", slug)
		assert.False(t, strings.HasSuffix(slug, "-"), "slug %q has trailing hyphen", slug)
	}
}

// TestResolveTime_Hours verifies hour markers resolve with a clamped floor
func TestResolveTime_Hours(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 42, 30, 0, time.UTC)

	resolved := ResolveTime("6시간전", now)
	assert.Equal(t, time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC), resolved)

	// More hours than the day has left behind clamps to midnight, never negative
	resolved = ResolveTime("20시간전", now)
	assert.Equal(t, 0, resolved.Hour())
	assert.False(t, resolved.After(now))
}

// TestResolveTime_Days verifies day markers clamp at the first of the month
func TestResolveTime_Days(t *testing.T) {
	now := time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC)

	resolved := ResolveTime("2일전", now)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), resolved)

	resolved = ResolveTime("9일전", now)
	assert.Equal(t, 1, resolved.Day(), "day clamps at 1")
	assert.False(t, resolved.After(now))
}

// TestResolveTime_Minutes verifies minute markers and their floor
func TestResolveTime_Minutes(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 10, 45, 0, time.UTC)

	resolved := ResolveTime("5분전", now)
	assert.Equal(t, time.Date(2026, 8, 28, 15, 5, 0, 0, time.UTC), resolved)

	resolved = ResolveTime("30분전", now)
	assert.Equal(t, 0, resolved.Minute(), "minute clamps at 0")
	assert.False(t, resolved.After(now))
}

// TestResolveTime_Unrecognized verifies unknown markers resolve to now
func TestResolveTime_Unrecognized(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, now, ResolveTime("어제", now))
	assert.Equal(t, now, ResolveTime("", now))
}

// TestFromArticle verifies the rendered header and body for a full record
func TestFromArticle(t *testing.T) {
	a := &hada.Article{
		ID:          "12345",
		Title:       `The "Best" Tool`,
		Points:      42,
		Author:      "someone",
		TimeMarker:  "2시간전",
		ExternalURL: "https://example.com/tool",
		Description: "short snippet",
		Content:     "The full article body.",
		SourceURL:   "https://news.hada.io/topic?id=12345",
	}
	now := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)

	filename, content := FromArticle(a, now)

	assert.Equal(t, "2026-08-28-The-Best-Tool.md", filename)
	assert.Contains(t, content, "layout: post\n")
	assert.Contains(t, content, `title: "The \"Best\" Tool"`)
	assert.Contains(t, content, "date: 2026-08-28 12:00:00 +0900")
	assert.Contains(t, content, "categories: news\n")
	assert.Contains(t, content, "tags: [hada, mirror]\n")
	assert.Contains(t, content, "points: 42\n")
	assert.Contains(t, content, "author: someone\n")
	assert.Contains(t, content, "external_url: https://example.com/tool\n")
	assert.Contains(t, content, "original_url: https://news.hada.io/topic?id=12345\n")
	assert.Contains(t, content, "hada_id: 12345\n")
	assert.Contains(t, content, "원문: [https://example.com/tool](https://example.com/tool)\n\nThe full article body.")
}

// TestFromArticle_NoExternal verifies the external line is omitted entirely
func TestFromArticle_NoExternal(t *testing.T) {
	a := &hada.Article{
		ID:          "7",
		Title:       "Ask HN clone",
		Author:      "GeekNews",
		Description: "just a description",
		SourceURL:   "https://news.hada.io/topic?id=7",
	}
	now := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)

	_, content := FromArticle(a, now)

	assert.NotContains(t, content, "external_url:")
	assert.NotContains(t, content, "원문:")
	// No time marker means the publish time is now
	assert.Contains(t, content, "date: 2026-08-28 14:30:00 +0900")
	// Content empty, so the description is the body
	assert.Contains(t, content, "\n\njust a description\n")
}

// TestFromArticle_PublishedTime verifies a feed-supplied publish time dates
// the post instead of the sync time
func TestFromArticle_PublishedTime(t *testing.T) {
	published := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	a := &hada.Article{
		ID:          "55",
		Title:       "Feed entry",
		Author:      "GeekNews",
		Published:   &published,
		Description: "feed snippet",
		SourceURL:   "https://news.hada.io/topic?id=55",
	}
	now := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)

	filename, content := FromArticle(a, now)

	assert.Equal(t, "2026-08-20-Feed-entry.md", filename)
	assert.Contains(t, content, "date: 2026-08-20 09:30:00 +0900")
}

// TestFromArticle_MarkerBeatsPublished verifies the listing's relative-time
// marker wins over a feed publish time
func TestFromArticle_MarkerBeatsPublished(t *testing.T) {
	published := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	a := &hada.Article{
		ID:         "56",
		Title:      "Marked entry",
		Author:     "GeekNews",
		TimeMarker: "2시간전",
		Published:  &published,
		SourceURL:  "https://news.hada.io/topic?id=56",
	}
	now := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)

	filename, content := FromArticle(a, now)

	assert.Equal(t, "2026-08-28-Marked-entry.md", filename)
	assert.Contains(t, content, "date: 2026-08-28 12:00:00 +0900")
}

// TestFromManual verifies manual posts carry no mirror-specific fields
func TestFromManual(t *testing.T) {
	m := Manual{
		Title:      "My First Post",
		Categories: "blog",
		Tags:       []string{"go", "jekyll"},
		Body:       "Hello there.",
	}
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	filename, content := FromManual(m, now)

	assert.Equal(t, "2026-08-28-my-first-post.md", filename)
	assert.Contains(t, content, `title: "My First Post"`)
	assert.Contains(t, content, "categories: blog\n")
	assert.Contains(t, content, `tags: ["go", "jekyll"]`)
	assert.NotContains(t, content, "hada_id")
	assert.NotContains(t, content, "points")
	assert.NotContains(t, content, "external_url")
	assert.True(t, strings.HasSuffix(content, "Hello there.\n"))
}

// TestFromManual_NoTags verifies the tags line is omitted when empty
func TestFromManual_NoTags(t *testing.T) {
	_, content := FromManual(Manual{Title: "T", Categories: "blog", Body: "b"}, time.Now())

	assert.NotContains(t, content, "tags:")
}

// TestWrite verifies write-once semantics
func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "_posts")

	created, err := Write(dir, "2026-08-28-a.md", "first version\n")
	require.NoError(t, err)
	assert.True(t, created)

	// A second write is skipped and leaves the original content alone
	created, err = Write(dir, "2026-08-28-a.md", "second version\n")
	require.NoError(t, err)
	assert.False(t, created)

	raw, err := os.ReadFile(filepath.Join(dir, "2026-08-28-a.md"))
	require.NoError(t, err)
	assert.Equal(t, "first version\n", string(raw))
}
