// Package post renders Jekyll-style post files: a YAML frontmatter header,
// a blank line, then the body. Files are named from the publish date and a
// slug of the title, and are never overwritten once they exist.
package post

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sungheyn/hadamirror/hada"
)

// maxSlugLen caps derived filenames.
const maxSlugLen = 100

var (
	// slugDisallowed matches everything outside the permitted set: word
	// characters, whitespace, Korean syllables and hyphens.
	slugDisallowed = regexp.MustCompile(`[^\w\s가-힣-]`)
	slugSeparators = regexp.MustCompile(`[-\s]+`)
	markerPattern  = regexp.MustCompile(`(\d+)\s*(시간|일|분)\s*전`)
)

// Slug derives a filesystem- and URL-safe name from a title: disallowed
// characters stripped, whitespace and repeated separators collapsed to single
// hyphens, capped at 100 runes, no leading or trailing hyphens.
func Slug(title string) string {
	s := slugDisallowed.ReplaceAllString(title, "")
	s = slugSeparators.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	r := []rune(s)
	if len(r) > maxSlugLen {
		s = strings.Trim(string(r[:maxSlugLen]), "-")
	}
	return s
}

// ResolveTime resolves a relative-time marker like "6시간전", "2일전" or
// "30분전" against now. Fields are replaced rather than subtracted, clamped
// so the hour, day and minute never underflow -- the resolved time is never
// later than now. An unrecognized marker resolves to now.
func ResolveTime(marker string, now time.Time) time.Time {
	m := markerPattern.FindStringSubmatch(marker)
	if m == nil {
		return now
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return now
	}

	switch m[2] {
	case "시간":
		hour := now.Hour() - n
		if hour < 0 {
			hour = 0
		}
		return time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	case "일":
		day := now.Day() - n
		if day < 1 {
			day = 1
		}
		return time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, now.Location())
	case "분":
		minute := now.Minute() - n
		if minute < 0 {
			minute = 0
		}
		return time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), minute, 0, 0, now.Location())
	}

	return now
}

// FromArticle renders a mirrored article into a filename and file content.
// The publish date comes from the article's relative-time marker when one
// was captured, then from the feed-supplied publish time, otherwise from now.
func FromArticle(a *hada.Article, now time.Time) (filename, content string) {
	date := now
	if a.TimeMarker != "" {
		date = ResolveTime(a.TimeMarker, now)
	} else if a.Published != nil {
		date = a.Published.In(now.Location())
	}

	dateStr := date.Format("2006-01-02")
	timeStr := date.Format("15:04:05")
	filename = fmt.Sprintf("%s-%s.md", dateStr, Slug(a.Title))

	body := a.Body()
	if a.ExternalURL != "" {
		body = fmt.Sprintf("원문: [%s](%s)\n\n%s", a.ExternalURL, a.ExternalURL, body)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("layout: post\n")
	fmt.Fprintf(&b, "title: \"%s\"\n", escapeTitle(a.Title))
	fmt.Fprintf(&b, "date: %s %s +0900\n", dateStr, timeStr)
	b.WriteString("categories: news\n")
	b.WriteString("tags: [hada, mirror]\n")
	fmt.Fprintf(&b, "points: %d\n", a.Points)
	fmt.Fprintf(&b, "author: %s\n", a.Author)
	if a.ExternalURL != "" {
		fmt.Fprintf(&b, "external_url: %s\n", a.ExternalURL)
	}
	fmt.Fprintf(&b, "original_url: %s\n", a.SourceURL)
	fmt.Fprintf(&b, "hada_id: %s\n", a.ID)
	b.WriteString("---\n\n")
	b.WriteString(body)
	b.WriteString("\n")

	return filename, b.String()
}

// Manual describes a hand-authored post collected by the interactive tool.
type Manual struct {
	Title      string
	Categories string
	Tags       []string
	Body       string
}

// FromManual renders a manual post. The header carries none of the
// mirror-specific fields.
func FromManual(m Manual, now time.Time) (filename, content string) {
	dateStr := now.Format("2006-01-02")
	timeStr := now.Format("15:04:05")
	filename = fmt.Sprintf("%s-%s.md", dateStr, Slug(strings.ToLower(m.Title)))

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("layout: post\n")
	fmt.Fprintf(&b, "title: \"%s\"\n", escapeTitle(m.Title))
	fmt.Fprintf(&b, "date: %s %s +0900\n", dateStr, timeStr)
	fmt.Fprintf(&b, "categories: %s\n", m.Categories)
	if len(m.Tags) > 0 {
		quoted := make([]string, len(m.Tags))
		for i, tag := range m.Tags {
			quoted[i] = fmt.Sprintf("%q", tag)
		}
		fmt.Fprintf(&b, "tags: [%s]\n", strings.Join(quoted, ", "))
	}
	b.WriteString("---\n\n")
	b.WriteString(m.Body)
	b.WriteString("\n")

	return filename, b.String()
}

// Write stores a rendered post under dir, creating the directory if needed.
// It returns created=false without touching anything when the file already
// exists, which makes re-runs idempotent.
func Write(dir, filename, content string) (created bool, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("failed to create posts directory: %w", err)
	}

	path := filepath.Join(dir, filename)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("failed to write post: %w", err)
	}

	return true, nil
}

// escapeTitle makes a title safe inside a double-quoted YAML scalar: quotes
// escaped, newlines folded into spaces, whitespace normalized.
func escapeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", "")
	title = strings.ReplaceAll(title, "\n", " ")
	title = strings.Join(strings.Fields(title), " ")
	title = strings.ReplaceAll(title, `\`, `\\`)
	return strings.ReplaceAll(title, `"`, `\"`)
}
