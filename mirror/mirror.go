// Package mirror drives one sync pass: reconcile the ledger against files on
// disk, fetch the listing, filter already-mirrored candidates, enrich the
// rest from their detail pages, render posts, and persist the ledger.
package mirror

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sungheyn/hadamirror/archive"
	"github.com/sungheyn/hadamirror/config"
	"github.com/sungheyn/hadamirror/hada"
	"github.com/sungheyn/hadamirror/ledger"
	"github.com/sungheyn/hadamirror/post"
)

// ListingSource produces candidate articles from the remote aggregator.
type ListingSource interface {
	Fetch() ([]hada.Article, error)
}

// DetailSource fills in the full body for one candidate. Implementations
// never fail the candidate: on any error the listing description stands.
type DetailSource interface {
	Enrich(a *hada.Article)
}

// Summary reports what one sync run did.
type Summary struct {
	// RunID tags this run in logs and archive rows.
	RunID string
	// Found is the number of candidates on the listing, New the number
	// surviving the ledger filter.
	Found int
	New   int

	Created int
	Skipped int
	Failed  int
}

// Attempted returns how many candidates the run tried to mirror.
func (s Summary) Attempted() int {
	return s.Created + s.Skipped + s.Failed
}

// AllFailed reports the one condition that warrants a non-zero exit: at
// least one article was attempted and none produced a post.
func (s Summary) AllFailed() bool {
	return s.Failed > 0 && s.Created == 0 && s.Skipped == 0
}

// Syncer orchestrates the mirror pipeline. It is single-threaded and
// sequential; periodic execution belongs to an external scheduler.
type Syncer struct {
	cfg     config.Config
	ledger  *ledger.Store
	listing ListingSource
	detail  DetailSource
	// arch is optional; a nil archive disables metadata recording.
	arch *archive.Store

	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a syncer. arch may be nil.
func New(cfg config.Config, led *ledger.Store, listing ListingSource, detail DetailSource, arch *archive.Store) *Syncer {
	return &Syncer{
		cfg:     cfg,
		ledger:  led,
		listing: listing,
		detail:  detail,
		arch:    arch,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Run executes one sync pass. An empty listing or an all-filtered batch is a
// normal no-op. Per-article failures are isolated; only ledger persistence
// errors propagate.
func (s *Syncer) Run() (Summary, error) {
	sum := Summary{RunID: uuid.New().String()}
	log.Printf("INFO: starting sync run %s", sum.RunID)

	healed, err := s.ledger.Reconcile(s.cfg.PostsDir)
	if err != nil {
		return sum, fmt.Errorf("failed to reconcile ledger: %w", err)
	}
	if healed > 0 {
		log.Printf("INFO: reconciled %d existing posts missing from the ledger", healed)
		if err := s.ledger.Save(); err != nil {
			return sum, fmt.Errorf("failed to save reconciled ledger: %w", err)
		}
	}

	articles, err := s.listing.Fetch()
	if err != nil {
		// A listing failure means "nothing this run", not an error.
		log.Printf("WARN: listing fetch failed: %v", err)
		return sum, nil
	}
	sum.Found = len(articles)
	if sum.Found == 0 {
		log.Printf("INFO: no articles found on the listing")
		return sum, nil
	}

	fresh := make([]hada.Article, 0, len(articles))
	for _, a := range articles {
		if !s.ledger.Contains(a.ID) {
			fresh = append(fresh, a)
		}
	}
	sum.New = len(fresh)
	if sum.New == 0 {
		log.Printf("INFO: all %d articles already mirrored", sum.Found)
		return sum, nil
	}

	// Higher topic ids are newer; process newest first.
	sort.Slice(fresh, func(i, j int) bool {
		return numericID(fresh[i].ID) > numericID(fresh[j].ID)
	})

	var mirrored []string
	for i := range fresh {
		a := &fresh[i]
		if i > 0 {
			// Politeness throttle between consecutive detail fetches.
			s.sleep(s.cfg.FetchDelay)
		}

		s.detail.Enrich(a)

		filename, content := post.FromArticle(a, s.now())
		created, err := post.Write(s.cfg.PostsDir, filename, content)
		if err != nil {
			log.Printf("ERROR: failed to render topic %s: %v", a.ID, err)
			sum.Failed++
			continue
		}
		if !created {
			// The file predates this run; mark the id mirrored so the
			// ledger stops offering it.
			log.Printf("INFO: post already exists for topic %s (%s)", a.ID, filename)
			sum.Skipped++
			mirrored = append(mirrored, a.ID)
			continue
		}

		log.Printf("INFO: created %s", filename)
		sum.Created++
		mirrored = append(mirrored, a.ID)
		s.record(a, filename, sum.RunID)
	}

	if len(mirrored) > 0 {
		for _, id := range mirrored {
			s.ledger.Add(id)
		}
		s.ledger.SetLastUpdate(s.now())
		if err := s.ledger.Save(); err != nil {
			return sum, fmt.Errorf("failed to save ledger: %w", err)
		}
	}

	log.Printf("INFO: sync run %s done: %d created, %d skipped, %d failed",
		sum.RunID, sum.Created, sum.Skipped, sum.Failed)
	return sum, nil
}

// record archives one mirrored article. Archive failures are logged and
// never affect the run.
func (s *Syncer) record(a *hada.Article, filename, runID string) {
	if s.arch == nil {
		return
	}

	err := s.arch.Record(archive.Entry{
		ID:          a.ID,
		Title:       a.Title,
		Points:      a.Points,
		Author:      a.Author,
		ExternalURL: a.ExternalURL,
		SourceURL:   a.SourceURL,
		Filename:    filename,
		RunID:       runID,
		MirroredAt:  s.now(),
	})
	if err != nil {
		log.Printf("WARN: failed to archive topic %s: %v", a.ID, err)
	}
}

// numericID parses a topic id for sorting; malformed ids sort last.
func numericID(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return -1
	}
	return n
}
