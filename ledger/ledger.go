// Package ledger persists the set of already-mirrored article identifiers as
// a flat JSON file, and heals the set from identifiers embedded in rendered
// posts left behind by a prior incomplete run.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

var hadaIDPattern = regexp.MustCompile(`hada_id:\s*(\d+)`)

// ledgerFile mirrors the on-disk JSON shape exactly:
// {"mirrored_ids": [...], "last_update": "..."|null}.
type ledgerFile struct {
	MirroredIDs []string `json:"mirrored_ids"`
	LastUpdate  *string  `json:"last_update"`
}

// Store is an in-memory view of the ledger, loaded once at process start and
// written back with Save. Mutation is append-only.
type Store struct {
	path string
	data ledgerFile
	seen map[string]bool
}

// Load reads the ledger at path. A missing file yields an empty ledger, not
// an error.
func Load(path string) (*Store, error) {
	s := &Store{
		path: path,
		data: ledgerFile{MirroredIDs: []string{}},
		seen: make(map[string]bool),
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse ledger: %w", err)
	}
	if s.data.MirroredIDs == nil {
		s.data.MirroredIDs = []string{}
	}
	for _, id := range s.data.MirroredIDs {
		s.seen[id] = true
	}

	return s, nil
}

// Contains reports whether the article id has already been mirrored.
func (s *Store) Contains(id string) bool {
	return s.seen[id]
}

// Add appends an id to the mirrored set. It returns false when the id was
// already present.
func (s *Store) Add(id string) bool {
	if id == "" || s.seen[id] {
		return false
	}
	s.seen[id] = true
	s.data.MirroredIDs = append(s.data.MirroredIDs, id)
	return true
}

// Len returns the number of mirrored ids.
func (s *Store) Len() int {
	return len(s.data.MirroredIDs)
}

// LastUpdate returns the recorded timestamp of the most recent successful
// sync, or the zero string when the ledger has never been updated.
func (s *Store) LastUpdate() string {
	if s.data.LastUpdate == nil {
		return ""
	}
	return *s.data.LastUpdate
}

// SetLastUpdate records the time of a successful sync.
func (s *Store) SetLastUpdate(t time.Time) {
	ts := t.Format(time.RFC3339)
	s.data.LastUpdate = &ts
}

// Save writes the ledger atomically: serialize to a temp file in the same
// directory, then rename over the target. An interrupted run leaves either
// the old ledger or the new one, never a partial write.
func (s *Store) Save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace ledger: %w", err)
	}

	return nil
}

// Reconcile scans the posts directory for hada_id headers and adds any
// identifiers the ledger is missing. It returns how many ids were healed.
// The scan is additive and side-effect-free: nothing is re-fetched and no
// file is touched. A missing directory means nothing to reconcile.
func (s *Store) Reconcile(postsDir string) (int, error) {
	entries, err := os.ReadDir(postsDir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read posts directory: %w", err)
	}

	added := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(postsDir, entry.Name()))
		if err != nil {
			log.Printf("WARN: could not read %s: %v", entry.Name(), err)
			continue
		}

		if m := hadaIDPattern.FindSubmatch(raw); m != nil {
			if s.Add(string(m[1])) {
				added++
			}
		}
	}

	return added, nil
}
