// Package runstore persists run records as JSON documents under a single
// directory, one file per run. The store is the source of truth for
// baseline lookups and history listings.
package runstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/restylelab/stylebench/internal/models"
)

// ErrRunAlreadyExists is returned when saving a run whose id is already
// stored and overwrite was not requested.
var ErrRunAlreadyExists = errors.New("run already exists")

// ErrNoBaseline is returned when a baseline lookup finds no prior run to
// compare against.
var ErrNoBaseline = errors.New("no baseline run available")

// ErrRunNotFound is returned when loading an id the store does not have.
var ErrRunNotFound = errors.New("run not found")

// Store reads and writes run records under a root directory.
type Store struct {
	root string
}

// New opens a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create run store: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the store's directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) pathFor(runID string) string {
	return filepath.Join(s.root, runID+".json")
}

// Save writes a run record. Saving an id that already exists fails with
// ErrRunAlreadyExists unless overwrite is set; persist retries after a
// failed write pass overwrite so they stay idempotent.
func (s *Store) Save(run *models.RunRecord, overwrite bool) error {
	if run.RunID == "" {
		return fmt.Errorf("run record has no id")
	}

	path := s.pathFor(run.RunID)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrRunAlreadyExists, run.RunID)
		}
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run %s: %w", run.RunID, err)
	}

	// Write via a temp file so a crashed write never leaves a truncated
	// record that a later baseline lookup would try to parse.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write run %s: %w", run.RunID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write run %s: %w", run.RunID, err)
	}
	return nil
}

// Load reads one run record by id.
func (s *Store) Load(runID string) (*models.RunRecord, error) {
	data, err := os.ReadFile(s.pathFor(runID))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}

	var run models.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return &run, nil
}

// List returns all stored runs sorted by start time, newest first.
func (s *Store) List() ([]*models.RunRecord, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}

	var runs []*models.RunRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		runID := strings.TrimSuffix(entry.Name(), ".json")
		run, err := s.Load(runID)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs, nil
}

// FindLatestPrior returns the most recent persisted run started before
// the given run, for use as an automatic baseline. Runs that never
// finished all phases are skipped.
func (s *Store) FindLatestPrior(current *models.RunRecord) (*models.RunRecord, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}

	for _, run := range runs {
		if run.RunID == current.RunID {
			continue
		}
		if run.Phase != models.PhasePersisted {
			continue
		}
		if !run.StartedAt.Before(current.StartedAt) {
			continue
		}
		return run, nil
	}
	return nil, ErrNoBaseline
}
