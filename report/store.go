// Package report renders benchmark results: charts, console tables, and persisted records.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"scaling_bench_go/benchmark"
	"scaling_bench_go/stats"
)

// Run is the stored record of one complete benchmark.
type Run struct {
	ID         string                `json:"id"`
	Timestamp  time.Time             `json:"timestamp"`
	Subject    string                `json:"subject"`
	Complexity string                `json:"complexity"`
	Trials     int                   `json:"trials"`
	MaxValue   int                   `json:"max_value"`
	Seed       int64                 `json:"seed"`
	Host       benchmark.Environment `json:"host"`
	Results    stats.ResultSet       `json:"results"`
	Fit        stats.Fit             `json:"fit"`
}

// NewRun stamps a result set with a fresh id and the current host environment.
func NewRun(results stats.ResultSet) Run {
	host := benchmark.Snapshot()
	return Run{
		ID:        uuid.NewString(),
		Timestamp: host.Timestamp,
		Host:      host,
		Results:   results,
		Fit:       stats.LinearFit(results),
	}
}

// Store persists runs.
type Store interface {
	Save(run Run) error
	LoadAll() ([]Run, error)
	LoadLatest() (*Run, error)
	Load(idPrefix string) (*Run, error)
}

// FileStore keeps every run in a single JSON array file.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Save(run Run) error {
	runs, err := s.LoadAll()
	if err != nil {
		return err
	}
	runs = append(runs, run)

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal runs: %w", err)
	}
	return os.WriteFile(s.path, data, 0644)
}

// LoadAll returns every stored run, oldest first. A missing file is an empty store.
func (s *FileStore) LoadAll() ([]Run, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Run{}, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return []Run{}, nil
	}

	var runs []Run
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal runs: %w", err)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

// LoadLatest returns nil when the store is empty.
func (s *FileStore) LoadLatest() (*Run, error) {
	runs, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[len(runs)-1], nil
}

// Load finds a run by id or unique id prefix.
func (s *FileStore) Load(idPrefix string) (*Run, error) {
	runs, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	var found *Run
	for i := range runs {
		if strings.HasPrefix(runs[i].ID, idPrefix) {
			if found != nil {
				return nil, fmt.Errorf("run id prefix %q is ambiguous", idPrefix)
			}
			found = &runs[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("no run with id %q", idPrefix)
	}
	return found, nil
}
