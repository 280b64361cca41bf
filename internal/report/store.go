package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/girishnp17/avaa-interview-engine/internal/models"
)

var (
	ErrInvalidName = errors.New("invalid report name")
	ErrNotFound    = errors.New("report not found")
)

// Store persists completed interview records as JSON files in a single
// directory. The directory is created lazily on the first save.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir}
}

// Save writes the record as interview_<timestamp>.json and returns the
// filename (relative to the store directory).
func (s *Store) Save(record models.InterviewRecord) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	name := fmt.Sprintf("interview_%s.json", time.Now().Format("20060102_150405"))
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal interview record: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", name, err)
	}
	return name, nil
}

// Open returns the raw JSON of a previously saved report. The name must be a
// bare filename; anything that resolves outside the store directory is
// rejected.
func (s *Store) Open(name string) ([]byte, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !strings.HasSuffix(name, ".json") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read report %s: %w", name, err)
	}
	return data, nil
}

// List returns the saved report filenames, newest first by name.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read report directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), "interview_") && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names, nil
}
