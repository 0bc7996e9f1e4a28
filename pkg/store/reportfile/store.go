package reportfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/de-tools/cloud-optimizer/pkg/models/domain"
)

const filenameLayout = "20060102_150405"

// Store writes optimization reports as pretty-printed JSON documents into a
// directory. Filenames are timestamp-qualified, so concurrent-looking writes
// from successive runs never collide.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir}
}

// Save writes the report. When filename is empty it is derived as
// optimization_report_<YYYYMMDD_HHMMSS>.json. The full path is returned.
func (s *Store) Save(rep *domain.Report, filename string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("optimization_report_%s.json", time.Now().Format(filenameLayout))
	}
	path := filepath.Join(s.dir, filename)

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

// Load reads a report file written by Save.
func (s *Store) Load(filename string) (*domain.Report, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var rep domain.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to decode report file: %w", err)
	}
	return &rep, nil
}
