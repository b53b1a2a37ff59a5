package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/litescript/ls-rarbg-cli/internal/scrape"
)

// Store keeps one JSON array of records per search signature under
// <dataDir>/history/.
type Store struct {
	dir string
}

// NewStore creates a history store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{dir: filepath.Join(dataDir, "history")}
}

func (s *Store) path(signature string) string {
	return filepath.Join(s.dir, filename(signature))
}

// Load returns the cached records for a signature. It returns nil when
// caching is disabled or no history exists. A corrupt history file is
// renamed aside (kept for inspection, out of the way) and treated as
// empty, with a warning.
func (s *Store) Load(signature string, allowCache bool) []scrape.Record {
	if !allowCache {
		return nil
	}

	path := s.path(signature)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var records []scrape.Record
	if err := json.Unmarshal(data, &records); err != nil {
		corrupt := path + ".corrupt"
		if renameErr := os.Rename(path, corrupt); renameErr != nil {
			log.Warn().Err(renameErr).Str("path", path).Msg("history: failed to move corrupt cache aside")
		}
		log.Warn().Err(err).Str("path", path).Str("movedTo", corrupt).
			Msg("history: cache unreadable, starting empty")
		return nil
	}

	return records
}

// Merge deduplicates fresh followed by existing records by full-record
// equality, preserving first-seen order, rewrites the signature's
// history file, and returns the merged sequence. Fresh records come
// first so a re-run surfaces current rows before stale cached ones.
func (s *Store) Merge(signature string, fresh, existing []scrape.Record) ([]scrape.Record, error) {
	merged := scrape.Dedup(append(append([]scrape.Record{}, fresh...), existing...))

	if err := s.write(signature, merged); err != nil {
		return merged, fmt.Errorf("failed to persist history: %w", err)
	}
	return merged, nil
}

// write replaces the signature's history file atomically.
func (s *Store) write(signature string, records []scrape.Record) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".history-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), s.path(signature))
}
