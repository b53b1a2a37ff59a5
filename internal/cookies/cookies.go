// Package cookies persists the site session cookies between runs.
// The jar is a flat name→value mapping stored as JSON; whenever a
// threat-defence challenge is solved the fresh jar overwrites it.
package cookies

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Jar maps cookie names to values.
type Jar map[string]string

// Header renders the jar as a Cookie request header value.
func (j Jar) Header() string {
	names := make([]string, 0, len(j))
	for name := range j {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(j))
	for _, name := range names {
		pairs = append(pairs, name+"="+j[name])
	}
	return strings.Join(pairs, "; ")
}

// ParseHeader decodes a Cookie header value ("a=1; b=2") into a Jar.
// This is the format users paste from the browser console during the
// manual CAPTCHA flow, so it tolerates stray whitespace and empty pairs.
func ParseHeader(text string) Jar {
	jar := Jar{}
	for _, pair := range strings.Split(text, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			continue
		}
		jar[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return jar
}

// Store reads and writes the persisted jar at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store for <dataDir>/cookies.json.
func NewStore(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, "cookies.json")}
}

// Path returns the on-disk location of the jar.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted jar. With skip set it returns an empty jar
// without touching disk. A missing file is initialized empty; a corrupt
// file is treated as empty. Load never fails.
func (s *Store) Load(skip bool) Jar {
	if skip {
		return Jar{}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := s.Save(Jar{}); err != nil {
				log.Debug().Err(err).Str("path", s.path).Msg("cookies: failed to initialize jar")
			}
		}
		return Jar{}
	}

	var jar Jar
	if err := json.Unmarshal(data, &jar); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("cookies: jar unreadable, starting empty")
		return Jar{}
	}
	if jar == nil {
		jar = Jar{}
	}
	return jar
}

// Save overwrites the persisted jar atomically (write to a temp file in
// the same directory, then rename over the target).
func (s *Store) Save(jar Jar) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create cookie dir: %w", err)
	}

	data, err := json.MarshalIndent(jar, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cookies-*.json")
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

	return os.Rename(tmp.Name(), s.path)
}
