// Package profile validates fetched records against named schemas
// ("profiles") and accumulates a run-scoped ledger of which profiles were
// exercised and which failed.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

// Element is one structural constraint within a profile: presence
// (cardinality min), repetition (cardinality max), and an optional
// value-set binding for coded values.
type Element struct {
	Path string `yaml:"path"`
	Min  int    `yaml:"min"`
	// Max is the cardinality ceiling: "" or "*" for unbounded, otherwise a
	// decimal count.
	Max     string   `yaml:"max,omitempty"`
	Binding []string `yaml:"binding,omitempty"`
}

// maxAllows reports whether n occurrences satisfy the ceiling.
func (e Element) maxAllows(n int) bool {
	if e.Max == "" || e.Max == "*" {
		return true
	}
	limit, err := strconv.Atoi(e.Max)
	if err != nil {
		// Malformed ceilings are caught at definition load; treat as
		// unbounded if one slips through.
		return true
	}
	return n <= limit
}

// Definition is a named profile a fetched record is expected to conform to.
// Externally supplied, versioned by specification edition.
type Definition struct {
	ID          string    `yaml:"id"`
	RecordType  string    `yaml:"record_type"`
	Description string    `yaml:"description,omitempty"`
	Elements    []Element `yaml:"elements"`
}

// validate checks the definition itself for shape errors so a malformed
// schema is reported at load, not silently mis-applied at run time.
func (d *Definition) validate() error {
	if d.ID == "" {
		return fmt.Errorf("profile definition missing id")
	}
	for _, el := range d.Elements {
		if el.Path == "" {
			return fmt.Errorf("profile %s: element with empty path", d.ID)
		}
		if el.Min < 0 {
			return fmt.Errorf("profile %s: element %s has negative min", d.ID, el.Path)
		}
		if el.Max != "" && el.Max != "*" {
			if _, err := strconv.Atoi(el.Max); err != nil {
				return fmt.Errorf("profile %s: element %s has invalid max %q", d.ID, el.Path, el.Max)
			}
		}
	}
	return nil
}

// Source supplies profile definitions by identifier.
type Source interface {
	Load(profileID string) (*Definition, error)
}

// DirSource loads profile definitions from <dir>/<profile-id>.yaml and
// caches them for the life of the process.
type DirSource struct {
	dir   string
	mu    sync.Mutex
	cache map[string]*Definition
}

// NewDirSource creates a directory-backed profile source.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir, cache: make(map[string]*Definition)}
}

// Load implements Source.
func (s *DirSource) Load(profileID string) (*Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if def, ok := s.cache[profileID]; ok {
		return def, nil
	}

	path := filepath.Join(s.dir, profileID+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading profile %s: %w", profileID, err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", profileID, err)
	}
	if def.ID == "" {
		def.ID = profileID
	}
	if def.ID != profileID {
		return nil, fmt.Errorf("profile file %s declares id %q", path, def.ID)
	}
	if err := def.validate(); err != nil {
		return nil, err
	}

	s.cache[profileID] = &def
	return &def, nil
}

// StaticSource serves definitions from a fixed map. Used in tests and for
// embedded profile sets.
type StaticSource map[string]*Definition

// Load implements Source.
func (s StaticSource) Load(profileID string) (*Definition, error) {
	def, ok := s[profileID]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q", profileID)
	}
	if err := def.validate(); err != nil {
		return nil, err
	}
	return def, nil
}
