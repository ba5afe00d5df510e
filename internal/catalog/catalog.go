// Package catalog provides the static exercise catalog: the list of known
// exercises with their muscle group, equipment, and movement pattern keys.
// The catalog is loaded once at startup and immutable afterwards.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed exercises.json
var embeddedCatalog []byte

// Entry is a single catalog exercise.
type Entry struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	EnglishName     string   `json:"english_name,omitempty"`
	MuscleGroup     string   `json:"muscle_group"`
	Equipment       string   `json:"equipment"`
	MovementPattern string   `json:"movement_pattern"`
	Aliases         []string `json:"aliases,omitempty"`
}

// Catalog is an immutable, indexed exercise catalog.
type Catalog struct {
	entries  []Entry
	byID     map[string]int
	idByName map[string]string
}

// Load reads the catalog from the given JSON file, or from the embedded
// default asset when path is empty. A missing or malformed asset is a load
// error; the caller may retry by calling Load again.
func Load(path string) (*Catalog, error) {
	data := embeddedCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading catalog file: %w", err)
		}
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog contains no exercises")
	}

	c := &Catalog{
		entries:  entries,
		byID:     make(map[string]int, len(entries)),
		idByName: make(map[string]string),
	}
	for i, e := range entries {
		c.byID[e.ID] = i
		c.idByName[strings.ToLower(e.Name)] = e.ID
		if e.EnglishName != "" {
			c.idByName[strings.ToLower(e.EnglishName)] = e.ID
		}
		for _, a := range e.Aliases {
			c.idByName[strings.ToLower(a)] = e.ID
		}
	}
	return c, nil
}

// Entries returns a copy of all catalog entries.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Name returns the display name for a catalog id.
func (c *Catalog) Name(id string) (string, bool) {
	i, ok := c.byID[id]
	if !ok {
		return "", false
	}
	return c.entries[i].Name, true
}

// MuscleGroup returns the muscle-group key for a catalog id.
func (c *Catalog) MuscleGroup(id string) (string, bool) {
	i, ok := c.byID[id]
	if !ok {
		return "", false
	}
	return c.entries[i].MuscleGroup, true
}

// IDByName resolves a display name, English name, or alias to a catalog id.
// Matching is case-insensitive.
func (c *Catalog) IDByName(name string) (string, bool) {
	id, ok := c.idByName[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}
