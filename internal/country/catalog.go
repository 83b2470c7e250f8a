// Package country holds the immutable catalog of pledgeable countries, loaded
// once at startup from the ETL-generated countries.json.
package country

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Origin marks whether a country's metrics are its own or coalesced from the
// world aggregate when the source datasets had gaps.
type Origin string

const (
	OriginWorld   Origin = "world"
	OriginCountry Origin = "country"
)

// Country is one catalog entry with its display data and descriptive metrics.
type Country struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Origin        Origin `json:"origin"`
	EmissionsYear int    `json:"emissions_year"`
	EmissionsUnit string `json:"emissions_unit"`
	Emissions     int64  `json:"emissions"`
	EmployeesYear int    `json:"employees_year"`
	Employees     uint64 `json:"employees"`
	EmployeesUnit string `json:"employees_unit"`
}

// Catalog is read-only for the lifetime of the process; share it by reference,
// no locking needed.
type Catalog struct {
	byID    map[string]Country
	ordered []Country
	ids     []string
}

// Load reads the catalog from the given JSON file. A missing or malformed
// file is a startup failure; callers are expected to treat it as fatal.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read countries file: %w", err)
	}

	var entries []Country
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse countries file: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("countries file %s contains no entries", path)
	}

	byID := make(map[string]Country, len(entries))
	for _, c := range entries {
		if c.ID == "" || c.Name == "" {
			return nil, fmt.Errorf("countries file %s contains an entry without id or name", path)
		}
		if _, exists := byID[c.ID]; exists {
			return nil, fmt.Errorf("countries file %s contains duplicate id %q", path, c.ID)
		}
		byID[c.ID] = c
	}

	// Stable id ordering: store keys for the aggregates are derived from it
	// and readers zip values back positionally.
	ordered := make([]Country, len(entries))
	copy(ordered, entries)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	ids := make([]string, len(ordered))
	for i, c := range ordered {
		ids[i] = c.ID
	}

	return &Catalog{byID: byID, ordered: ordered, ids: ids}, nil
}

// IsValid reports whether id names a catalog country.
func (c *Catalog) IsValid(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// IDs returns all country ids in stable ascending order. Callers must not
// mutate the returned slice.
func (c *Catalog) IDs() []string {
	return c.ids
}

// Lookup returns the country for id.
func (c *Catalog) Lookup(id string) (Country, bool) {
	country, ok := c.byID[id]
	return country, ok
}

// Search returns countries whose display name contains filter,
// case-insensitively. An empty filter returns the full catalog.
func (c *Catalog) Search(filter string) []Country {
	if filter == "" {
		return c.ordered
	}
	filter = strings.ToLower(filter)
	var matches []Country
	for _, country := range c.ordered {
		if strings.Contains(strings.ToLower(country.Name), filter) {
			matches = append(matches, country)
		}
	}
	return matches
}

// Len returns the catalog size.
func (c *Catalog) Len() int {
	return len(c.ordered)
}
