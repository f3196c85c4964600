package models

import (
	"fmt"
	"strings"
)

// CatalogEntry maps a human readable label to a source series identifier.
// Subtractive entries drain liquidity when they rise, so their z-score is negated.
type CatalogEntry struct {
	Label       string `yaml:"label" json:"label" validate:"required"`
	SeriesID    string `yaml:"series_id" json:"series_id" validate:"required"`
	Subtractive bool   `yaml:"subtractive" json:"subtractive"`
}

// Catalog is an immutable, ordered set of catalog entries.
type Catalog struct {
	entries []CatalogEntry
}

// NewCatalog validates entries (non-empty, unique labels and ids) and copies them.
func NewCatalog(entries ...CatalogEntry) (Catalog, error) {
	if len(entries) == 0 {
		return Catalog{}, fmt.Errorf("catalog: at least one entry is required")
	}
	labels := make(map[string]struct{}, len(entries))
	ids := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Label == "" || e.SeriesID == "" {
			return Catalog{}, fmt.Errorf("catalog: label and series id are required")
		}
		if _, dup := labels[e.Label]; dup {
			return Catalog{}, fmt.Errorf("catalog: duplicate label %q", e.Label)
		}
		if _, dup := ids[e.SeriesID]; dup {
			return Catalog{}, fmt.Errorf("catalog: duplicate series id %q", e.SeriesID)
		}
		labels[e.Label] = struct{}{}
		ids[e.SeriesID] = struct{}{}
	}
	cp := make([]CatalogEntry, len(entries))
	copy(cp, entries)
	return Catalog{entries: cp}, nil
}

// MustCatalog is NewCatalog that panics on invalid input.
func MustCatalog(entries ...CatalogEntry) Catalog {
	c, err := NewCatalog(entries...)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalog is the FRED-backed USD liquidity basket.
func DefaultCatalog() Catalog {
	return MustCatalog(DefaultCatalogEntries()...)
}

// DefaultCatalogEntries returns the entries of DefaultCatalog.
func DefaultCatalogEntries() []CatalogEntry {
	return []CatalogEntry{
		{Label: "TGA (WTREGEN)", SeriesID: "WTREGEN", Subtractive: true},
		{Label: "Fed Balance Sheet (WALCL)", SeriesID: "WALCL"},
		{Label: "SOMA Holdings (WSHOMCB)", SeriesID: "WSHOMCB"},
		{Label: "Bank Reserves (WRESBAL)", SeriesID: "WRESBAL"},
		{Label: "Reverse Repo (ON RRP)", SeriesID: "RRPONTSYD", Subtractive: true},
	}
}

// Entries returns a copy of the entries in catalog order.
func (c Catalog) Entries() []CatalogEntry {
	cp := make([]CatalogEntry, len(c.entries))
	copy(cp, c.entries)
	return cp
}

// Len returns the number of entries.
func (c Catalog) Len() int { return len(c.entries) }

// Labels returns the entry labels in catalog order.
func (c Catalog) Labels() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Label
	}
	return out
}

// Lookup finds an entry by label.
func (c Catalog) Lookup(label string) (CatalogEntry, bool) {
	for _, e := range c.entries {
		if e.Label == label {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// Fingerprint identifies the catalog contents, used in cache keys.
func (c Catalog) Fingerprint() string {
	parts := make([]string, len(c.entries))
	for i, e := range c.entries {
		sign := "+"
		if e.Subtractive {
			sign = "-"
		}
		parts[i] = sign + e.SeriesID
	}
	return strings.Join(parts, ",")
}
