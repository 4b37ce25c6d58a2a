// Package ontology serves the controlled vocabularies backing the survey
// list fields: flat code/label lists, dual parent/child lists and the
// per-country town lists, all loaded from the database and memoized.
package ontology

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"

	"github.com/aipress24/kyc-engine/internal/models"
)

// Entry is one selectable choice: the stored value and its display label.
type Entry struct {
	Value string
	Label string
}

// DualList is a two-level vocabulary. Field1 holds the parent choices,
// Field2 the child choices keyed by parent value.
type DualList struct {
	Field1 []Entry
	Field2 map[string][]Entry
}

// ChildValue is the stored form of a dual child selection.
func ChildValue(parentLabel, childLabel string) string {
	return parentLabel + " / " + childLabel
}

const cacheSize = 64

// Registry reads vocabularies from the taxonomies and zip_code_towns
// tables. Lists are cached after first read; Invalidate drops a family
// after an administrative reload.
type Registry struct {
	db    *gorm.DB
	flat  *lru.Cache[string, []Entry]
	dual  *lru.Cache[string, *DualList]
	towns *lru.Cache[string, []Entry]
}

func NewRegistry(db *gorm.DB) (*Registry, error) {
	flat, err := lru.New[string, []Entry](cacheSize)
	if err != nil {
		return nil, err
	}
	dual, err := lru.New[string, *DualList](cacheSize)
	if err != nil {
		return nil, err
	}
	towns, err := lru.New[string, []Entry](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Registry{db: db, flat: flat, dual: dual, towns: towns}, nil
}

// Flat returns the ordered entries of a single-level family.
func (r *Registry) Flat(family string) ([]Entry, error) {
	if entries, ok := r.flat.Get(family); ok {
		return entries, nil
	}
	var rows []models.Taxonomy
	err := r.db.
		Where("name = ? AND parent = ''", family).
		Order("seq, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ontology %q: %w", family, err)
	}
	entries := toEntries(rows)
	r.flat.Add(family, entries)
	return entries, nil
}

// Dual returns the two-level entries of a parent/child family.
func (r *Registry) Dual(family string) (*DualList, error) {
	if list, ok := r.dual.Get(family); ok {
		return list, nil
	}
	var rows []models.Taxonomy
	err := r.db.
		Where("name = ?", family).
		Order("seq, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ontology %q: %w", family, err)
	}
	list := &DualList{Field2: make(map[string][]Entry)}
	for _, row := range rows {
		entry := Entry{Value: row.Value, Label: row.Label}
		if row.Parent == "" {
			list.Field1 = append(list.Field1, entry)
		} else {
			list.Field2[row.Parent] = append(list.Field2[row.Parent], entry)
		}
	}
	r.dual.Add(family, list)
	return list, nil
}

// Towns returns the zip/town entries of one country, loaded lazily so a
// form render never pulls the whole world table.
func (r *Registry) Towns(countryCode string) ([]Entry, error) {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if code == "" {
		return nil, nil
	}
	if entries, ok := r.towns.Get(code); ok {
		return entries, nil
	}
	var rows []models.ZipCodeTown
	err := r.db.
		Where("country_code = ?", code).
		Order("seq, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("towns %q: %w", code, err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{Value: row.Value, Label: row.Label})
	}
	r.towns.Add(code, entries)
	return entries, nil
}

// MergeNames folds live organisation names into a vocabulary so members
// can pick an organisation that was registered after the list was
// curated. Duplicates are dropped case-insensitively, additions sorted.
func MergeNames(base []Entry, names []string) []Entry {
	known := make(map[string]bool, len(base))
	for _, e := range base {
		known[strings.ToLower(e.Label)] = true
	}
	var extra []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || known[strings.ToLower(name)] {
			continue
		}
		known[strings.ToLower(name)] = true
		extra = append(extra, name)
	}
	sort.Strings(extra)
	out := make([]Entry, 0, len(base)+len(extra))
	out = append(out, base...)
	for _, name := range extra {
		out = append(out, Entry{Value: name, Label: name})
	}
	return out
}

// Label resolves a stored value back to its display label, searching the
// top level first and the dual children after. Unknown values pass
// through unchanged so free entries stay readable.
func (r *Registry) Label(family, value string) string {
	if value == "" {
		return ""
	}
	entries, err := r.Flat(family)
	if err != nil {
		return value
	}
	for _, e := range entries {
		if e.Value == value {
			return e.Label
		}
	}
	list, err := r.Dual(family)
	if err != nil {
		return value
	}
	for _, children := range list.Field2 {
		for _, e := range children {
			if e.Value == value {
				return e.Label
			}
		}
	}
	return value
}

// Invalidate drops the cached lists of one family.
func (r *Registry) Invalidate(family string) {
	r.flat.Remove(family)
	r.dual.Remove(family)
	r.towns.Remove(strings.ToUpper(family))
}

func toEntries(rows []models.Taxonomy) []Entry {
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{Value: row.Value, Label: row.Label})
	}
	return entries
}
