// Package meta implements the user-facing metadata and configuration
// store of spec §4.I: a flat string map persisted at meta.json, typed
// config blocks under configs/*.json, and the models.json model catalog.
package meta

import (
	"encoding/json"
	"sort"

	"github.com/ragit-kb/ragit/internal/objstore"
)

// Store is a flat string->string map, the repository's free-form
// metadata (author, description, whatever the caller wants).
type Store map[string]string

// Load reads meta.json, substituting an empty map if the file is absent
// (spec §4.B: readers tolerate missing optional files).
func Load(store *objstore.Store) (Store, error) {
	data, err := objstore.ReadFileOrDefault(store.MetaPath(), nil)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return Store{}, nil
	}
	var m Store
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = Store{}
	}
	return m, nil
}

// Save writes m atomically.
func (m Store) Save(store *objstore.Store) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return objstore.WriteFile(store.MetaPath(), data, objstore.Atomic)
}

// Set assigns key to value.
func (m Store) Set(key, value string) { m[key] = value }

// Get returns key's value and whether it was present.
func (m Store) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Remove deletes key, a no-op if absent.
func (m Store) Remove(key string) { delete(m, key) }

// Keys returns every key in sorted order, for deterministic `meta
// --get-all` output.
func (m Store) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
