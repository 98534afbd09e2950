package meta

import (
	"encoding/json"
	"sort"

	"github.com/ragit-kb/ragit/internal/objstore"
	"github.com/ragit-kb/ragit/internal/ragiterr"
)

// knownKeys is the fixed key set per named config block (spec §4.I:
// "setting a config value must validate against a known key set").
var knownKeys = map[string]map[string]bool{
	"build": {
		"token_budget":          true,
		"overlap_tokens":        true,
		"parallelism":           true,
		"max_retry":             true,
		"sleep_between_retries": true,
		"schema_max_try":        true,
		"model":                 true,
	},
	"query": {
		"k1":                    true,
		"k2":                    true,
		"max_retry":             true,
		"sleep_between_retries": true,
		"schema_max_try":        true,
		"model":                 true,
	},
	"api": {
		"provider":    true,
		"model":       true,
		"base_url":    true,
		"api_env_var": true,
	},
}

// Block is one named config document (configs/<name>.json): a flat
// string map, matching the CLI's `config --set key value` surface.
type Block map[string]string

// LoadBlock reads configs/<name>.json, defaulting to an empty block.
func LoadBlock(store *objstore.Store, name string) (Block, error) {
	data, err := objstore.ReadFileOrDefault(store.ConfigPath(name), nil)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return Block{}, nil
	}
	var b Block
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	if b == nil {
		b = Block{}
	}
	return b, nil
}

// Save writes the block atomically.
func (b Block) Save(store *objstore.Store, name string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return objstore.WriteFile(store.ConfigPath(name), data, objstore.Atomic)
}

// Set validates key against name's known key set before assigning,
// returning ragiterr.InvalidConfigKey on an unrecognized key.
func (b Block) Set(name, key, value string) error {
	allowed, ok := knownKeys[name]
	if !ok || !allowed[key] {
		return ragiterr.InvalidConfigKey(key)
	}
	b[key] = value
	return nil
}

// Get returns key's value and whether it was present.
func (b Block) Get(key string) (string, bool) {
	v, ok := b[key]
	return v, ok
}

// Keys returns b's keys in sorted order.
func (b Block) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// KnownKeys returns the allowed key set for a named config block, or nil
// if name is not a recognized block.
func KnownKeys(name string) []string {
	allowed, ok := knownKeys[name]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(allowed))
	for k := range allowed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
