// Package query implements the retrieval pipeline of spec §4.F: keyword
// extraction, TF-IDF candidate selection, an LLM re-rank pass, and final
// answer generation, orchestrated across a multi-turn conversation.
package query

import (
	"strconv"
	"time"

	"github.com/ragit-kb/ragit/internal/meta"
	"github.com/ragit-kb/ragit/internal/objstore"
)

// Config parameterizes one Engine, loaded from the "query" config block
// (internal/meta) the same way chunkpipe.BuildConfig is loaded from the
// "build" block.
type Config struct {
	K1                  int
	K2                  int
	MaxRetry            int
	SchemaMaxTry        int
	SleepBetweenRetries time.Duration
	Model               string
	UseInvertedIndex    bool
}

func (c Config) withDefaults() Config {
	if c.K1 <= 0 {
		c.K1 = 40
	}
	if c.K2 <= 0 {
		c.K2 = 8
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = 3
	}
	if c.SchemaMaxTry <= 0 {
		c.SchemaMaxTry = 3
	}
	if c.SleepBetweenRetries <= 0 {
		c.SleepBetweenRetries = time.Second
	}
	return c
}

// LoadConfig reads the "query" config block and parses it into a typed
// Config, falling back to defaults for any key left unset.
func LoadConfig(store *objstore.Store) (Config, error) {
	block, err := meta.LoadBlock(store, "query")
	if err != nil {
		return Config{}, err
	}
	cfg := Config{Model: block["model"]}
	if v, ok := block.Get("k1"); ok {
		cfg.K1, _ = strconv.Atoi(v)
	}
	if v, ok := block.Get("k2"); ok {
		cfg.K2, _ = strconv.Atoi(v)
	}
	if v, ok := block.Get("max_retry"); ok {
		cfg.MaxRetry, _ = strconv.Atoi(v)
	}
	if v, ok := block.Get("schema_max_try"); ok {
		cfg.SchemaMaxTry, _ = strconv.Atoi(v)
	}
	if v, ok := block.Get("sleep_between_retries"); ok {
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SleepBetweenRetries = time.Duration(secs * float64(time.Second))
		}
	}
	return cfg.withDefaults(), nil
}
