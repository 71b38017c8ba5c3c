package oracle

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
)

// cacheHeader is the CSV header spec.md §6 mandates for the cache file.
var cacheHeader = []string{"mapping_key", "exec_time", "static_energy", "dynamic_energy"}

// Cache is the in-process mapping-to-result memoization table, keyed by
// the string canonicalKey builds: the chosen processor names (processes in
// sorted name order) followed by the chosen primitive names (channels in
// sorted name order), comma-joined. Keys hold names, not integer indices.
// Resources is intentionally not persisted: the CSV schema spec.md §6
// defines carries only exec_time/static_energy/dynamic_energy, so a
// reloaded entry's Resources field is always nil.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Result
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Result)}
}

// Get returns the cached result for key, if present.
func (c *Cache) Get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.entries[key]

	return r, ok
}

// Set stores (or overwrites) the result for key.
func (c *Cache) Set(key string, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = r
}

// Len returns the number of distinct cached keys.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Dump writes every cache entry to w as CSV, per spec.md §6's schema.
func (c *Cache) Dump(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cw := csv.NewWriter(w)

	if err := cw.Write(cacheHeader); err != nil {
		return fmt.Errorf("Cache.Dump: %w", err)
	}

	for key, r := range c.entries {
		row := []string{
			key,
			strconv.FormatUint(r.ExecTime, 10),
			strconv.FormatFloat(r.StaticEnergy, 'g', -1, 64),
			strconv.FormatFloat(r.DynamicEnergy, 'g', -1, 64),
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("Cache.Dump: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// LoadCache reads a Cache previously written by Dump.
func LoadCache(r io.Reader) (*Cache, error) {
	cr := csv.NewReader(r)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("LoadCache: %w", err)
	}

	if len(rows) == 0 {
		return NewCache(), nil
	}

	c := NewCache()

	for _, row := range rows[1:] {
		if len(row) != 4 {
			return nil, fmt.Errorf("LoadCache: row %v: want 4 columns", row)
		}

		execTime, err := strconv.ParseUint(row[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("LoadCache: exec_time %q: %w", row[1], err)
		}

		staticE, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("LoadCache: static_energy %q: %w", row[2], err)
		}

		dynamicE, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("LoadCache: dynamic_energy %q: %w", row[3], err)
		}

		c.entries[row[0]] = Result{ExecTime: execTime, StaticEnergy: staticE, DynamicEnergy: dynamicE}
	}

	return c, nil
}
