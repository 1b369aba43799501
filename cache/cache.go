// Package cache persists the last-resolved IP address per hostname between
// sweeps.
package cache

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
)

// Cache maps hostnames to their last-resolved IP addresses. It tracks
// whether in-memory state has diverged from the backing file so that Persist
// can skip needless writes.
type Cache struct {
	path    string
	entries map[string]string
	dirty   bool
}

// New returns an empty, clean cache backed by path. Call Load before use.
func New(path string) *Cache {
	return &Cache{path: path, entries: map[string]string{}}
}

// Load populates the cache from the backing file. A missing, unreadable, or
// corrupt file leaves the cache empty and dirty so that the next Persist
// (re)creates the file. Load never fails.
func (c *Cache) Load() {
	c.entries = map[string]string{}
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.S().Warnf("reading cache %s failed: %s; starting empty.", c.path, err)
		}
		c.dirty = true // ensure initial file creation
		return
	}
	err = json.Unmarshal(data, &c.entries)
	if err != nil {
		zap.S().Warnf("parsing cache %s failed: %s; starting empty.", c.path, err)
		c.entries = map[string]string{}
		c.dirty = true
		return
	}
	if c.entries == nil {
		// JSON null unmarshals without error but leaves the map nil.
		zap.S().Warnf("cache %s holds no object; starting empty.", c.path)
		c.entries = map[string]string{}
		c.dirty = true
		return
	}
	c.dirty = false
}

// Get returns the cached IP address for hostname.
func (c *Cache) Get(hostname string) (ip string, ok bool) {
	ip, ok = c.entries[hostname]
	return
}

// Set records the IP address for hostname. The cache becomes dirty only if
// the value actually changes.
func (c *Cache) Set(hostname, ip string) {
	if prev, ok := c.entries[hostname]; ok && prev == ip {
		return
	}
	c.entries[hostname] = ip
	c.dirty = true
}

// Dirty reports whether in-memory state has diverged from the backing file.
func (c *Cache) Dirty() bool { return c.dirty }

// Entries returns a copy of the current mapping.
func (c *Cache) Entries() map[string]string {
	return maps.Clone(c.entries)
}

// Persist writes the mapping to the backing file if the cache is dirty or
// force is set, and clears the dirty flag on success. A clean cache without
// force is a no-op.
func (c *Cache) Persist(force bool) error {
	if !c.dirty && !force {
		return nil
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		panic(err) // a map[string]string always marshals
	}
	data = append(data, '\n')
	err = os.WriteFile(c.path, data, 0644)
	if err != nil {
		return fmt.Errorf("writing cache %s: %w", c.path, err)
	}
	c.dirty = false
	return nil
}
