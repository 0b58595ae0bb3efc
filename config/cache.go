/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package config

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache shares loaded configurations between the units of a batch, so the
// configuration file of a root is read once. Watch mode invalidates a root
// when its configuration file changes.
type Cache interface {
	// GetOrLoad returns the configuration of root, calling load when none
	// is cached. Concurrent callers for the same root share one load.
	GetOrLoad(root string, load func() (*Config, error)) (*Config, error)

	// Invalidate drops root so the next GetOrLoad reads it again.
	Invalidate(root string)
}

// MemoryCache is a Cache held in memory. Failed loads are not kept.
type MemoryCache struct {
	group   singleflight.Group
	mu      sync.RWMutex
	configs map[string]*Config
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{configs: make(map[string]*Config)}
}

func (c *MemoryCache) lookup(root string) (*Config, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg, ok := c.configs[root]
	return cfg, ok
}

func (c *MemoryCache) GetOrLoad(root string, load func() (*Config, error)) (*Config, error) {
	if cfg, ok := c.lookup(root); ok {
		return cfg, nil
	}
	v, err, _ := c.group.Do(root, func() (any, error) {
		// a flight that finished since the lookup above has stored its result
		if cfg, ok := c.lookup(root); ok {
			return cfg, nil
		}
		cfg, err := load()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.configs[root] = cfg
		c.mu.Unlock()
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Config), nil
}

func (c *MemoryCache) Invalidate(root string) {
	c.mu.Lock()
	delete(c.configs, root)
	c.mu.Unlock()
	c.group.Forget(root)
}
