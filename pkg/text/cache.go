package text

import (
	"sync"
)

// Cache memoizes one Font per key for its whole lifetime. It never evicts.
// Population is guarded so a host may lay out from more than one goroutine.
type Cache struct {
	provider Provider

	mu    sync.Mutex
	fonts map[FontKey]Font
}

func NewCache(provider Provider) *Cache {
	return &Cache{
		provider: provider,
		fonts:    make(map[FontKey]Font),
	}
}

// Get returns the cached font for (size, weight, style), loading it on first
// use. Load failures are not cached.
func (c *Cache) Get(size int, weight Weight, style Style) (Font, error) {
	key := FontKey{Size: size, Weight: weight, Style: style}

	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.fonts[key]; ok {
		return f, nil
	}
	f, err := c.provider.Load(key)
	if err != nil {
		return nil, err
	}
	c.fonts[key] = f
	return f, nil
}

// Len reports how many distinct fonts have been loaded.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fonts)
}
