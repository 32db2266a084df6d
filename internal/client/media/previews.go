package media

import "sync"

// PreviewCache holds derived previews of assets (signed links, thumbnails)
// keyed by media id and a variant name.
type PreviewCache struct {
	mu      sync.Mutex
	entries map[string]map[string]string
}

func NewPreviewCache() *PreviewCache {
	return &PreviewCache{entries: map[string]map[string]string{}}
}

func (c *PreviewCache) Put(mediaID, variant, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[mediaID] == nil {
		c.entries[mediaID] = map[string]string{}
	}
	c.entries[mediaID][variant] = value
}

func (c *PreviewCache) Get(mediaID, variant string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[mediaID][variant]
	return v, ok
}

// Evict drops every variant of mediaID.
func (c *PreviewCache) Evict(mediaID string) {
	c.mu.Lock()
	delete(c.entries, mediaID)
	c.mu.Unlock()
}

func (c *PreviewCache) Clear() {
	c.mu.Lock()
	c.entries = map[string]map[string]string{}
	c.mu.Unlock()
}

// Len is the number of media ids with at least one cached variant.
func (c *PreviewCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
