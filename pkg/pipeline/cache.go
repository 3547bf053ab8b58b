package pipeline

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/joeblew999/deckbind/pkg/deck"
	"github.com/joeblew999/deckbind/pkg/scene"
)

type cacheKey struct {
	templateID int
	content    uint64
}

// sceneCache memoises scenes by template and page content. When full, the
// oldest inserted entry is evicted.
type sceneCache struct {
	mu    sync.Mutex
	max   int
	items map[cacheKey]*scene.Scene
	order []cacheKey
}

func newSceneCache(max int) *sceneCache {
	if max <= 0 {
		return nil
	}
	return &sceneCache{max: max, items: make(map[cacheKey]*scene.Scene, max)}
}

// key hashes the canonical JSON form of page
func (c *sceneCache) key(templateID int, page deck.Page) (cacheKey, bool) {
	if c == nil {
		return cacheKey{}, false
	}
	data, err := deck.MarshalPage(page)
	if err != nil {
		return cacheKey{}, false
	}
	return cacheKey{templateID: templateID, content: xxhash.Sum64(data)}, true
}

func (c *sceneCache) get(k cacheKey) *scene.Scene {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[k]
}

func (c *sceneCache) put(k cacheKey, s *scene.Scene) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[k]; ok {
		c.items[k] = s
		return
	}
	for len(c.order) >= c.max {
		delete(c.items, c.order[0])
		c.order = c.order[1:]
	}
	c.items[k] = s
	c.order = append(c.order, k)
}

func (c *sceneCache) len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
