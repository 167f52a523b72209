package filter

import (
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Cache holds decoded filter assets for the lifetime of the process.
// Entries are loaded on first use and never replaced; failed loads are not
// cached so a later call may succeed once the asset is provisioned.
type Cache struct {
	source Source
	log    logrus.FieldLogger

	mu     sync.RWMutex
	assets map[Kind]*Asset
	loads  singleflight.Group
}

// NewCache creates an empty cache backed by source
func NewCache(source Source, log logrus.FieldLogger) *Cache {
	return &Cache{
		source: source,
		log:    log,
		assets: make(map[Kind]*Asset),
	}
}

// Get returns the asset for kind, loading it on first use. Unknown kinds and
// unavailable assets report false.
func (c *Cache) Get(kind Kind) (*Asset, bool) {
	if !kind.Valid() {
		return nil, false
	}

	if a, ok := c.cached(kind); ok {
		return a, true
	}

	// Concurrent misses for the same kind share a single decode
	v, err, _ := c.loads.Do(string(kind), func() (interface{}, error) {
		if a, ok := c.cached(kind); ok {
			return a, nil
		}

		img, err := c.source.Load(kind)
		if err != nil {
			return nil, err
		}

		a := &Asset{Kind: kind, Image: img}
		c.mu.Lock()
		c.assets[kind] = a
		c.mu.Unlock()

		c.log.WithFields(logrus.Fields{
			"filter":   kind,
			"width":    img.Cols(),
			"height":   img.Rows(),
			"channels": img.Channels(),
		}).Debug("Loaded filter asset")

		return a, nil
	})
	if err != nil {
		c.log.WithField("filter", kind).WithError(err).Warn("Filter asset unavailable")
		return nil, false
	}

	return v.(*Asset), true
}

func (c *Cache) cached(kind Kind) (*Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assets[kind]
	return a, ok
}

// Len returns the number of loaded assets
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.assets)
}

// Close releases every cached image. The cache must not be used afterwards.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for kind, a := range c.assets {
		a.Image.Close()
		delete(c.assets, kind)
	}
	return nil
}
