package catalog

import (
	"context"
	"errors"
	"sync"
)

// Cache loads a Source once and hands out the same *Catalog afterwards.
// There is no invalidation: a process restart is the only refresh path.
type Cache struct {
	src Source

	mu  sync.Mutex
	cat *Catalog
}

func NewCache(src Source) *Cache {
	return &Cache{src: src}
}

// Get returns the cached catalog, loading it on first use.
// A failed load is not remembered.
func (c *Cache) Get(ctx context.Context) (*Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cat != nil {
		return c.cat, nil
	}

	products, err := c.src.Load(ctx)
	if err != nil {
		return nil, c.label(err)
	}
	cat, err := New(products)
	if err != nil {
		return nil, c.label(err)
	}
	c.cat = cat
	return cat, nil
}

func (c *Cache) label(err error) error {
	var dle *DataLoadError
	if errors.As(err, &dle) && dle.Source == "" {
		dle.Source = c.src.String()
	}
	return err
}
