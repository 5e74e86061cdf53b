package product

import (
	"context"
	"time"

	"github.com/MikeMC777/storefront-ecom/internal/cache"
)

// Catalog serves List from a short-lived cache. Any write through it drops
// every cached page.
type Catalog struct {
	Repository
	pages *cache.TTL[[]Product]
}

func NewCatalog(repo Repository, ttl time.Duration) *Catalog {
	return &Catalog{Repository: repo, pages: cache.New[[]Product](ttl)}
}

func (c *Catalog) List(ctx context.Context, q Query) ([]Product, error) {
	q = q.Normalize()
	key := q.CacheKey()
	if items, ok := c.pages.Get(key); ok {
		return items, nil
	}
	items, err := c.Repository.List(ctx, q)
	if err != nil {
		return nil, err
	}
	c.pages.Set(key, items)
	return items, nil
}

func (c *Catalog) Create(ctx context.Context, p *Product) error {
	defer c.pages.Invalidate()
	return c.Repository.Create(ctx, p)
}

func (c *Catalog) Update(ctx context.Context, p *Product) error {
	defer c.pages.Invalidate()
	return c.Repository.Update(ctx, p)
}

func (c *Catalog) Delete(ctx context.Context, id string) (bool, error) {
	defer c.pages.Invalidate()
	return c.Repository.Delete(ctx, id)
}
