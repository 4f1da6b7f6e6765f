package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
	"github.com/custodia-labs/tillsync/internal/logger"
)

// Catalog is a read-through cache of shop products.
type Catalog struct {
	api    driven.ProductsAPI
	store  driven.ProductStore
	online func() bool
}

// NewCatalog creates a catalog. A nil online func means always online.
func NewCatalog(api driven.ProductsAPI, store driven.ProductStore, online func() bool) *Catalog {
	if online == nil {
		online = func() bool { return true }
	}
	return &Catalog{api: api, store: store, online: online}
}

// Load returns a shop's products. Online, it fetches from the remote API
// and writes the result through to the cache. Offline, or when the fetch
// fails, it returns the cached products instead. Nothing cached yields an
// empty slice.
func (c *Catalog) Load(ctx context.Context, shopID int64) ([]domain.CachedProduct, error) {
	if c.online() && c.api != nil {
		products, err := c.api.ListProducts(ctx, shopID)
		if err == nil {
			now := time.Now().UTC()
			for i := range products {
				if products[i].ShopID == 0 {
					products[i].ShopID = shopID
				}
				products[i].CachedAt = now
			}
			if err := c.store.PutAll(ctx, products); err != nil {
				logger.Warn("catalog: cache write for shop %d failed: %v", shopID, err)
			}
			return products, nil
		}
		logger.Warn("catalog: fetch shop %d failed, using cache: %v", shopID, err)
	}

	cached, err := c.store.ListByShop(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("read product cache: %w", err)
	}
	if cached == nil {
		cached = []domain.CachedProduct{}
	}
	return cached, nil
}
