package inventory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"goflare.io/ember"

	"gofalre.io/storefront/models"
)

// ProductCache is the subset of *ember.Ember the product cache needs.
type ProductCache interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl ...time.Duration) error
}

var (
	_ Repository   = (*cachedRepository)(nil)
	_ ProductCache = (*ember.Ember)(nil)
)

// cachedRepository keeps product metadata in the cache. Stock always goes to the API.
type cachedRepository struct {
	next   Repository
	cache  ProductCache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedRepository(next Repository, cache ProductCache, ttl time.Duration, logger *zap.Logger) Repository {
	return &cachedRepository{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func productCacheKey(productID int64) string {
	return fmt.Sprintf("product:%d", productID)
}

func (r *cachedRepository) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	cacheKey := productCacheKey(productID)
	var product models.Product

	found, err := r.cache.Get(ctx, cacheKey, &product)
	if err != nil {
		r.logger.Warn("failed to get product from cache", zap.Int64("product_id", productID), zap.Error(err))
	}
	if found && err == nil {
		return &product, nil
	}

	fetched, err := r.next.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err = r.cache.Set(ctx, cacheKey, *fetched, r.ttl); err != nil {
		r.logger.Warn("failed to cache product", zap.Int64("product_id", productID), zap.Error(err))
	}

	return fetched, nil
}

func (r *cachedRepository) GetStock(ctx context.Context, productID int64) (*models.Stock, error) {
	return r.next.GetStock(ctx, productID)
}
