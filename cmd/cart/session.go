package main

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"goflare.io/ember"

	"gofalre.io/storefront"
	"gofalre.io/storefront/config"
	"gofalre.io/storefront/driver"
	"gofalre.io/storefront/inventory"
	"gofalre.io/storefront/notify"
	"gofalre.io/storefront/snapshot"
)

// productCacheLocalSize bounds ember's in-process layer. Product metadata is small.
const productCacheLocalSize = 64 << 20

// session wires one CartStore and owns every connection it opened.
type session struct {
	cart    *storefront.CartStore
	notices *storefront.WorkerPool

	redis    *redis.Client
	cache    *ember.Ember
	postgres *driver.DB
	nats     *nats.Conn
}

func openSession(ctx context.Context, cfg *config.Config, ui notify.Sink, logger *zap.Logger) (_ *session, err error) {
	s := &session{}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	if cfg.SnapshotBackend == config.BackendRedis {
		if s.redis, err = driver.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger); err != nil {
			return nil, err
		}
	}

	inv := inventory.NewRepository(cfg.InventoryURL, logger,
		inventory.WithTimeout(cfg.InventoryTimeout),
		inventory.WithMaxFailures(cfg.InventoryMaxFailures))
	if cfg.ProductCacheTTL > 0 {
		redisOptions := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
		s.cache, err = ember.New(ctx, redisOptions,
			ember.WithLogger(logger),
			ember.WithMaxLocalSize(productCacheLocalSize),
			ember.WithShardCount(16),
			ember.WithDefaultExpiration(cfg.ProductCacheTTL),
			ember.WithSerialization("json"),
		)
		if err != nil {
			return nil, fmt.Errorf("open product cache: %w", err)
		}
		inv = inventory.NewCachedRepository(inv, s.cache, cfg.ProductCacheTTL, logger)
	}

	var store snapshot.Repository
	switch cfg.SnapshotBackend {
	case config.BackendRedis:
		store = snapshot.NewRedisRepository(s.redis, logger)
	case config.BackendPostgres:
		if s.postgres, err = driver.ConnectSQL(ctx, cfg.PostgresDSN); err != nil {
			return nil, err
		}
		pg := snapshot.NewPostgresRepository(s.postgres.Pool, driver.NewTransactionManager(s.postgres.Pool, logger), logger)
		if err = pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		store = pg
	default:
		logger.Warn("memory snapshot backend: the cart will not outlive this process, set SNAPSHOT_BACKEND=redis or postgres to keep it")
		store = snapshot.NewMemoryRepository()
	}

	sinks := []notify.Sink{ui, notify.NewLogSink(logger)}
	if cfg.NatsURL != "" {
		if s.nats, err = driver.ConnectNATS(cfg.NatsURL, "storefront-cart", logger); err != nil {
			return nil, err
		}
		sinks = append(sinks, notify.NewNatsSink(s.nats, cfg.NoticeSubject, logger))
	}
	s.notices = storefront.NewWorkerPool(cfg.NoticeWorkers, notify.Fanout(sinks...), logger)

	opts := []storefront.Option{
		storefront.WithSnapshotKey(cfg.SnapshotKey),
		storefront.WithLocale(cfg.Locale),
	}
	if cfg.NotifyOutOfStockOnAdd {
		opts = append(opts, storefront.WithOutOfStockNoticeOnAdd())
	}
	if cfg.StrictSnapshot {
		opts = append(opts, storefront.WithStrictSnapshot())
	}

	if s.cart, err = storefront.NewCartStore(ctx, inv, store, s.notices, logger, opts...); err != nil {
		return nil, fmt.Errorf("open cart: %w", err)
	}
	return s, nil
}

// Close flushes pending notices and releases connections.
func (s *session) Close() {
	if s.notices != nil {
		s.notices.Shutdown()
	}
	if s.nats != nil {
		_ = s.nats.Drain()
	}
	if s.postgres != nil {
		s.postgres.Pool.Close()
	}
	if s.cache != nil {
		_ = s.cache.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
}
