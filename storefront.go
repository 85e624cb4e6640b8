// Package storefront holds the shopping cart of one storefront session. Every change is
// validated against the inventory API and persisted as a snapshot. Failures reach the user
// as notices, never as returned errors.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"gofalre.io/storefront/inventory"
	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
	"gofalre.io/storefront/notify"
	"gofalre.io/storefront/snapshot"
)

const DefaultSnapshotKey = "storefront:cart"

var (
	errNotInCart  = errors.New("product not in cart")
	errOutOfStock = errors.New("requested amount exceeds stock")
)

// UpdateProductAmount asks for a line item to hold exactly Amount units.
type UpdateProductAmount struct {
	ProductID int64
	Amount    int
}

type Option func(*CartStore)

// WithSnapshotKey sets the key the cart is persisted under.
func WithSnapshotKey(key string) Option {
	return func(s *CartStore) { s.key = key }
}

func WithLocale(locale string) Option {
	return func(s *CartStore) { s.locale = locale }
}

func WithCatalog(catalog notify.Catalog) Option {
	return func(s *CartStore) { s.catalog = catalog }
}

// WithOutOfStockNoticeOnAdd reports an insufficient-stock notice when a new product is
// added with no units available. Without it that case is silent.
func WithOutOfStockNoticeOnAdd() Option {
	return func(s *CartStore) { s.noticeOutOfStockOnAdd = true }
}

// WithStrictSnapshot makes NewCartStore fail on a corrupt snapshot instead of starting
// with an empty cart.
func WithStrictSnapshot() Option {
	return func(s *CartStore) { s.strictSnapshot = true }
}

// CartStore owns the cart of a single session. Operations may be called from several
// goroutines. Inventory lookups run concurrently; each change is then applied to the cart
// current at write time, so the persisted snapshot and the in-memory cart stay equal.
type CartStore struct {
	mu   sync.RWMutex
	cart models.Cart

	// writeMu serializes mutate. Held across the snapshot write, never across inventory calls.
	writeMu sync.Mutex

	inventory inventory.Repository
	store     snapshot.Repository
	sink      notify.Sink
	logger    *zap.Logger

	key                   string
	locale                string
	catalog               notify.Catalog
	noticeOutOfStockOnAdd bool
	strictSnapshot        bool
}

// NewCartStore loads the persisted cart and returns a store ready for use. A missing
// snapshot starts an empty cart.
func NewCartStore(
	ctx context.Context,
	inventory inventory.Repository, store snapshot.Repository, sink notify.Sink,
	logger *zap.Logger, opts ...Option) (*CartStore, error) {
	s := &CartStore{
		inventory: inventory,
		store:     store,
		sink:      sink,
		logger:    logger,
		key:       DefaultSnapshotKey,
		locale:    notify.DefaultLocale,
		catalog:   notify.DefaultCatalog,
	}
	for _, opt := range opts {
		opt(s)
	}

	cart, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.cart = cart

	return s, nil
}

func (s *CartStore) load(ctx context.Context) (models.Cart, error) {
	raw, found, err := s.store.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("load cart snapshot %q: %w", s.key, err)
	}
	if !found {
		return models.NewCart(), nil
	}

	cart, err := snapshot.Decode(raw)
	if err != nil {
		if s.strictSnapshot {
			return nil, fmt.Errorf("load cart snapshot %q: %w", s.key, err)
		}
		s.logger.Warn("discarding corrupt cart snapshot", zap.String("key", s.key), zap.Error(err))
		return models.NewCart(), nil
	}
	return cart, nil
}

// Cart returns a copy of the current line items in display order.
func (s *CartStore) Cart() models.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

func (s *CartStore) current() models.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

// mutate applies change to the current cart and persists the result before making it
// current. A nil cart from change means there is nothing to write. A failed write leaves
// the in-memory cart untouched.
func (s *CartStore) mutate(ctx context.Context, change func(models.Cart) (models.Cart, error)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next, err := change(s.current())
	if err != nil || next == nil {
		return err
	}

	raw, err := snapshot.Encode(next)
	if err != nil {
		return err
	}
	if err = s.store.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("persist cart snapshot %q: %w", s.key, err)
	}

	s.mu.Lock()
	s.cart = next
	s.mu.Unlock()
	return nil
}

func (s *CartStore) notify(ctx context.Context, kind enum.NoticeKind, productID int64, cause error) {
	fields := []zap.Field{zap.String("kind", string(kind)), zap.Int64("product_id", productID)}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	s.logger.Warn("cart operation failed", fields...)

	s.sink.Notify(ctx, models.NewNotice(kind, productID, s.catalog.Message(s.locale, kind)))
}

// AddProduct puts one unit of the product in the cart. A product already present is
// incremented through UpdateProductAmount and shares its stock ceiling and notices.
func (s *CartStore) AddProduct(ctx context.Context, productID int64) {
	if existing, res := s.current().Lookup(productID); res == enum.LookupFound {
		s.UpdateProductAmount(ctx, UpdateProductAmount{ProductID: productID, Amount: existing.Amount + 1})
		return
	}

	product, err := s.inventory.GetProduct(ctx, productID)
	if err != nil {
		s.notify(ctx, enum.NoticeKindAddFailed, productID, err)
		return
	}
	stock, err := s.inventory.GetStock(ctx, productID)
	if err != nil {
		s.notify(ctx, enum.NoticeKindAddFailed, productID, err)
		return
	}

	if stock.Amount < 1 {
		if s.noticeOutOfStockOnAdd {
			s.notify(ctx, enum.NoticeKindInsufficientStock, productID, nil)
		} else {
			s.logger.Debug("product out of stock, not added", zap.Int64("product_id", productID))
		}
		return
	}

	item := *product
	item.ID = productID
	item.Amount = 1
	err = s.mutate(ctx, func(cart models.Cart) (models.Cart, error) {
		// another call may have added the product while we were asking the inventory
		if existing, res := cart.Lookup(productID); res == enum.LookupFound {
			if existing.Amount+1 > stock.Amount {
				return nil, errOutOfStock
			}
			return cart.WithAmount(productID, existing.Amount+1), nil
		}
		return cart.Append(item), nil
	})
	switch {
	case errors.Is(err, errOutOfStock):
		s.notify(ctx, enum.NoticeKindInsufficientStock, productID, nil)
	case err != nil:
		s.notify(ctx, enum.NoticeKindAddFailed, productID, err)
	}
}

// RemoveProduct drops the product's line item.
func (s *CartStore) RemoveProduct(ctx context.Context, productID int64) {
	err := s.mutate(ctx, func(cart models.Cart) (models.Cart, error) {
		if _, res := cart.Lookup(productID); res == enum.LookupNotFound {
			return nil, errNotInCart
		}
		return cart.Without(productID), nil
	})
	if err != nil {
		s.notify(ctx, enum.NoticeKindRemoveFailed, productID, err)
	}
}

// UpdateProductAmount sets the quantity of a line item, provided the inventory holds at
// least that many units. An amount of zero is ignored; removal goes through RemoveProduct.
// A product that is not in the cart is left alone.
func (s *CartStore) UpdateProductAmount(ctx context.Context, req UpdateProductAmount) {
	stock, err := s.inventory.GetStock(ctx, req.ProductID)
	if err != nil {
		s.notify(ctx, enum.NoticeKindUpdateFailed, req.ProductID, err)
		return
	}

	if req.Amount == 0 {
		return
	}
	if req.Amount < 0 {
		s.notify(ctx, enum.NoticeKindUpdateFailed, req.ProductID, fmt.Errorf("negative amount %d", req.Amount))
		return
	}

	if req.Amount > stock.Amount {
		s.notify(ctx, enum.NoticeKindInsufficientStock, req.ProductID, nil)
		return
	}

	err = s.mutate(ctx, func(cart models.Cart) (models.Cart, error) {
		if _, res := cart.Lookup(req.ProductID); res == enum.LookupNotFound {
			s.logger.Debug("update for a product not in the cart", zap.Int64("product_id", req.ProductID))
			return nil, nil
		}
		return cart.WithAmount(req.ProductID, req.Amount), nil
	})
	if err != nil {
		s.notify(ctx, enum.NoticeKindUpdateFailed, req.ProductID, err)
	}
}
