// Package inventory reads product metadata and stock levels from the inventory REST API.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"gofalre.io/storefront/models"
)

var ErrNotFound = errors.New("inventory record not found")

const (
	defaultTimeout     = 5 * time.Second
	defaultMaxFailures = 5
	breakerOpenTimeout = 30 * time.Second
)

type Repository interface {
	GetProduct(ctx context.Context, productID int64) (*models.Product, error)
	GetStock(ctx context.Context, productID int64) (*models.Stock, error)
}

var _ Repository = (*repository)(nil)

type repository struct {
	baseURL     string
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker
	maxFailures uint32
	logger      *zap.Logger
}

type Option func(*repository)

func WithTimeout(d time.Duration) Option {
	return func(r *repository) { r.client.Timeout = d }
}

func WithHTTPClient(c *http.Client) Option {
	return func(r *repository) { r.client = c }
}

// WithMaxFailures sets how many consecutive failures open the circuit breaker.
func WithMaxFailures(n uint32) Option {
	return func(r *repository) { r.maxFailures = n }
}

// NewRepository builds a client for an API serving GET {baseURL}/products/{id} and
// GET {baseURL}/stock/{id}.
func NewRepository(baseURL string, logger *zap.Logger, opts ...Option) Repository {
	r := &repository{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:      &http.Client{Timeout: defaultTimeout},
		maxFailures: defaultMaxFailures,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "inventory",
		MaxRequests: 1,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= r.maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("inventory breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return r
}

func (r *repository) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	product := models.NewProduct()
	if err := r.get(ctx, fmt.Sprintf("/products/%d", productID), product); err != nil {
		r.logger.Error("failed to get product", zap.Int64("product_id", productID), zap.Error(err))
		return nil, err
	}
	return product, nil
}

func (r *repository) GetStock(ctx context.Context, productID int64) (*models.Stock, error) {
	var stock models.Stock
	if err := r.get(ctx, fmt.Sprintf("/stock/%d", productID), &stock); err != nil {
		r.logger.Error("failed to get stock", zap.Int64("product_id", productID), zap.Error(err))
		return nil, err
	}
	return &stock, nil
}

// get decodes the JSON body at path into out. A 404 is a healthy answer as far as the
// breaker is concerned and surfaces as ErrNotFound.
func (r *repository) get(ctx context.Context, path string, out any) error {
	found, err := r.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
		if err != nil {
			return false, err
		}
		req.Header.Set("Accept", "application/json")

		res, err := r.client.Do(req)
		if err != nil {
			return false, err
		}
		defer res.Body.Close()

		if res.StatusCode == http.StatusNotFound {
			return false, nil
		}
		if res.StatusCode < 200 || res.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<10))
			return false, fmt.Errorf("GET %s: status=%d body=%s", path, res.StatusCode, strings.TrimSpace(string(body)))
		}

		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return false, fmt.Errorf("decode %s: %w", path, err)
		}
		return true, nil
	})
	if err != nil {
		return err
	}
	if ok, _ := found.(bool); !ok {
		return fmt.Errorf("GET %s: %w", path, ErrNotFound)
	}
	return nil
}
