// Package snapshot persists serialized carts under a key.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gofalre.io/storefront/models"
)

var ErrCorrupt = errors.New("cart snapshot is corrupt")

// Repository is a key-value store holding one serialized cart per key.
type Repository interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Encode serializes a cart as a JSON array of products.
func Encode(cart models.Cart) (string, error) {
	if cart == nil {
		cart = models.NewCart()
	}
	b, err := json.Marshal(cart)
	if err != nil {
		return "", fmt.Errorf("encode cart snapshot: %w", err)
	}
	return string(b), nil
}

// Decode parses a snapshot written by Encode. Duplicate product ids are rejected as corrupt.
func Decode(value string) (models.Cart, error) {
	var cart models.Cart
	if err := json.Unmarshal([]byte(value), &cart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if cart == nil {
		return models.NewCart(), nil
	}

	seen := make(map[int64]struct{}, len(cart))
	for _, p := range cart {
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product %d", ErrCorrupt, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return cart, nil
}
