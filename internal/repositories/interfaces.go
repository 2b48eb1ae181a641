package repositories

import (
	"context"

	"rocketshoes-cart/internal/models"
)

// KeyValueStore is the persistent blob store the cart is written through to.
// A missing key is reported with found=false, not an error.
type KeyValueStore interface {
	GetItem(ctx context.Context, key string) (value string, found bool, err error)
	SetItem(ctx context.Context, key, value string) error
}

// CartRepository loads and saves one serialized cart.
type CartRepository interface {
	Load(ctx context.Context) (models.Cart, error)
	Save(ctx context.Context, cart models.Cart) error
}
