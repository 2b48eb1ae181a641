package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"rocketshoes-cart/internal/models"

	"github.com/sirupsen/logrus"
)

type cartRepository struct {
	store KeyValueStore
	key   string
	log   logrus.FieldLogger
}

// NewCartRepository stores a cart as a JSON array under key.
func NewCartRepository(store KeyValueStore, key string, log logrus.FieldLogger) CartRepository {
	return &cartRepository{
		store: store,
		key:   key,
		log:   log,
	}
}

// Load returns an empty cart when the key is absent or its content does not
// parse; only a failing store is reported as an error.
func (r *cartRepository) Load(ctx context.Context) (models.Cart, error) {
	raw, found, err := r.store.GetItem(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart %q: %w", r.key, err)
	}
	if !found || raw == "" {
		return models.Cart{}, nil
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		r.log.WithFields(logrus.Fields{
			"storage_key": r.key,
			"error":       err.Error(),
		}).Warn("stored cart is corrupt, starting with an empty cart")
		return models.Cart{}, nil
	}
	if cart == nil {
		cart = models.Cart{}
	}
	return cart, nil
}

func (r *cartRepository) Save(ctx context.Context, cart models.Cart) error {
	if cart == nil {
		cart = models.Cart{}
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	if err := r.store.SetItem(ctx, r.key, string(data)); err != nil {
		return fmt.Errorf("failed to write cart %q: %w", r.key, err)
	}
	return nil
}
