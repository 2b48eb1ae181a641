package services

import (
	"errors"
	"fmt"

	"rocketshoes-cart/pkg/api"
)

var (
	ErrOutOfStock         = errors.New("requested quantity out of stock")
	ErrProductNotFound    = errors.New("product not found")
	ErrProductNotInCart   = errors.New("product is not in the cart")
	ErrServiceUnavailable = errors.New("storefront service unavailable")
	ErrStorage            = errors.New("cart storage failure")
)

// ErrorKind is the outcome of a cart operation as presented to callers.
type ErrorKind string

const (
	KindOK           ErrorKind = "ok"
	KindOutOfStock   ErrorKind = "out_of_stock"
	KindNotFound     ErrorKind = "not_found"
	KindNetworkError ErrorKind = "network_error"
	KindFailed       ErrorKind = "failed"
)

// Kind classifies an error returned by CartService.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrOutOfStock):
		return KindOutOfStock
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrProductNotInCart):
		return KindNotFound
	case errors.Is(err, ErrServiceUnavailable):
		return KindNetworkError
	default:
		return KindFailed
	}
}

// remoteError maps a storefront API failure onto the service errors.
func remoteError(err error) error {
	if errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrProductNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
}
