package handlers

import (
	"errors"
	"net/http"

	"rocketshoes-cart/internal/models"
	"rocketshoes-cart/internal/services"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Cart    models.Cart `json:"cart"`
}

type CartResponse struct {
	Cart         models.Cart          `json:"cart"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// statusFor maps a cart operation error onto an HTTP status.
func statusFor(err error) int {
	switch services.Kind(err) {
	case services.KindOutOfStock:
		return http.StatusConflict
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindNetworkError:
		return http.StatusBadGateway
	}
	if errors.Is(err, services.ErrInvalidSession) {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
