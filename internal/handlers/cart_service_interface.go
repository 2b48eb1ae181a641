package handlers

import (
	"context"

	"rocketshoes-cart/internal/services"
)

// SessionServiceInterface defines the contract for the session service
type SessionServiceInterface interface {
	StartSession(ctx context.Context) (*services.SessionResponse, error)
	CartFor(ctx context.Context, sessionID string) (services.CartStore, error)
}
