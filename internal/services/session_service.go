package services

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"rocketshoes-cart/internal/repositories"
	"rocketshoes-cart/pkg/auth"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrInvalidSession = errors.New("invalid session ID")

const (
	DefaultMaxCachedCarts = 10000
	DefaultCartIdleTTL    = time.Hour
)

type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type cachedCart struct {
	sessionID string
	cart      *CartService
	lastUsed  time.Time
}

// SessionService hands out session tokens and keeps recently used carts in
// memory. Carts are always persisted, so an evicted cart is simply reloaded
// from storage on its next access.
type SessionService struct {
	jwtManager *auth.JWTManager
	store      repositories.KeyValueStore
	storageKey string
	stock      StockService
	catalog    CatalogService
	notifier   Notifier
	log        logrus.FieldLogger

	mu       sync.Mutex
	carts    map[string]*list.Element
	lru      *list.List // front is most recently used
	maxCarts int
	idleTTL  time.Duration
	now      func() time.Time
}

func NewSessionService(
	jwtManager *auth.JWTManager,
	store repositories.KeyValueStore,
	storageKey string,
	stock StockService,
	catalog CatalogService,
	notifier Notifier,
	log logrus.FieldLogger,
) *SessionService {
	return &SessionService{
		jwtManager: jwtManager,
		store:      store,
		storageKey: storageKey,
		stock:      stock,
		catalog:    catalog,
		notifier:   notifier,
		log:        log,
		carts:      make(map[string]*list.Element),
		lru:        list.New(),
		maxCarts:   DefaultMaxCachedCarts,
		idleTTL:    DefaultCartIdleTTL,
		now:        time.Now,
	}
}

// ConfigureCache bounds the in-memory cart cache. Non-positive values keep
// the current setting.
func (s *SessionService) ConfigureCache(maxCarts int, idleTTL time.Duration) *SessionService {
	s.mu.Lock()
	defer s.mu.Unlock()

	if maxCarts > 0 {
		s.maxCarts = maxCarts
	}
	if idleTTL > 0 {
		s.idleTTL = idleTTL
	}
	s.evictLocked()
	return s
}

func (s *SessionService) StartSession(ctx context.Context) (*SessionResponse, error) {
	sessionID := uuid.New().String()

	token, expiresAt, err := s.jwtManager.GenerateSessionToken(sessionID)
	if err != nil {
		return nil, err
	}

	s.log.WithField("session_id", sessionID).Info("session started")
	return &SessionResponse{
		SessionID: sessionID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// CartFor returns the session's cart. A cart missing from the cache is read
// from storage without holding the cache lock; if two callers race to load
// the same session, the first one stored wins and both get that instance.
func (s *SessionService) CartFor(ctx context.Context, sessionID string) (CartStore, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, ErrInvalidSession
	}

	if cart := s.cached(sessionID); cart != nil {
		return cart, nil
	}

	repo := repositories.NewCartRepository(s.store, s.StorageKey(sessionID), s.log)
	loaded, err := NewCartService(ctx, sessionID, repo, s.stock, s.catalog, s.notifier, s.log)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if element, ok := s.carts[sessionID]; ok {
		return s.touchLocked(element), nil
	}
	s.carts[sessionID] = s.lru.PushFront(&cachedCart{
		sessionID: sessionID,
		cart:      loaded,
		lastUsed:  s.now(),
	})
	s.evictLocked()
	return loaded, nil
}

// StorageKey is the key a session's cart is persisted under.
func (s *SessionService) StorageKey(sessionID string) string {
	return s.storageKey + ":" + sessionID
}

// CachedCarts reports how many carts are held in memory.
func (s *SessionService) CachedCarts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

func (s *SessionService) cached(sessionID string) *CartService {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()
	if element, ok := s.carts[sessionID]; ok {
		return s.touchLocked(element)
	}
	return nil
}

func (s *SessionService) touchLocked(element *list.Element) *CartService {
	entry := element.Value.(*cachedCart)
	entry.lastUsed = s.now()
	s.lru.MoveToFront(element)
	return entry.cart
}

// evictLocked drops idle carts from the back of the list, then the least
// recently used ones until the cache fits.
func (s *SessionService) evictLocked() {
	cutoff := s.now().Add(-s.idleTTL)
	for back := s.lru.Back(); back != nil; back = s.lru.Back() {
		entry := back.Value.(*cachedCart)
		if s.lru.Len() <= s.maxCarts && !entry.lastUsed.Before(cutoff) {
			return
		}
		s.lru.Remove(back)
		delete(s.carts, entry.sessionID)
		s.log.WithField("session_id", entry.sessionID).Debug("cart evicted from memory")
	}
}
