package services

import (
	"context"
	"testing"
	"time"

	"rocketshoes-cart/internal/models"
	"rocketshoes-cart/internal/repositories"
	"rocketshoes-cart/pkg/auth"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService(store repositories.KeyValueStore) (*SessionService, *auth.JWTManager) {
	logger, _ := test.NewNullLogger()
	jwtManager := auth.NewJWTManager("test-secret", 1)
	stock := &fakeStock{levels: map[int]int{1: 3}}
	catalog := &fakeCatalog{products: map[int]models.Product{1: sneaker}}
	return NewSessionService(jwtManager, store, testKey, stock, catalog, &recordingNotifier{}, logger), jwtManager
}

func TestStartSession_IssuesValidToken(t *testing.T) {
	svc, jwtManager := newTestSessionService(repositories.NewMemoryStore())

	session, err := svc.StartSession(context.Background())
	require.NoError(t, err)

	_, err = uuid.Parse(session.SessionID)
	require.NoError(t, err)

	claims, err := jwtManager.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.SessionID, claims.SessionID)
}

func TestCartFor_RejectsMalformedSession(t *testing.T) {
	svc, _ := newTestSessionService(repositories.NewMemoryStore())

	_, err := svc.CartFor(context.Background(), "../../etc")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestCartFor_SharesInstancePerSession(t *testing.T) {
	svc, _ := newTestSessionService(repositories.NewMemoryStore())
	id := uuid.New().String()

	first, err := svc.CartFor(context.Background(), id)
	require.NoError(t, err)
	second, err := svc.CartFor(context.Background(), id)
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := svc.CartFor(context.Background(), uuid.New().String())
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestCartFor_PersistsUnderSessionKey(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc, _ := newTestSessionService(store)
	id := uuid.New().String()

	cart, err := svc.CartFor(context.Background(), id)
	require.NoError(t, err)
	_, err = cart.AddProduct(context.Background(), 1)
	require.NoError(t, err)

	_, found, err := store.GetItem(context.Background(), testKey+":"+id)
	require.NoError(t, err)
	assert.True(t, found)

	// a fresh service over the same storage sees the cart
	restarted, _ := newTestSessionService(store)
	reloaded, err := restarted.CartFor(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, cart.Cart(), reloaded.Cart())
}

// slowStore blocks reads of one key until release is closed.
type slowStore struct {
	*repositories.MemoryStore
	slowKey string
	entered chan struct{}
	release chan struct{}
}

func (s *slowStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	if key == s.slowKey {
		close(s.entered)
		<-s.release
	}
	return s.MemoryStore.GetItem(ctx, key)
}

func TestCartFor_SlowLoadDoesNotBlockOtherSessions(t *testing.T) {
	slowID := uuid.New().String()
	store := &slowStore{
		MemoryStore: repositories.NewMemoryStore(),
		slowKey:     testKey + ":" + slowID,
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	svc, _ := newTestSessionService(store)

	slowDone := make(chan error, 1)
	go func() {
		_, err := svc.CartFor(context.Background(), slowID)
		slowDone <- err
	}()
	<-store.entered

	otherDone := make(chan error, 1)
	go func() {
		_, err := svc.CartFor(context.Background(), uuid.New().String())
		otherDone <- err
	}()

	select {
	case err := <-otherDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("CartFor for one session waited on another session's storage read")
	}

	close(store.release)
	require.NoError(t, <-slowDone)
	assert.Equal(t, 2, svc.CachedCarts())
}

func TestCartFor_ConcurrentLoadsShareOneInstance(t *testing.T) {
	svc, _ := newTestSessionService(repositories.NewMemoryStore())
	id := uuid.New().String()

	results := make(chan CartStore, 8)
	for i := 0; i < 8; i++ {
		go func() {
			cart, err := svc.CartFor(context.Background(), id)
			assert.NoError(t, err)
			results <- cart
		}()
	}

	first := <-results
	for i := 1; i < 8; i++ {
		assert.Same(t, first, <-results)
	}
	assert.Equal(t, 1, svc.CachedCarts())
}

func TestCartFor_CacheIsBounded(t *testing.T) {
	svc, _ := newTestSessionService(repositories.NewMemoryStore())
	svc.ConfigureCache(3, time.Hour)

	for i := 0; i < 1000; i++ {
		_, err := svc.CartFor(context.Background(), uuid.New().String())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, svc.CachedCarts())
}

func TestCartFor_EvictsLeastRecentlyUsed(t *testing.T) {
	svc, _ := newTestSessionService(repositories.NewMemoryStore())
	svc.ConfigureCache(2, time.Hour)
	ctx := context.Background()
	a, b, c := uuid.New().String(), uuid.New().String(), uuid.New().String()

	cartA, err := svc.CartFor(ctx, a)
	require.NoError(t, err)
	cartB, err := svc.CartFor(ctx, b)
	require.NoError(t, err)

	// touching a makes b the eviction candidate
	_, err = svc.CartFor(ctx, a)
	require.NoError(t, err)
	_, err = svc.CartFor(ctx, c)
	require.NoError(t, err)

	again, err := svc.CartFor(ctx, a)
	require.NoError(t, err)
	assert.Same(t, cartA, again)

	reloadedB, err := svc.CartFor(ctx, b)
	require.NoError(t, err)
	assert.NotSame(t, cartB, reloadedB)
}

func TestCartFor_IdleCartsExpireAndReloadFromStorage(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc, _ := newTestSessionService(store)
	svc.ConfigureCache(100, 30*time.Minute)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	ctx := context.Background()
	id := uuid.New().String()

	cart, err := svc.CartFor(ctx, id)
	require.NoError(t, err)
	_, err = cart.AddProduct(ctx, 1)
	require.NoError(t, err)

	clock = clock.Add(31 * time.Minute)
	_, err = svc.CartFor(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Equal(t, 1, svc.CachedCarts(), "idle cart is dropped")

	reloaded, err := svc.CartFor(ctx, id)
	require.NoError(t, err)
	assert.NotSame(t, cart, reloaded)
	assert.Equal(t, cart.Cart(), reloaded.Cart())
}
