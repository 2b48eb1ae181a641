package services

import (
	"context"
	"fmt"
	"sync"

	"rocketshoes-cart/internal/models"
	"rocketshoes-cart/internal/repositories"

	"github.com/sirupsen/logrus"
)

// User-facing notification messages.
const (
	MsgOutOfStock     = "Requested quantity out of stock"
	MsgProductAdded   = "Product added to cart"
	MsgAddFailed      = "Failed to add product"
	MsgProductRemoved = "Product removed from cart"
	MsgRemoveFailed   = "Failed to remove product"
	MsgAmountUpdated  = "Product amount updated"
	MsgUpdateFailed   = "Failed to update product amount"
)

const (
	OpAddProduct          = "add_product"
	OpRemoveProduct       = "remove_product"
	OpUpdateProductAmount = "update_product_amount"
)

// StockService reports how many units of a product are available.
type StockService interface {
	GetStock(ctx context.Context, productID int) (*models.StockRecord, error)
}

// CatalogService returns product details.
type CatalogService interface {
	GetProduct(ctx context.Context, productID int) (*models.Product, error)
}

// CartStore is the cart surface the storefront consumes.
type CartStore interface {
	Cart() models.Cart
	AddProduct(ctx context.Context, productID int) (models.Cart, error)
	RemoveProduct(ctx context.Context, productID int) (models.Cart, error)
	UpdateProductAmount(ctx context.Context, req UpdateProductAmountRequest) (models.Cart, error)
}

type UpdateProductAmountRequest struct {
	ProductID int `json:"product_id"`
	Amount    int `json:"amount"`
}

// CartService holds one shopper's cart and writes it through to storage on
// every mutation. The lock only guards the list itself: remote calls run
// unlocked, so concurrent operations interleave and the last commit wins.
type CartService struct {
	mu   sync.RWMutex
	cart models.Cart
	// commitMu keeps storage and memory swapped together.
	commitMu sync.Mutex

	sessionID string
	repo      repositories.CartRepository
	stock     StockService
	catalog   CatalogService
	notifier  Notifier
	log       logrus.FieldLogger
}

// NewCartService loads the persisted cart and returns a store around it.
func NewCartService(
	ctx context.Context,
	sessionID string,
	repo repositories.CartRepository,
	stock StockService,
	catalog CatalogService,
	notifier Notifier,
	log logrus.FieldLogger,
) (*CartService, error) {
	cart, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	return &CartService{
		cart:      cart,
		sessionID: sessionID,
		repo:      repo,
		stock:     stock,
		catalog:   catalog,
		notifier:  notifier,
		log:       log.WithField("session_id", sessionID),
	}, nil
}

// Cart returns a snapshot; callers may modify it freely.
func (s *CartService) Cart() models.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

func (s *CartService) AddProduct(ctx context.Context, productID int) (models.Cart, error) {
	updated := s.Cart()
	index := updated.Find(productID)

	newAmount := 1
	if index >= 0 {
		newAmount = updated[index].Amount + 1
	}

	stock, err := s.stock.GetStock(ctx, productID)
	if err != nil {
		return s.fail(ctx, OpAddProduct, productID, remoteError(err))
	}
	if stock.Amount < newAmount {
		return s.fail(ctx, OpAddProduct, productID, ErrOutOfStock)
	}

	if index >= 0 {
		updated[index].Amount = newAmount
	} else {
		product, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return s.fail(ctx, OpAddProduct, productID, remoteError(err))
		}
		if product.ID == 0 {
			product.ID = productID
		}
		product.Amount = 1
		updated = append(updated, *product)
	}

	if err := s.commit(ctx, updated); err != nil {
		return s.fail(ctx, OpAddProduct, productID, err)
	}

	s.succeed(ctx, OpAddProduct, productID)
	return updated.Clone(), nil
}

func (s *CartService) RemoveProduct(ctx context.Context, productID int) (models.Cart, error) {
	updated := s.Cart()
	index := updated.Find(productID)
	if index < 0 {
		return s.fail(ctx, OpRemoveProduct, productID, ErrProductNotInCart)
	}

	updated = append(updated[:index], updated[index+1:]...)

	if err := s.commit(ctx, updated); err != nil {
		return s.fail(ctx, OpRemoveProduct, productID, err)
	}

	s.succeed(ctx, OpRemoveProduct, productID)
	return updated.Clone(), nil
}

// UpdateProductAmount sets the held quantity. Amounts <= 0 are ignored
// without a notification.
func (s *CartService) UpdateProductAmount(ctx context.Context, req UpdateProductAmountRequest) (models.Cart, error) {
	if req.Amount <= 0 {
		return s.Cart(), nil
	}

	updated := s.Cart()
	index := updated.Find(req.ProductID)
	if index < 0 {
		return s.fail(ctx, OpUpdateProductAmount, req.ProductID, ErrProductNotInCart)
	}

	stock, err := s.stock.GetStock(ctx, req.ProductID)
	if err != nil {
		return s.fail(ctx, OpUpdateProductAmount, req.ProductID, remoteError(err))
	}
	if stock.Amount < req.Amount {
		return s.fail(ctx, OpUpdateProductAmount, req.ProductID, ErrOutOfStock)
	}

	updated[index].Amount = req.Amount

	if err := s.commit(ctx, updated); err != nil {
		return s.fail(ctx, OpUpdateProductAmount, req.ProductID, err)
	}

	s.succeed(ctx, OpUpdateProductAmount, req.ProductID)
	return updated.Clone(), nil
}

// commit persists first, then swaps the in-memory list.
func (s *CartService) commit(ctx context.Context, cart models.Cart) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if err := s.repo.Save(ctx, cart); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.mu.Lock()
	s.cart = cart.Clone()
	s.mu.Unlock()
	return nil
}

func (s *CartService) fail(ctx context.Context, op string, productID int, err error) (models.Cart, error) {
	s.log.WithFields(logrus.Fields{
		"operation":  op,
		"product_id": productID,
		"kind":       Kind(err),
	}).WithError(err).Debug("cart operation rejected")

	s.notify(ctx, NotificationFor(op, productID, err))
	return s.Cart(), err
}

func (s *CartService) succeed(ctx context.Context, op string, productID int) {
	s.notify(ctx, NotificationFor(op, productID, nil))
}

func (s *CartService) notify(ctx context.Context, n models.Notification) {
	n.SessionID = s.sessionID
	if collector := collectorFrom(ctx); collector != nil {
		collector.add(n)
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, n)
	}
}

var operationMessages = map[string]struct{ success, failure string }{
	OpAddProduct:          {MsgProductAdded, MsgAddFailed},
	OpRemoveProduct:       {MsgProductRemoved, MsgRemoveFailed},
	OpUpdateProductAmount: {MsgAmountUpdated, MsgUpdateFailed},
}

// NotificationFor builds the message shown to the shopper for an operation
// outcome. Out-of-stock has its own message; every other failure gets the
// operation's generic one.
func NotificationFor(op string, productID int, err error) models.Notification {
	messages := operationMessages[op]
	n := models.Notification{
		Type:      models.NotificationSuccess,
		Message:   messages.success,
		Operation: op,
		ProductID: productID,
	}
	if err == nil {
		return n
	}

	n.Type = models.NotificationError
	if Kind(err) == KindOutOfStock {
		n.Message = MsgOutOfStock
	} else {
		n.Message = messages.failure
	}
	return n
}
