package handlers

import (
	"net/http"
	"strconv"

	"rocketshoes-cart/internal/middleware"
	"rocketshoes-cart/internal/models"
	"rocketshoes-cart/internal/services"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	sessionService SessionServiceInterface
}

func NewCartHandler(sessionService SessionServiceInterface) *CartHandler {
	return &CartHandler{
		sessionService: sessionService,
	}
}

// RegisterRoutes registers the routes for cart management
func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	// All cart routes require a session
	cart := router.Group("/cart", authMiddleware.SessionRequired())
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddProduct)
		cart.PUT("/items/:productId", h.UpdateProductAmount)
		cart.DELETE("/items/:productId", h.RemoveProduct)
	}
}

// GetCart godoc
// @Summary Get the session's cart
// @Tags cart
// @Produce json
// @Success 200 {object} CartResponse
// @Failure 401 {object} ErrorResponse
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, ok := h.cartFor(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, CartResponse{Cart: cart.Cart()})
}

// AddProduct godoc
// @Summary Add one unit of a product
// @Description Adds the product or increments its amount, checked against stock
// @Tags cart
// @Accept json
// @Produce json
// @Param item body AddProductRequest true "Product to add"
// @Success 200 {object} CartResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /cart/items [post]
func (h *CartHandler) AddProduct(c *gin.Context) {
	var req AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	cart, ok := h.cartFor(c)
	if !ok {
		return
	}

	ctx, notifications := services.CollectNotifications(c.Request.Context())
	updated, err := cart.AddProduct(ctx, req.ProductID)
	h.respond(c, updated, notifications.Last(), err)
}

// UpdateProductAmount godoc
// @Summary Set the amount held for a product
// @Description Amounts <= 0 are ignored: the cart comes back unchanged with no notification
// @Tags cart
// @Accept json
// @Produce json
// @Param productId path int true "Product ID"
// @Param item body UpdateProductAmountRequest true "New amount"
// @Success 200 {object} CartResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /cart/items/{productId} [put]
func (h *CartHandler) UpdateProductAmount(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	var req UpdateProductAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	cart, ok := h.cartFor(c)
	if !ok {
		return
	}

	ctx, notifications := services.CollectNotifications(c.Request.Context())
	updated, err := cart.UpdateProductAmount(ctx, services.UpdateProductAmountRequest{
		ProductID: productID,
		Amount:    *req.Amount,
	})
	h.respond(c, updated, notifications.Last(), err)
}

// RemoveProduct godoc
// @Summary Remove a product from the cart
// @Tags cart
// @Produce json
// @Param productId path int true "Product ID"
// @Success 200 {object} CartResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /cart/items/{productId} [delete]
func (h *CartHandler) RemoveProduct(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	cart, ok := h.cartFor(c)
	if !ok {
		return
	}

	ctx, notifications := services.CollectNotifications(c.Request.Context())
	updated, err := cart.RemoveProduct(ctx, productID)
	h.respond(c, updated, notifications.Last(), err)
}

func (h *CartHandler) cartFor(c *gin.Context) (services.CartStore, bool) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Unauthorized",
			Message: "Session ID not found",
		})
		return nil, false
	}

	cart, err := h.sessionService.CartFor(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{
			Error:   "Failed to load cart",
			Message: err.Error(),
		})
		return nil, false
	}
	return cart, true
}

// respond echoes the notification the operation emitted; a no-op emits none.
func (h *CartHandler) respond(c *gin.Context, cart models.Cart, notification *models.Notification, err error) {
	if err != nil {
		message := "Cart operation failed"
		if notification != nil {
			message = notification.Message
		}
		c.JSON(statusFor(err), ErrorResponse{
			Error:   message,
			Message: err.Error(),
			Cart:    cart,
		})
		return
	}

	c.JSON(http.StatusOK, CartResponse{
		Cart:         cart,
		Notification: notification,
	})
}

func productIDParam(c *gin.Context) (int, bool) {
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil || productID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid product ID",
			Message: "Please provide a positive integer product ID",
		})
		return 0, false
	}
	return productID, true
}

// Request and Response structs
type AddProductRequest struct {
	ProductID int `json:"product_id" binding:"required,min=1"`
}

type UpdateProductAmountRequest struct {
	// pointer so an explicit 0 binds instead of failing "required"
	Amount *int `json:"amount" binding:"required"`
}
