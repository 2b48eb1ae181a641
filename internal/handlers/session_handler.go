package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService SessionServiceInterface
}

func NewSessionHandler(sessionService SessionServiceInterface) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/sessions", h.StartSession)
}

// StartSession godoc
// @Summary Start a shopper session
// @Description Issue a session token; the cart is scoped to it
// @Tags sessions
// @Produce json
// @Success 201 {object} services.SessionResponse
// @Failure 500 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	session, err := h.sessionService.StartSession(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to start session",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, session)
}
