package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whitfield-edu/engagement-api/internal/dto"
	"github.com/whitfield-edu/engagement-api/internal/service"
	appErrors "github.com/whitfield-edu/engagement-api/pkg/errors"
	"github.com/whitfield-edu/engagement-api/pkg/response"
)

// InboxHandler handles notification and messaging endpoints.
type InboxHandler struct {
	service *service.InboxService
}

// NewInboxHandler constructs an inbox handler.
func NewInboxHandler(svc *service.InboxService) *InboxHandler {
	return &InboxHandler{service: svc}
}

// Unread lists the caller's unread notifications, newest first.
func (h *InboxHandler) Unread(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	response.JSON(c, http.StatusOK, h.service.Unread(c.Request.Context(), claims.UserID), nil)
}

// MarkRead marks one of the caller's notifications as read.
func (h *InboxHandler) MarkRead(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), *claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// SendMessage posts a freeform message to another user's inbox.
func (h *InboxHandler) SendMessage(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}

	message, err := h.service.SendMessage(c.Request.Context(), *claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, message)
}

// Conversation returns the recent exchange with another user.
func (h *InboxHandler) Conversation(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	conversation, err := h.service.Conversation(c.Request.Context(), *claims, c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, conversation, nil)
}
