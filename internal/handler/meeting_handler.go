package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whitfield-edu/engagement-api/internal/dto"
	"github.com/whitfield-edu/engagement-api/internal/service"
	appErrors "github.com/whitfield-edu/engagement-api/pkg/errors"
	"github.com/whitfield-edu/engagement-api/pkg/response"
)

// MeetingHandler handles meeting endpoints.
type MeetingHandler struct {
	service *service.MeetingService
}

// NewMeetingHandler constructs a meeting handler.
func NewMeetingHandler(svc *service.MeetingService) *MeetingHandler {
	return &MeetingHandler{service: svc}
}

// Book creates a meeting and notifies the counterpart.
func (h *MeetingHandler) Book(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.BookMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid meeting payload"))
		return
	}

	meeting, err := h.service.Book(c.Request.Context(), *claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, meeting)
}

// Agenda lists the caller's meetings in date order.
func (h *MeetingHandler) Agenda(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	meetings, err := h.service.Agenda(c.Request.Context(), *claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, meetings, nil)
}
