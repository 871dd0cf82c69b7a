package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whitfield-edu/engagement-api/internal/service"
	appErrors "github.com/whitfield-edu/engagement-api/pkg/errors"
	"github.com/whitfield-edu/engagement-api/pkg/response"
)

// StatisticsHandler handles statistics and overview endpoints.
type StatisticsHandler struct {
	service *service.StatisticsService
}

// NewStatisticsHandler constructs a statistics handler.
func NewStatisticsHandler(svc *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{service: svc}
}

// Student returns the current statistics snapshot for one student.
func (h *StatisticsHandler) Student(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.service.StudentStatistics(c.Request.Context(), *claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}

// SupervisorOverview lists statistics for the caller's students.
func (h *StatisticsHandler) SupervisorOverview(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	overview, err := h.service.SupervisorOverview(c.Request.Context(), *claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, overview, nil)
}

// TutorOverview lists statistics for every student.
func (h *StatisticsHandler) TutorOverview(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	overview, err := h.service.TutorOverview(c.Request.Context(), *claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, overview, nil)
}
