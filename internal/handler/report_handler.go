package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whitfield-edu/engagement-api/internal/service"
	appErrors "github.com/whitfield-edu/engagement-api/pkg/errors"
	"github.com/whitfield-edu/engagement-api/pkg/response"
)

// ReportHandler serves downloadable progress reports.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs a report handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Progress renders a student progress report as csv or pdf.
func (h *ReportHandler) Progress(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := c.DefaultQuery("format", "csv")
	file, err := h.service.ProgressReport(c.Request.Context(), *claims, c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
