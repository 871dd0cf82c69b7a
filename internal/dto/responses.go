package dto

import (
	"time"

	"github.com/whitfield-edu/engagement-api/internal/models"
)

// StudentOverview pairs a student with their current statistics snapshot.
type StudentOverview struct {
	Student    models.UserInfo          `json:"student"`
	Statistics models.StudentStatistics `json:"statistics"`
}

// OverviewResponse lists per-student statistics for a staff dashboard.
type OverviewResponse struct {
	Students    []StudentOverview `json:"students"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// ReportFile is a rendered report ready to be served as a download.
type ReportFile struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}
