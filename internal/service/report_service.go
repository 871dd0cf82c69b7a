package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/whitfield-edu/engagement-api/internal/dto"
	"github.com/whitfield-edu/engagement-api/internal/models"
	appErrors "github.com/whitfield-edu/engagement-api/pkg/errors"
	"github.com/whitfield-edu/engagement-api/pkg/export"
)

// recentCheckInsInReport caps the history section of a progress report.
const recentCheckInsInReport = 10

type reportRecords interface {
	FindUser(id string) (models.User, error)
	CurrentStatistics(studentID string) (models.StudentStatistics, error)
	WellbeingFor(studentID string) []models.WellbeingRecord
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportService renders downloadable student progress reports.
type ReportService struct {
	records reportRecords
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
	now     func() time.Time
}

// NewReportService constructs a ReportService instance.
func NewReportService(records reportRecords, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		records: records,
		csv:     csv,
		pdf:     pdf,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ProgressReport builds the statistics-plus-recent-check-ins report for a
// student in the requested format.
func (s *ReportService) ProgressReport(ctx context.Context, claims models.JWTClaims, studentID, format string) (*dto.ReportFile, error) {
	student, err := s.records.FindUser(studentID)
	if err != nil {
		return nil, err
	}
	if student.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if !canViewStudent(claims, student) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to view this student")
	}

	stats, err := s.records.CurrentStatistics(studentID)
	if err != nil {
		return nil, err
	}

	recent := s.records.WellbeingFor(studentID)
	if len(recent) > recentCheckInsInReport {
		recent = recent[:recentCheckInsInReport]
	}

	dataset := buildProgressDataset(student, stats, recent)
	title := fmt.Sprintf("Progress report - %s", student.Name)

	switch format {
	case "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &dto.ReportFile{
			FileName:    fmt.Sprintf("progress_%s.csv", student.ID),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &dto.ReportFile{
			FileName:    fmt.Sprintf("progress_%s.pdf", student.ID),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func buildProgressDataset(student models.User, stats models.StudentStatistics, recent []models.WellbeingRecord) export.Dataset {
	lastEngagement := "never"
	if stats.LastEngagement != nil {
		lastEngagement = stats.LastEngagement.Format("02-01-2006")
	}

	rows := []map[string]string{
		{"item": "Student", "value": fmt.Sprintf("%s (%s)", student.Name, student.ID)},
		{"item": "Average feeling score", "value": strconv.FormatFloat(stats.AverageFeelingScore, 'f', 2, 64)},
		{"item": "Meetings attended", "value": strconv.Itoa(stats.MeetingAttendanceCount)},
		{"item": "Last engagement", "value": lastEngagement},
		{"item": "Consecutive low scores", "value": strconv.Itoa(stats.ConsecutiveLowScores)},
		{"item": "Requires attention", "value": strconv.FormatBool(stats.RequiresAttention)},
	}
	for _, record := range recent {
		value := fmt.Sprintf("score %d/10", record.FeelingScore)
		if record.Comment != "" {
			value += " - " + record.Comment
		}
		rows = append(rows, map[string]string{
			"item":  "Check-in " + record.RecordedAt.Format("02-01-2006"),
			"value": value,
		})
	}

	return export.Dataset{Headers: []string{"item", "value"}, Rows: rows}
}
