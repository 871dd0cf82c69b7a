package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/whitfield-edu/engagement-api/internal/models"
	appErrors "github.com/whitfield-edu/engagement-api/pkg/errors"
	"github.com/whitfield-edu/engagement-api/pkg/export"
)

type mockReportRecords struct {
	users   map[string]models.User
	stats   map[string]models.StudentStatistics
	records map[string][]models.WellbeingRecord
}

func (m *mockReportRecords) FindUser(id string) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return user, nil
}

func (m *mockReportRecords) CurrentStatistics(studentID string) (models.StudentStatistics, error) {
	stats, ok := m.stats[studentID]
	if !ok {
		return models.StudentStatistics{}, appErrors.Clone(appErrors.ErrNotFound, "no statistics for student")
	}
	return stats, nil
}

func (m *mockReportRecords) WellbeingFor(studentID string) []models.WellbeingRecord {
	return m.records[studentID]
}

func newReportService(t *testing.T) *ReportService {
	t.Helper()
	engaged := time.Date(2024, 11, 18, 9, 30, 0, 0, time.UTC)
	records := &mockReportRecords{
		users: map[string]models.User{
			"S1":  {ID: "S1", Name: "Student A", Role: models.RoleStudent, SupervisorID: "PS1"},
			"PS1": {ID: "PS1", Name: "Supervisor 1", Role: models.RolePersonalSupervisor},
		},
		stats: map[string]models.StudentStatistics{
			"S1": {StudentID: "S1", AverageFeelingScore: 6.4, MeetingAttendanceCount: 2, LastEngagement: &engaged, ConsecutiveLowScores: 1},
		},
		records: map[string][]models.WellbeingRecord{
			"S1": {
				{ID: "W1", StudentID: "S1", RecordedAt: engaged, FeelingScore: 6, Comment: "ok"},
			},
		},
	}
	return NewReportService(records, export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop())
}

func TestReportProgressCSV(t *testing.T) {
	svc := newReportService(t)

	file, err := svc.ProgressReport(context.Background(), models.JWTClaims{UserID: "PS1", Role: models.RolePersonalSupervisor}, "S1", "csv")

	require.NoError(t, err)
	assert.Equal(t, "progress_S1.csv", file.FileName)
	assert.Equal(t, "text/csv", file.ContentType)

	body := string(file.Content)
	assert.True(t, strings.HasPrefix(body, "item,value"))
	assert.Contains(t, body, "Student A (S1)")
	assert.Contains(t, body, "6.40")
	assert.Contains(t, body, "18-11-2024")
	assert.Contains(t, body, "score 6/10 - ok")
}

func TestReportProgressCSVNeverEngaged(t *testing.T) {
	svc := newReportService(t)
	records := svc.records.(*mockReportRecords)
	records.stats["S1"] = models.StudentStatistics{StudentID: "S1", RequiresAttention: true}
	records.records["S1"] = nil

	file, err := svc.ProgressReport(context.Background(), models.JWTClaims{UserID: "PS1", Role: models.RolePersonalSupervisor}, "S1", "csv")

	require.NoError(t, err)
	assert.Contains(t, string(file.Content), "Last engagement,never")
}

func TestReportProgressPDF(t *testing.T) {
	svc := newReportService(t)

	file, err := svc.ProgressReport(context.Background(), models.JWTClaims{UserID: "ST1", Role: models.RoleSeniorTutor}, "S1", "pdf")

	require.NoError(t, err)
	assert.Equal(t, "progress_S1.pdf", file.FileName)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestReportProgressUnknownFormat(t *testing.T) {
	svc := newReportService(t)

	_, err := svc.ProgressReport(context.Background(), models.JWTClaims{UserID: "ST1", Role: models.RoleSeniorTutor}, "S1", "xlsx")

	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestReportProgressForbidden(t *testing.T) {
	svc := newReportService(t)

	_, err := svc.ProgressReport(context.Background(), models.JWTClaims{UserID: "S9", Role: models.RoleStudent}, "S1", "csv")

	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}
