package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/whitfield-edu/engagement-api/internal/dto"
	"github.com/whitfield-edu/engagement-api/internal/engine"
	"github.com/whitfield-edu/engagement-api/internal/models"
	appErrors "github.com/whitfield-edu/engagement-api/pkg/errors"
)

type meetingRecords interface {
	RecordMeeting(ctx context.Context, meeting models.Meeting) (models.Meeting, error)
	RecordNotification(ctx context.Context, notification models.Notification) (models.Notification, error)
	FindUser(id string) (models.User, error)
	MeetingsForStudent(studentID string) []models.Meeting
	MeetingsForSupervisor(supervisorID string) []models.Meeting
	AllMeetings() []models.Meeting
}

// MeetingService books supervision meetings and serves agendas.
type MeetingService struct {
	records   meetingRecords
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewMeetingService constructs a MeetingService instance.
func NewMeetingService(records meetingRecords, validate *validator.Validate, logger *zap.Logger) *MeetingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MeetingService{
		records:   records,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Book creates a meeting between a student and their personal supervisor.
// Students book for themselves; supervisors book for one of their own
// students. The counterpart receives a meeting-request notification.
func (s *MeetingService) Book(ctx context.Context, claims models.JWTClaims, req dto.BookMeetingRequest) (*models.Meeting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meeting payload")
	}
	if req.Date.Before(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "meeting date cannot be in the past")
	}

	var studentID string
	switch claims.Role {
	case models.RoleStudent:
		if req.StudentID != "" && req.StudentID != claims.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "students can only book for themselves")
		}
		studentID = claims.UserID
	case models.RolePersonalSupervisor:
		if req.StudentID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
		}
		studentID = req.StudentID
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students and supervisors book meetings")
	}

	student, err := s.records.FindUser(studentID)
	if err != nil {
		return nil, err
	}
	if student.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if claims.Role == models.RolePersonalSupervisor && student.SupervisorID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is assigned to a different supervisor")
	}

	supervisor, err := s.records.FindUser(student.SupervisorID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student has no supervisor assigned")
	}

	meeting := models.Meeting{
		Date:           req.Date,
		StudentID:      student.ID,
		StudentName:    student.Name,
		SupervisorID:   supervisor.ID,
		SupervisorName: supervisor.Name,
		Note:           req.Note,
	}

	saved, err := s.records.RecordMeeting(ctx, meeting)
	if err != nil {
		return nil, err
	}

	receiverID := supervisor.ID
	if claims.UserID == supervisor.ID {
		receiverID = student.ID
	}
	notification := engine.MeetingRequestNotification(saved, claims.UserID, receiverID, s.now())
	if _, err := s.records.RecordNotification(ctx, *notification); err != nil {
		return nil, err
	}

	s.logger.Info("meeting booked",
		zap.String("student_id", student.ID),
		zap.String("supervisor_id", supervisor.ID),
		zap.Time("date", saved.Date))

	return &saved, nil
}

// Agenda lists the caller's meetings in date order. Senior tutors hold no
// supervision meetings of their own and see every meeting in the system.
func (s *MeetingService) Agenda(ctx context.Context, claims models.JWTClaims) ([]models.Meeting, error) {
	switch claims.Role {
	case models.RoleStudent:
		return s.records.MeetingsForStudent(claims.UserID), nil
	case models.RolePersonalSupervisor:
		return s.records.MeetingsForSupervisor(claims.UserID), nil
	case models.RoleSeniorTutor:
		return s.records.AllMeetings(), nil
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
}
