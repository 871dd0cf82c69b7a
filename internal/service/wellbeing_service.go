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

type wellbeingRecords interface {
	RecordWellbeing(ctx context.Context, record models.WellbeingRecord) (models.WellbeingRecord, error)
	RecordNotification(ctx context.Context, notification models.Notification) (models.Notification, error)
	FindUser(id string) (models.User, error)
	WellbeingFor(studentID string) []models.WellbeingRecord
}

// WellbeingService handles check-ins and wellbeing history queries.
type WellbeingService struct {
	records   wellbeingRecords
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewWellbeingService constructs a WellbeingService instance.
func NewWellbeingService(records wellbeingRecords, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *WellbeingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &WellbeingService{
		records:   records,
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CheckIn records a wellbeing check-in for the student. A check-in that
// raises the needs-support flag additionally sends an alert to the
// student's supervisor, on top of any threshold alert the recompute emits.
func (s *WellbeingService) CheckIn(ctx context.Context, studentID string, req dto.CheckInRequest) (*models.WellbeingRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check-in payload")
	}

	record := models.WellbeingRecord{
		StudentID:    studentID,
		RecordedAt:   s.now(),
		FeelingScore: req.FeelingScore,
		Comment:      req.Comment,
		NeedsSupport: req.NeedsSupport,
	}

	saved, err := s.records.RecordWellbeing(ctx, record)
	if err != nil {
		return nil, err
	}

	if saved.NeedsSupport {
		student, err := s.records.FindUser(studentID)
		if err != nil {
			return nil, err
		}
		if _, err := s.records.RecordNotification(ctx, *engine.SupportAlert(saved, student)); err != nil {
			return nil, err
		}
		s.logger.Info("support requested",
			zap.String("student_id", studentID),
			zap.Int("feeling_score", saved.FeelingScore))
	}

	// Every check-in recomputes all statistics, so cached snapshots for
	// every student are stale from here on.
	if s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, statisticsCachePattern); err != nil {
			s.logger.Warn("failed to invalidate statistics cache", zap.Error(err))
		}
	}

	return &saved, nil
}

// History returns a student's check-ins, newest first.
func (s *WellbeingService) History(ctx context.Context, claims models.JWTClaims, studentID string) ([]models.WellbeingRecord, error) {
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
	return s.records.WellbeingFor(studentID), nil
}
