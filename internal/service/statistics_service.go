package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/whitfield-edu/engagement-api/internal/dto"
	"github.com/whitfield-edu/engagement-api/internal/models"
	appErrors "github.com/whitfield-edu/engagement-api/pkg/errors"
)

// statisticsCachePattern matches every cached statistics snapshot.
const statisticsCachePattern = "stats:*"

func statisticsCacheKey(studentID string) string {
	return "stats:" + studentID
}

type statisticsRecords interface {
	CurrentStatistics(studentID string) (models.StudentStatistics, error)
	FindUser(id string) (models.User, error)
	StudentsOf(supervisorID string) []models.User
	UsersWithRole(role models.UserRole) []models.User
}

// StatisticsService serves statistics snapshots and staff overviews. The
// cache is a read-side convenience for display endpoints; the record store
// remains the source of truth and the cache is invalidated on every
// wellbeing mutation.
type StatisticsService struct {
	records statisticsRecords
	cache   *CacheService
	logger  *zap.Logger
	now     func() time.Time
}

// NewStatisticsService constructs a StatisticsService instance.
func NewStatisticsService(records statisticsRecords, cache *CacheService, logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{
		records: records,
		cache:   cache,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// StudentStatistics returns the current snapshot for one student.
func (s *StatisticsService) StudentStatistics(ctx context.Context, claims models.JWTClaims, studentID string) (*models.StudentStatistics, error) {
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

	if s.cache.Enabled() {
		var cached models.StudentStatistics
		hit, err := s.cache.Get(ctx, statisticsCacheKey(studentID), &cached)
		if err == nil && hit {
			return &cached, nil
		}
	}

	stats, err := s.records.CurrentStatistics(studentID)
	if err != nil {
		return nil, err
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, statisticsCacheKey(studentID), stats, 0); err != nil {
			s.logger.Warn("failed to cache statistics", zap.String("student_id", studentID), zap.Error(err))
		}
	}

	return &stats, nil
}

// SupervisorOverview lists current statistics for each of the caller's
// students.
func (s *StatisticsService) SupervisorOverview(ctx context.Context, claims models.JWTClaims) (*dto.OverviewResponse, error) {
	if claims.Role != models.RolePersonalSupervisor {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return s.overview(s.records.StudentsOf(claims.UserID))
}

// TutorOverview lists current statistics for every student.
func (s *StatisticsService) TutorOverview(ctx context.Context, claims models.JWTClaims) (*dto.OverviewResponse, error) {
	if claims.Role != models.RoleSeniorTutor {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return s.overview(s.records.UsersWithRole(models.RoleStudent))
}

func (s *StatisticsService) overview(students []models.User) (*dto.OverviewResponse, error) {
	entries := make([]dto.StudentOverview, 0, len(students))
	for _, student := range students {
		stats, err := s.records.CurrentStatistics(student.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, dto.StudentOverview{
			Student: models.UserInfo{
				ID:           student.ID,
				Name:         student.Name,
				Role:         student.Role,
				SupervisorID: student.SupervisorID,
			},
			Statistics: stats,
		})
	}
	return &dto.OverviewResponse{Students: entries, GeneratedAt: s.now()}, nil
}
