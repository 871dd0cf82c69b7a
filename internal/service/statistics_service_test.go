package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/whitfield-edu/engagement-api/internal/models"
	appErrors "github.com/whitfield-edu/engagement-api/pkg/errors"
)

type mockStatisticsRecords struct {
	users map[string]models.User
	stats map[string]models.StudentStatistics
	reads int
}

func (m *mockStatisticsRecords) CurrentStatistics(studentID string) (models.StudentStatistics, error) {
	m.reads++
	stats, ok := m.stats[studentID]
	if !ok {
		return models.StudentStatistics{}, appErrors.Clone(appErrors.ErrNotFound, "no statistics for student")
	}
	return stats, nil
}

func (m *mockStatisticsRecords) FindUser(id string) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return user, nil
}

func (m *mockStatisticsRecords) StudentsOf(supervisorID string) []models.User {
	out := []models.User{}
	for _, u := range m.users {
		if u.Role == models.RoleStudent && u.SupervisorID == supervisorID {
			out = append(out, u)
		}
	}
	return out
}

func (m *mockStatisticsRecords) UsersWithRole(role models.UserRole) []models.User {
	out := []models.User{}
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

// memoryCacheRepo is an in-process CacheRepository used to exercise the
// cache path without Redis.
type memoryCacheRepo struct {
	entries map[string][]byte
	deletes []string
}

func (r *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := r.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if r.entries == nil {
		r.entries = map[string][]byte{}
	}
	r.entries[key] = raw
	return nil
}

func (r *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	r.deletes = append(r.deletes, pattern)
	r.entries = map[string][]byte{}
	return nil
}

func newStatisticsService(t *testing.T, cache *CacheService) (*StatisticsService, *mockStatisticsRecords) {
	t.Helper()
	records := &mockStatisticsRecords{
		users: map[string]models.User{
			"S1":  {ID: "S1", Name: "Student A", Role: models.RoleStudent, SupervisorID: "PS1"},
			"S2":  {ID: "S2", Name: "Student B", Role: models.RoleStudent, SupervisorID: "PS1"},
			"S3":  {ID: "S3", Name: "Student C", Role: models.RoleStudent, SupervisorID: "PS2"},
			"PS1": {ID: "PS1", Name: "Supervisor 1", Role: models.RolePersonalSupervisor},
		},
		stats: map[string]models.StudentStatistics{
			"S1": {StudentID: "S1", AverageFeelingScore: 7},
			"S2": {StudentID: "S2", RequiresAttention: true},
			"S3": {StudentID: "S3", AverageFeelingScore: 4},
		},
	}
	return NewStatisticsService(records, cache, zap.NewNop()), records
}

func TestStatisticsStudentAccess(t *testing.T) {
	svc, _ := newStatisticsService(t, nil)

	stats, err := svc.StudentStatistics(context.Background(), models.JWTClaims{UserID: "S1", Role: models.RoleStudent}, "S1")
	require.NoError(t, err)
	assert.Equal(t, 7.0, stats.AverageFeelingScore)

	_, err = svc.StudentStatistics(context.Background(), models.JWTClaims{UserID: "S1", Role: models.RoleStudent}, "S2")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.StudentStatistics(context.Background(), models.JWTClaims{UserID: "ST1", Role: models.RoleSeniorTutor}, "ghost")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStatisticsCachedReadSkipsStore(t *testing.T) {
	repo := &memoryCacheRepo{}
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	svc, records := newStatisticsService(t, cache)
	claims := models.JWTClaims{UserID: "ST1", Role: models.RoleSeniorTutor}

	first, err := svc.StudentStatistics(context.Background(), claims, "S1")
	require.NoError(t, err)
	assert.Equal(t, 1, records.reads)

	second, err := svc.StudentStatistics(context.Background(), claims, "S1")
	require.NoError(t, err)
	assert.Equal(t, 1, records.reads)
	assert.Equal(t, first, second)
}

func TestStatisticsSupervisorOverview(t *testing.T) {
	svc, _ := newStatisticsService(t, nil)

	overview, err := svc.SupervisorOverview(context.Background(), models.JWTClaims{UserID: "PS1", Role: models.RolePersonalSupervisor})

	require.NoError(t, err)
	require.Len(t, overview.Students, 2)
	for _, entry := range overview.Students {
		assert.Equal(t, "PS1", entry.Student.SupervisorID)
	}
	assert.False(t, overview.GeneratedAt.IsZero())
}

func TestStatisticsSupervisorOverviewWrongRole(t *testing.T) {
	svc, _ := newStatisticsService(t, nil)

	_, err := svc.SupervisorOverview(context.Background(), models.JWTClaims{UserID: "S1", Role: models.RoleStudent})

	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestStatisticsTutorOverviewListsAllStudents(t *testing.T) {
	svc, _ := newStatisticsService(t, nil)

	overview, err := svc.TutorOverview(context.Background(), models.JWTClaims{UserID: "ST1", Role: models.RoleSeniorTutor})

	require.NoError(t, err)
	assert.Len(t, overview.Students, 3)
}

func TestStatisticsTutorOverviewWrongRole(t *testing.T) {
	svc, _ := newStatisticsService(t, nil)

	_, err := svc.TutorOverview(context.Background(), models.JWTClaims{UserID: "PS1", Role: models.RolePersonalSupervisor})

	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}
