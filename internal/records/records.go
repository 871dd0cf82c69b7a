// Package records owns the in-memory data set and its write-through
// persistence. All mutation funnels through here: append, recompute the
// derived statistics where required, then rewrite the whole persisted
// document. A single mutex serializes access; there is exactly one writer
// per process.
package records

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/whitfield-edu/engagement-api/internal/engine"
	"github.com/whitfield-edu/engagement-api/internal/models"
	"github.com/whitfield-edu/engagement-api/internal/store"
	appErrors "github.com/whitfield-edu/engagement-api/pkg/errors"
)

// Store is the record store: four append-mostly collections plus the
// derived per-student statistics map.
type Store struct {
	mu        sync.Mutex
	data      *store.Snapshot
	persister store.Store
	logger    *zap.Logger

	// now is injectable for tests.
	now func() time.Time

	// onAlert, when set, is invoked once per appended attention alert.
	onAlert func()
}

// SetAlertHook registers a callback fired for every attention alert the
// recompute pass appends. Used to feed the metrics counter.
func (s *Store) SetAlertHook(hook func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAlert = hook
}

// Open loads the persisted document, seeding the fixed demo users when no
// document exists yet. After loading, any student missing a statistics
// entry gets one via a full recompute pass; loading alone never recomputes,
// so a persisted snapshot round-trips unchanged.
func Open(ctx context.Context, persister store.Store, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	snapshot, err := persister.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load data set")
	}

	s := &Store{
		persister: persister,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}

	if snapshot == nil {
		seeded, err := store.SeedSnapshot()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build seed data")
		}
		s.data = seeded
		logger.Info("no persisted data found, seeding demo users", zap.Int("users", len(seeded.Users)))
		s.recomputeLocked(s.now())
		if err := s.persistLocked(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}

	s.data = snapshot
	if s.statisticsMissingLocked() {
		s.recomputeLocked(s.now())
		if err := s.persistLocked(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// RecordWellbeing appends a check-in, recomputes statistics for every
// student, appends any resulting alerts, and persists the full data set.
func (s *Store) RecordWellbeing(ctx context.Context, record models.WellbeingRecord) (models.WellbeingRecord, error) {
	if !record.ValidScore() {
		return models.WellbeingRecord{}, appErrors.Clone(appErrors.ErrValidation, "feeling score must be between 1 and 10")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.findUserLocked(record.StudentID)
	if !ok || student.Role != models.RoleStudent {
		return models.WellbeingRecord{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = s.now()
	}

	s.data.WellbeingRecords = append(s.data.WellbeingRecords, record)
	s.recomputeLocked(s.now())

	if err := s.persistLocked(ctx); err != nil {
		return models.WellbeingRecord{}, err
	}
	return record, nil
}

// RecordMeeting appends a meeting and persists. Meetings do not trigger a
// statistics recompute; attendance is derived lazily on the next one.
func (s *Store) RecordMeeting(ctx context.Context, meeting models.Meeting) (models.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.findUserLocked(meeting.StudentID)
	if !ok || student.Role != models.RoleStudent {
		return models.Meeting{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	if meeting.ID == "" {
		meeting.ID = uuid.NewString()
	}

	s.data.Meetings = append(s.data.Meetings, meeting)
	if err := s.persistLocked(ctx); err != nil {
		return models.Meeting{}, err
	}
	return meeting, nil
}

// RecordNotification appends a notification and persists.
func (s *Store) RecordNotification(ctx context.Context, notification models.Notification) (models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.SentAt.IsZero() {
		notification.SentAt = s.now()
	}

	s.data.Notifications = append(s.data.Notifications, notification)
	if err := s.persistLocked(ctx); err != nil {
		return models.Notification{}, err
	}
	return notification, nil
}

// UnreadFor returns the receiver's unread notifications, newest first. The
// result is computed fresh on every call.
func (s *Store) UnreadFor(userID string) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	unread := []models.Notification{}
	for _, n := range s.data.Notifications {
		if n.ReceiverID == userID && !n.IsRead {
			unread = append(unread, n)
		}
	}
	sort.SliceStable(unread, func(i, j int) bool {
		return unread[i].SentAt.After(unread[j].SentAt)
	})
	return unread
}

// MarkRead flips a notification to read. Unknown ids fail with NotFound;
// re-marking an already-read notification is a no-op.
func (s *Store) MarkRead(ctx context.Context, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Notifications {
		if s.data.Notifications[i].ID != notificationID {
			continue
		}
		if s.data.Notifications[i].IsRead {
			return nil
		}
		s.data.Notifications[i].IsRead = true
		return s.persistLocked(ctx)
	}
	return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
}

// FindNotification looks up a notification by id.
func (s *Store) FindNotification(id string) (models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.data.Notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return models.Notification{}, appErrors.Clone(appErrors.ErrNotFound, "notification not found")
}

// CurrentStatistics returns the latest snapshot for a student.
func (s *Store) CurrentStatistics(studentID string) (models.StudentStatistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.data.Statistics[studentID]
	if !ok {
		return models.StudentStatistics{}, appErrors.Clone(appErrors.ErrNotFound, "no statistics for student")
	}
	return stats, nil
}

// FindUser looks up a user by id.
func (s *Store) FindUser(id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.findUserLocked(id)
	if !ok {
		return models.User{}, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return user, nil
}

// UsersWithRole lists users holding the given role.
func (s *Store) UsersWithRole(role models.UserRole) []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := []models.User{}
	for _, u := range s.data.Users {
		if u.Role == role {
			users = append(users, u)
		}
	}
	return users
}

// StudentsOf lists the students assigned to a personal supervisor.
func (s *Store) StudentsOf(supervisorID string) []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	students := []models.User{}
	for _, u := range s.data.Users {
		if u.Role == models.RoleStudent && u.SupervisorID == supervisorID {
			students = append(students, u)
		}
	}
	return students
}

// WellbeingFor returns a student's check-ins, newest first.
func (s *Store) WellbeingFor(studentID string) []models.WellbeingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := []models.WellbeingRecord{}
	for _, r := range s.data.WellbeingRecords {
		if r.StudentID == studentID {
			records = append(records, r)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RecordedAt.After(records[j].RecordedAt)
	})
	return records
}

// MeetingsForStudent returns a student's meetings in date order.
func (s *Store) MeetingsForStudent(studentID string) []models.Meeting {
	return s.meetings(func(m models.Meeting) bool { return m.StudentID == studentID })
}

// MeetingsForSupervisor returns a supervisor's meetings in date order.
func (s *Store) MeetingsForSupervisor(supervisorID string) []models.Meeting {
	return s.meetings(func(m models.Meeting) bool { return m.SupervisorID == supervisorID })
}

// AllMeetings returns every meeting in date order.
func (s *Store) AllMeetings() []models.Meeting {
	return s.meetings(func(models.Meeting) bool { return true })
}

func (s *Store) meetings(match func(models.Meeting) bool) []models.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()

	meetings := []models.Meeting{}
	for _, m := range s.data.Meetings {
		if match(m) {
			meetings = append(meetings, m)
		}
	}
	sort.SliceStable(meetings, func(i, j int) bool {
		return meetings[i].Date.Before(meetings[j].Date)
	})
	return meetings
}

// ConversationBetween returns the most recent exchange between two users,
// newest first, capped at limit entries.
func (s *Store) ConversationBetween(userA, userB string, limit int) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversation := []models.Notification{}
	for _, n := range s.data.Notifications {
		if (n.SenderID == userA && n.ReceiverID == userB) || (n.SenderID == userB && n.ReceiverID == userA) {
			conversation = append(conversation, n)
		}
	}
	sort.SliceStable(conversation, func(i, j int) bool {
		return conversation[i].SentAt.After(conversation[j].SentAt)
	})
	if limit > 0 && len(conversation) > limit {
		conversation = conversation[:limit]
	}
	return conversation
}

// UpdatePasswordHash replaces a user's credential hash and persists.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Users {
		if s.data.Users[i].ID == userID {
			s.data.Users[i].PasswordHash = hash
			return s.persistLocked(ctx)
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "user not found")
}

func (s *Store) findUserLocked(id string) (models.User, bool) {
	for _, u := range s.data.Users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// recomputeLocked replaces the statistics snapshot for every student and
// appends an alert for each student that requires attention. The pass is
// global: any wellbeing mutation re-evaluates everyone, and alerts re-fire
// while the condition holds.
func (s *Store) recomputeLocked(now time.Time) {
	for _, user := range s.data.Users {
		if user.Role != models.RoleStudent {
			continue
		}
		stats := engine.ComputeStatistics(user.ID, s.data.WellbeingRecords, s.data.Meetings, now)
		s.data.Statistics[user.ID] = stats

		if alert := engine.AttentionAlert(stats, user, now); alert != nil {
			s.data.Notifications = append(s.data.Notifications, *alert)
			if s.onAlert != nil {
				s.onAlert()
			}
		}
	}
}

func (s *Store) statisticsMissingLocked() bool {
	for _, user := range s.data.Users {
		if user.Role != models.RoleStudent {
			continue
		}
		if _, ok := s.data.Statistics[user.ID]; !ok {
			return true
		}
	}
	return false
}

// persistLocked rewrites the whole document. On failure the in-memory
// mutation is kept and the error is surfaced: memory always leads disk.
func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.persister.SaveAll(ctx, s.data); err != nil {
		s.logger.Error("failed to persist data set", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist data set")
	}
	return nil
}
