package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitfield-edu/engagement-api/internal/models"
)

func newSQLStoreMock(t *testing.T) (*SQLStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	for range schema {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	s, err := NewSQLStore(sqlx.NewDb(db, "sqlmock"))
	require.NoError(t, err)

	return s, mock, func() { db.Close() }
}

func TestSQLStoreLoadEmptyYieldsNil(t *testing.T) {
	s, mock, cleanup := newSQLStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, password_hash, role, supervisor_id FROM users ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "password_hash", "role", "supervisor_id"}))

	snapshot, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.Nil(t, snapshot)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreLoadFullDocument(t *testing.T) {
	s, mock, cleanup := newSQLStoreMock(t)
	defer cleanup()

	engaged := time.Date(2024, 11, 18, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, password_hash, role, supervisor_id FROM users ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "password_hash", "role", "supervisor_id"}).
			AddRow("PS1", "Supervisor 1", "hash3", "PERSONAL_SUPERVISOR", "").
			AddRow("S1", "Student A", "hash1", "STUDENT", "PS1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, date, student_id, student_name, supervisor_id, supervisor_name, note FROM meetings ORDER BY date")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "student_id", "student_name", "supervisor_id", "supervisor_name", "note"}).
			AddRow("M1", engaged, "S1", "Student A", "PS1", "Supervisor 1", "catch up"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, recorded_at, feeling_score, comment, needs_support FROM wellbeing_records ORDER BY recorded_at")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "recorded_at", "feeling_score", "comment", "needs_support"}).
			AddRow("W1", "S1", engaged, 7, "ok", false))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, sent_at, sender_id, receiver_id, message, is_read, kind FROM notifications ORDER BY sent_at")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sent_at", "sender_id", "receiver_id", "message", "is_read", "kind"}).
			AddRow("N1", engaged, "SYSTEM", "PS1", "Alert", false, "ALERT"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id, average_feeling_score, meeting_attendance_count, last_engagement, consecutive_low_scores, requires_attention FROM student_statistics")).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "average_feeling_score", "meeting_attendance_count", "last_engagement", "consecutive_low_scores", "requires_attention"}).
			AddRow("S1", 7.0, 0, engaged, 0, false).
			AddRow("S2", 0.0, 0, nil, 0, true))

	snapshot, err := s.Load(context.Background())

	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Len(t, snapshot.Users, 2)
	assert.Len(t, snapshot.Meetings, 1)
	assert.Len(t, snapshot.WellbeingRecords, 1)
	assert.Len(t, snapshot.Notifications, 1)
	require.Len(t, snapshot.Statistics, 2)
	require.NotNil(t, snapshot.Statistics["S1"].LastEngagement)
	assert.Equal(t, engaged, *snapshot.Statistics["S1"].LastEngagement)
	assert.Nil(t, snapshot.Statistics["S2"].LastEngagement)
	assert.True(t, snapshot.Statistics["S2"].RequiresAttention)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreSaveAllRewritesEverything(t *testing.T) {
	s, mock, cleanup := newSQLStoreMock(t)
	defer cleanup()

	engaged := time.Date(2024, 11, 18, 9, 30, 0, 0, time.UTC)
	snapshot := NewSnapshot()
	snapshot.Users = []models.User{{ID: "S1", Name: "Student A", PasswordHash: "hash1", Role: models.RoleStudent, SupervisorID: "PS1"}}
	snapshot.WellbeingRecords = []models.WellbeingRecord{{ID: "W1", StudentID: "S1", RecordedAt: engaged, FeelingScore: 7}}
	snapshot.Statistics["S1"] = models.StudentStatistics{StudentID: "S1", AverageFeelingScore: 7, LastEngagement: &engaged}

	mock.ExpectBegin()
	for range []string{"users", "meetings", "wellbeing_records", "notifications", "student_statistics"} {
		mock.ExpectExec("DELETE FROM").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("INSERT INTO users").
		WithArgs("S1", "Student A", "hash1", models.RoleStudent, "PS1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO wellbeing_records").
		WithArgs("W1", "S1", engaged, 7, "", false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO student_statistics").
		WithArgs("S1", 7.0, 0, engaged, 0, false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, s.SaveAll(context.Background(), snapshot))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreSaveAllRollsBackOnFailure(t *testing.T) {
	s, mock, cleanup := newSQLStoreMock(t)
	defer cleanup()

	snapshot := NewSnapshot()
	snapshot.Users = []models.User{{ID: "S1", Name: "Student A", Role: models.RoleStudent}}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := s.SaveAll(context.Background(), snapshot)

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
