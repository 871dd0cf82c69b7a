package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitfield-edu/engagement-api/internal/models"
)

func sampleSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	engaged := time.Date(2024, 11, 18, 9, 30, 0, 0, time.UTC)
	return &Snapshot{
		Users: []models.User{
			{ID: "S1", Name: "Student A", PasswordHash: "hash1", Role: models.RoleStudent, SupervisorID: "PS1"},
			{ID: "PS1", Name: "Supervisor 1", PasswordHash: "hash3", Role: models.RolePersonalSupervisor},
		},
		Meetings: []models.Meeting{
			{ID: "M1", Date: engaged.Add(48 * time.Hour), StudentID: "S1", StudentName: "Student A", SupervisorID: "PS1", SupervisorName: "Supervisor 1", Note: "catch up"},
		},
		WellbeingRecords: []models.WellbeingRecord{
			{ID: "W1", StudentID: "S1", RecordedAt: engaged, FeelingScore: 7, Comment: "ok", NeedsSupport: false},
		},
		Notifications: []models.Notification{
			{ID: "N1", SentAt: engaged.Add(time.Hour), SenderID: models.SystemSenderID, ReceiverID: "PS1", Message: "Alert", IsRead: false, Kind: models.KindAlert},
		},
		Statistics: map[string]models.StudentStatistics{
			"S1": {StudentID: "S1", AverageFeelingScore: 7, MeetingAttendanceCount: 0, LastEngagement: &engaged, ConsecutiveLowScores: 0, RequiresAttention: false},
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studentdata.json")
	s := NewFileStore(path)
	ctx := context.Background()

	original := sampleSnapshot(t)
	require.NoError(t, s.SaveAll(ctx, original))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	// Reloading must not drift: same entities, same statistics map.
	assert.Equal(t, original, loaded)
}

func TestFileStoreRoundTripNeverEngaged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studentdata.json")
	s := NewFileStore(path)
	ctx := context.Background()

	snapshot := NewSnapshot()
	snapshot.Users = []models.User{{ID: "S1", Name: "Student A", Role: models.RoleStudent, SupervisorID: "PS1"}}
	snapshot.Statistics["S1"] = models.StudentStatistics{StudentID: "S1", LastEngagement: nil, RequiresAttention: true}
	require.NoError(t, s.SaveAll(ctx, snapshot))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	// The "never engaged" sentinel survives serialization as an absent value.
	assert.Nil(t, loaded.Statistics["S1"].LastEngagement)
	assert.True(t, loaded.Statistics["S1"].RequiresAttention)
}

func TestFileStoreKeepsPasswordHashes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studentdata.json")
	ctx := context.Background()

	require.NoError(t, NewFileStore(path).SaveAll(ctx, sampleSnapshot(t)))

	// A fresh store over the same file stands in for a process restart;
	// credentials must survive it.
	loaded, err := NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Users, 2)
	assert.Equal(t, "hash1", loaded.Users[0].PasswordHash)
	assert.Equal(t, "hash3", loaded.Users[1].PasswordHash)
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	snapshot, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studentdata.json")
	s := NewFileStore(path)
	ctx := context.Background()

	first := sampleSnapshot(t)
	require.NoError(t, s.SaveAll(ctx, first))

	second := sampleSnapshot(t)
	second.Notifications = append(second.Notifications, models.Notification{
		ID: "N2", SentAt: time.Date(2024, 11, 19, 8, 0, 0, 0, time.UTC),
		SenderID: "S1", ReceiverID: "PS1", Message: "hello", Kind: models.KindMessage,
	})
	require.NoError(t, s.SaveAll(ctx, second))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Notifications, 2)
}

func TestFileStoreLoadNormalizesNilCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studentdata.json")
	require.NoError(t, writeFile(path, `{"users":[{"id":"S1","name":"A","role":"STUDENT"}]}`))

	s := NewFileStore(path)
	loaded, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, loaded.Meetings)
	assert.NotNil(t, loaded.WellbeingRecords)
	assert.NotNil(t, loaded.Notifications)
	assert.NotNil(t, loaded.Statistics)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestSeedSnapshotContainsDemoAccounts(t *testing.T) {
	snapshot, err := SeedSnapshot()
	require.NoError(t, err)

	require.Len(t, snapshot.Users, 4)
	assert.Equal(t, "PS1", snapshot.Users[0].SupervisorID)
	assert.Equal(t, models.RoleSeniorTutor, snapshot.Users[3].Role)
	for _, u := range snapshot.Users {
		assert.NotEmpty(t, u.PasswordHash)
	}
	assert.Empty(t, snapshot.WellbeingRecords)
}
