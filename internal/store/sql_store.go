package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/whitfield-edu/engagement-api/internal/models"
)

// SQLStore persists the snapshot in a relational database, one table per
// entity. It keeps the document contract: Load reads every row, SaveAll
// rewrites every table inside one transaction. Queries use `?` bindvars and
// are rebound for the active driver, so the same store serves both the
// embedded SQLite backend and Postgres.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore constructs the store and ensures the schema exists.
func NewSQLStore(db *sqlx.DB) (*SQLStore, error) {
	s := &SQLStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		supervisor_id TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS meetings (
		id TEXT PRIMARY KEY,
		date TIMESTAMP NOT NULL,
		student_id TEXT NOT NULL,
		student_name TEXT NOT NULL,
		supervisor_id TEXT NOT NULL,
		supervisor_name TEXT NOT NULL,
		note TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS wellbeing_records (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		recorded_at TIMESTAMP NOT NULL,
		feeling_score INTEGER NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		needs_support BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		sent_at TIMESTAMP NOT NULL,
		sender_id TEXT NOT NULL,
		receiver_id TEXT NOT NULL,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		kind TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS student_statistics (
		student_id TEXT PRIMARY KEY,
		average_feeling_score DOUBLE PRECISION NOT NULL,
		meeting_attendance_count INTEGER NOT NULL,
		last_engagement TIMESTAMP,
		consecutive_low_scores INTEGER NOT NULL,
		requires_attention BOOLEAN NOT NULL
	)`,
}

func (s *SQLStore) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Load reads the entire document. An empty users table is treated as "no
// document yet" and yields (nil, nil).
func (s *SQLStore) Load(ctx context.Context) (*Snapshot, error) {
	snapshot := NewSnapshot()

	if err := s.db.SelectContext(ctx, &snapshot.Users,
		`SELECT id, name, password_hash, role, supervisor_id FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if len(snapshot.Users) == 0 {
		return nil, nil
	}

	if err := s.db.SelectContext(ctx, &snapshot.Meetings,
		`SELECT id, date, student_id, student_name, supervisor_id, supervisor_name, note FROM meetings ORDER BY date`); err != nil {
		return nil, fmt.Errorf("load meetings: %w", err)
	}
	if err := s.db.SelectContext(ctx, &snapshot.WellbeingRecords,
		`SELECT id, student_id, recorded_at, feeling_score, comment, needs_support FROM wellbeing_records ORDER BY recorded_at`); err != nil {
		return nil, fmt.Errorf("load wellbeing records: %w", err)
	}
	if err := s.db.SelectContext(ctx, &snapshot.Notifications,
		`SELECT id, sent_at, sender_id, receiver_id, message, is_read, kind FROM notifications ORDER BY sent_at`); err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx,
		`SELECT student_id, average_feeling_score, meeting_attendance_count, last_engagement, consecutive_low_scores, requires_attention FROM student_statistics`)
	if err != nil {
		return nil, fmt.Errorf("load statistics: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var stats models.StudentStatistics
		var last sql.NullTime
		if err := rows.Scan(&stats.StudentID, &stats.AverageFeelingScore, &stats.MeetingAttendanceCount,
			&last, &stats.ConsecutiveLowScores, &stats.RequiresAttention); err != nil {
			return nil, fmt.Errorf("scan statistics: %w", err)
		}
		if last.Valid {
			t := last.Time.UTC()
			stats.LastEngagement = &t
		}
		snapshot.Statistics[stats.StudentID] = stats
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statistics: %w", err)
	}

	return snapshot, nil
}

// SaveAll rewrites every table in one transaction: all-or-nothing, no
// incremental writes.
func (s *SQLStore) SaveAll(ctx context.Context, snapshot *Snapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"users", "meetings", "wellbeing_records", "notifications", "student_statistics"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, u := range snapshot.Users {
		if _, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO users (id, name, password_hash, role, supervisor_id) VALUES (?, ?, ?, ?, ?)`),
			u.ID, u.Name, u.PasswordHash, u.Role, u.SupervisorID); err != nil {
			return fmt.Errorf("save user %s: %w", u.ID, err)
		}
	}
	for _, m := range snapshot.Meetings {
		if _, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO meetings (id, date, student_id, student_name, supervisor_id, supervisor_name, note) VALUES (?, ?, ?, ?, ?, ?, ?)`),
			m.ID, m.Date.UTC(), m.StudentID, m.StudentName, m.SupervisorID, m.SupervisorName, m.Note); err != nil {
			return fmt.Errorf("save meeting %s: %w", m.ID, err)
		}
	}
	for _, w := range snapshot.WellbeingRecords {
		if _, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO wellbeing_records (id, student_id, recorded_at, feeling_score, comment, needs_support) VALUES (?, ?, ?, ?, ?, ?)`),
			w.ID, w.StudentID, w.RecordedAt.UTC(), w.FeelingScore, w.Comment, w.NeedsSupport); err != nil {
			return fmt.Errorf("save wellbeing record %s: %w", w.ID, err)
		}
	}
	for _, n := range snapshot.Notifications {
		if _, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO notifications (id, sent_at, sender_id, receiver_id, message, is_read, kind) VALUES (?, ?, ?, ?, ?, ?, ?)`),
			n.ID, n.SentAt.UTC(), n.SenderID, n.ReceiverID, n.Message, n.IsRead, n.Kind); err != nil {
			return fmt.Errorf("save notification %s: %w", n.ID, err)
		}
	}
	for _, stats := range snapshot.Statistics {
		var last interface{}
		if stats.LastEngagement != nil {
			last = stats.LastEngagement.UTC()
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO student_statistics (student_id, average_feeling_score, meeting_attendance_count, last_engagement, consecutive_low_scores, requires_attention) VALUES (?, ?, ?, ?, ?, ?)`),
			stats.StudentID, stats.AverageFeelingScore, stats.MeetingAttendanceCount, last, stats.ConsecutiveLowScores, stats.RequiresAttention); err != nil {
			return fmt.Errorf("save statistics %s: %w", stats.StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
