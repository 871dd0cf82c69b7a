package models

import "time"

// StudentStatistics is the derived per-student snapshot. It is recomputed
// wholesale on every wellbeing mutation and replaces the previous entry;
// it is never patched field by field.
//
// LastEngagement is nil when the student has never checked in. A nil value
// is treated as "longer ago than any threshold", so a silent student is
// always flagged.
type StudentStatistics struct {
	StudentID              string     `db:"student_id" json:"student_id"`
	AverageFeelingScore    float64    `db:"average_feeling_score" json:"average_feeling_score"`
	MeetingAttendanceCount int        `db:"meeting_attendance_count" json:"meeting_attendance_count"`
	LastEngagement         *time.Time `db:"last_engagement" json:"last_engagement"`
	ConsecutiveLowScores   int        `db:"consecutive_low_scores" json:"consecutive_low_scores"`
	RequiresAttention      bool       `db:"requires_attention" json:"requires_attention"`
}
