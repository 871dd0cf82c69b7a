package models

import "time"

// Feeling score bounds accepted on a check-in.
const (
	MinFeelingScore = 1
	MaxFeelingScore = 10
)

// WellbeingRecord is a student's self-reported check-in. Records are
// immutable once created and are never deleted; a student may check in
// several times per day.
type WellbeingRecord struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	RecordedAt   time.Time `db:"recorded_at" json:"recorded_at"`
	FeelingScore int       `db:"feeling_score" json:"feeling_score"`
	Comment      string    `db:"comment" json:"comment,omitempty"`
	NeedsSupport bool      `db:"needs_support" json:"needs_support"`
}

// ValidScore reports whether the record's feeling score is in range.
func (r WellbeingRecord) ValidScore() bool {
	return r.FeelingScore >= MinFeelingScore && r.FeelingScore <= MaxFeelingScore
}
