package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/whitfield-edu/engagement-api/internal/models"
)

// Alert reasons in priority order; the first clause that holds wins even
// when several do.
const (
	ReasonLowAverage      = "Low average wellbeing score"
	ReasonConsecutiveLows = "Multiple consecutive low wellbeing scores"
	ReasonNoEngagement    = "No engagement for over 2 weeks"
)

// AttentionAlert builds the supervisor alert for a snapshot that requires
// attention. It returns nil when the snapshot does not. Alerts are
// level-triggered: every recomputation where the condition still holds
// produces a fresh alert, deliberately without deduplication.
func AttentionAlert(stats models.StudentStatistics, student models.User, now time.Time) *models.Notification {
	if !stats.RequiresAttention {
		return nil
	}

	return &models.Notification{
		ID:         uuid.NewString(),
		SentAt:     now,
		SenderID:   models.SystemSenderID,
		ReceiverID: student.SupervisorID,
		Message:    fmt.Sprintf("Alert: Student %s requires attention. Reason: %s", student.Name, attentionReason(stats)),
		IsRead:     false,
		Kind:       models.KindAlert,
	}
}

// attentionReason mirrors the three attention clauses in fixed priority
// order, so the reported reason is deterministic.
func attentionReason(stats models.StudentStatistics) string {
	switch {
	case stats.AverageFeelingScore < lowAverageThreshold:
		return ReasonLowAverage
	case stats.ConsecutiveLowScores >= consecutiveLowLimit:
		return ReasonConsecutiveLows
	default:
		return ReasonNoEngagement
	}
}

// SupportAlert builds the student-originated alert raised when a check-in
// carries the needs-support flag. This path is independent of the
// attention-threshold alert; both may fire for the same check-in.
func SupportAlert(record models.WellbeingRecord, student models.User) *models.Notification {
	return &models.Notification{
		ID:         uuid.NewString(),
		SentAt:     record.RecordedAt,
		SenderID:   student.ID,
		ReceiverID: student.SupervisorID,
		Message:    fmt.Sprintf("Student has requested support. Feeling score: %d/10. Comment: %s", record.FeelingScore, record.Comment),
		IsRead:     false,
		Kind:       models.KindAlert,
	}
}

// MeetingRequestNotification notifies the counterpart of a freshly booked
// meeting.
func MeetingRequestNotification(meeting models.Meeting, senderID, receiverID string, now time.Time) *models.Notification {
	return &models.Notification{
		ID:         uuid.NewString(),
		SentAt:     now,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    fmt.Sprintf("Meeting request for %s. Reason: %s", meeting.Date.Format("02-01-2006"), meeting.Note),
		IsRead:     false,
		Kind:       models.KindMeetingRequest,
	}
}
