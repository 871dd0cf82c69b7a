package models

import "time"

// NotificationKind classifies inbox entries.
type NotificationKind string

const (
	KindMessage        NotificationKind = "MESSAGE"
	KindAlert          NotificationKind = "ALERT"
	KindMeetingRequest NotificationKind = "MEETING_REQUEST"
	KindReminder       NotificationKind = "REMINDER"
)

// Notification is an inbox entry. SenderID may be the SYSTEM sentinel for
// engine-generated alerts. Only IsRead ever mutates, and marking an
// already-read notification read again is a no-op.
type Notification struct {
	ID         string           `db:"id" json:"id"`
	SentAt     time.Time        `db:"sent_at" json:"sent_at"`
	SenderID   string           `db:"sender_id" json:"sender_id"`
	ReceiverID string           `db:"receiver_id" json:"receiver_id"`
	Message    string           `db:"message" json:"message"`
	IsRead     bool             `db:"is_read" json:"is_read"`
	Kind       NotificationKind `db:"kind" json:"kind"`
}
