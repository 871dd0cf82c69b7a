package dto

import "time"

// CheckInRequest is the payload for a student wellbeing check-in.
type CheckInRequest struct {
	FeelingScore int    `json:"feeling_score" validate:"required,min=1,max=10"`
	Comment      string `json:"comment" validate:"max=500"`
	NeedsSupport bool   `json:"needs_support"`
}

// BookMeetingRequest books a supervision meeting. StudentID is required
// when a supervisor books on behalf of one of their students; students
// always book for themselves.
type BookMeetingRequest struct {
	StudentID string    `json:"student_id"`
	Date      time.Time `json:"date" validate:"required"`
	Note      string    `json:"note" validate:"required,max=500"`
}

// SendMessageRequest posts a freeform inbox message.
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Message    string `json:"message" validate:"required,max=1000"`
}
