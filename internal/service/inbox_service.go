package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/whitfield-edu/engagement-api/internal/dto"
	"github.com/whitfield-edu/engagement-api/internal/models"
	appErrors "github.com/whitfield-edu/engagement-api/pkg/errors"
)

// defaultConversationLimit caps the recent-exchange view.
const defaultConversationLimit = 50

type inboxRecords interface {
	UnreadFor(userID string) []models.Notification
	MarkRead(ctx context.Context, notificationID string) error
	FindNotification(id string) (models.Notification, error)
	RecordNotification(ctx context.Context, notification models.Notification) (models.Notification, error)
	FindUser(id string) (models.User, error)
	ConversationBetween(userA, userB string, limit int) []models.Notification
}

// InboxService serves notifications and freeform messaging.
type InboxService struct {
	records   inboxRecords
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewInboxService constructs an InboxService instance.
func NewInboxService(records inboxRecords, validate *validator.Validate, logger *zap.Logger) *InboxService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InboxService{
		records:   records,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Unread returns the caller's unread notifications, newest first.
func (s *InboxService) Unread(ctx context.Context, userID string) []models.Notification {
	return s.records.UnreadFor(userID)
}

// MarkRead marks one of the caller's notifications as read. Marking an
// already-read notification is a no-op; marking someone else's is
// forbidden.
func (s *InboxService) MarkRead(ctx context.Context, claims models.JWTClaims, notificationID string) error {
	notification, err := s.records.FindNotification(notificationID)
	if err != nil {
		return err
	}
	if notification.ReceiverID != claims.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "notification belongs to another user")
	}
	return s.records.MarkRead(ctx, notificationID)
}

// SendMessage posts a freeform message. Students reach their own
// supervisor, supervisors reach their own students and senior tutors,
// senior tutors reach anyone.
func (s *InboxService) SendMessage(ctx context.Context, claims models.JWTClaims, req dto.SendMessageRequest) (*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}

	receiver, err := s.records.FindUser(req.ReceiverID)
	if err != nil {
		return nil, err
	}
	if !s.canMessage(claims, receiver) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to message this user")
	}

	notification := models.Notification{
		SentAt:     s.now(),
		SenderID:   claims.UserID,
		ReceiverID: receiver.ID,
		Message:    req.Message,
		Kind:       models.KindMessage,
	}

	saved, err := s.records.RecordNotification(ctx, notification)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Conversation returns the recent exchange between the caller and another
// user, newest first.
func (s *InboxService) Conversation(ctx context.Context, claims models.JWTClaims, otherID string) ([]models.Notification, error) {
	if _, err := s.records.FindUser(otherID); err != nil {
		return nil, err
	}
	return s.records.ConversationBetween(claims.UserID, otherID, defaultConversationLimit), nil
}

func (s *InboxService) canMessage(claims models.JWTClaims, receiver models.User) bool {
	switch claims.Role {
	case models.RoleStudent:
		return receiver.ID == claims.SupervisorID
	case models.RolePersonalSupervisor:
		if receiver.Role == models.RoleStudent {
			return receiver.SupervisorID == claims.UserID
		}
		return receiver.Role == models.RoleSeniorTutor
	case models.RoleSeniorTutor:
		return true
	default:
		return false
	}
}
