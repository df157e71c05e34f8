package notification

import (
	"context"
	"fmt"

	"smartfix/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Sender delivers an FCM message. *messaging.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// UserLookup resolves a user's push token.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// NotificationService defines methods for sending FCM pushes.
type NotificationService interface {
	SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	sender Sender
	users  UserLookup
	logger *zap.Logger
}

func NewDefaultNotificationService(sender Sender, users UserLookup, logger *zap.Logger) (*DefaultNotificationService, error) {
	if sender == nil || users == nil {
		return nil, fmt.Errorf("notification service initialization error: sender or user lookup is nil")
	}
	return &DefaultNotificationService{sender: sender, users: users, logger: logger}, nil
}

// SendUserPushNotification looks up a user's FCM token and sends a push.
// Users without a token are skipped.
func (s *DefaultNotificationService) SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("could not find user %s: %w", userID, err)
	}
	if u.FCMToken == "" {
		s.logger.Debug("User has no FCM token, skipping push", zap.String("userId", userID))
		return nil
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := s.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send FCM message to user %s: %w", userID, err)
	}
	s.logger.Debug("Push sent", zap.String("userId", userID), zap.String("messageId", id))
	return nil
}

// NoopNotificationService is used when Firebase is not configured.
type NoopNotificationService struct{}

func (NoopNotificationService) SendUserPushNotification(context.Context, string, string, string, map[string]string) error {
	return nil
}
