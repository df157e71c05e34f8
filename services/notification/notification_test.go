package notification

import (
	"context"
	"errors"
	"testing"

	"smartfix/apperrors"
	"smartfix/database/repository/memory"
	"smartfix/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg *messaging.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func newService(t *testing.T, sender Sender) *DefaultNotificationService {
	t.Helper()
	users := memory.NewUserStore()
	require.NoError(t, users.Create(context.Background(), &models.User{ID: "u1", Active: true, FCMToken: "token-1"}))
	require.NoError(t, users.Create(context.Background(), &models.User{ID: "u2", Active: true}))
	svc, err := NewDefaultNotificationService(sender, users, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestSendUserPushNotification(t *testing.T) {
	ctx := context.Background()
	sender := new(mockSender)
	svc := newService(t, sender)

	sender.On("Send", ctx, mock.MatchedBy(func(msg *messaging.Message) bool {
		return msg.Token == "token-1" && msg.Notification.Title == "Hi" && msg.Data["requestId"] == "r1"
	})).Return("msg-1", nil).Once()

	err := svc.SendUserPushNotification(ctx, "u1", "Hi", "there", map[string]string{"requestId": "r1"})
	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestSendUserPushNotification_NoToken(t *testing.T) {
	sender := new(mockSender)
	svc := newService(t, sender)

	err := svc.SendUserPushNotification(context.Background(), "u2", "Hi", "there", nil)
	require.NoError(t, err)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSendUserPushNotification_Errors(t *testing.T) {
	ctx := context.Background()
	sender := new(mockSender)
	svc := newService(t, sender)

	err := svc.SendUserPushNotification(ctx, "missing", "Hi", "there", nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	sender.On("Send", ctx, mock.Anything).Return("", errors.New("fcm unavailable")).Once()
	err = svc.SendUserPushNotification(ctx, "u1", "Hi", "there", nil)
	assert.ErrorContains(t, err, "fcm unavailable")
}

func TestNewDefaultNotificationService_RequiresDeps(t *testing.T) {
	_, err := NewDefaultNotificationService(nil, memory.NewUserStore(), zap.NewNop())
	assert.Error(t, err)
}

func TestRequestEventMessage(t *testing.T) {
	req := &models.ServiceRequest{ID: "r1", Title: "Leaking tap", Status: models.StatusAccepted}

	title, body := RequestEventMessage(req, "accept")
	assert.Equal(t, "Request accepted", title)
	assert.Contains(t, body, "Leaking tap")

	data := RequestEventData(req, "accept")
	assert.Equal(t, "r1", data["requestId"])
	assert.Equal(t, "accepted", data["status"])

	untitled := &models.ServiceRequest{ID: "r2", Category: "plumbing", Status: models.StatusCancelled}
	_, body = RequestEventMessage(untitled, "cancel")
	assert.Equal(t, `"plumbing request" was cancelled.`, body)
}
