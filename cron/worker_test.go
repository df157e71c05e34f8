package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"smartfix/models"
	"smartfix/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	userID, title string
	data          map[string]string
	err           error
}

func (r *recordingNotifier) SendUserPushNotification(_ context.Context, userID, title, _ string, data map[string]string) error {
	r.userID, r.title, r.data = userID, title, data
	return r.err
}

func TestHandleReminderTask(t *testing.T) {
	notifier := &recordingNotifier{}
	handler := HandleReminderTask(notifier, zap.NewNop())

	payload, err := json.Marshal(models.ReminderPayload{RequestID: "r1", UserID: "u1", Title: "Upcoming visit", FireDate: "2026-05-02T06:00:00Z"})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), asynq.NewTask(tasks.TypeSendReminder, payload)))
	assert.Equal(t, "u1", notifier.userID)
	assert.Equal(t, "Upcoming visit", notifier.title)
	assert.Equal(t, "r1", notifier.data["requestId"])
}

func TestHandleReminderTask_BadPayloadSkipsRetry(t *testing.T) {
	handler := HandleReminderTask(&recordingNotifier{}, zap.NewNop())

	err := handler(context.Background(), asynq.NewTask(tasks.TypeSendReminder, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleReminderTask_SendFailureRetries(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("fcm down")}
	handler := HandleReminderTask(notifier, zap.NewNop())

	payload, err := json.Marshal(models.ReminderPayload{RequestID: "r1", UserID: "u1"})
	require.NoError(t, err)

	err = handler(context.Background(), asynq.NewTask(tasks.TypeSendReminder, payload))
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}
