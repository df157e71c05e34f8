package tasks

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"smartfix/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type enqueued struct {
	task *asynq.Task
	opts []asynq.Option
}

type fakeEnqueuer struct {
	calls    []enqueued
	conflict bool
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.calls = append(f.calls, enqueued{task: task, opts: opts})
	if f.conflict {
		return nil, asynq.ErrTaskIDConflict
	}
	return &asynq.TaskInfo{ID: "task-" + string(rune('0'+len(f.calls)))}, nil
}

var now = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func newScheduler(client Enqueuer) *ReminderScheduler {
	s := NewReminderScheduler(client, 2*time.Hour, zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

func TestScheduleVisitReminder(t *testing.T) {
	client := &fakeEnqueuer{}
	visit := now.Add(24 * time.Hour)
	req := &models.ServiceRequest{ID: "r1", UserID: "u1", Title: "Fix sink", ScheduledDate: &visit}

	require.NoError(t, newScheduler(client).ScheduleVisitReminder(context.Background(), req, "pu1"))
	require.Len(t, client.calls, 2)

	var payload models.ReminderPayload
	require.NoError(t, json.Unmarshal(client.calls[0].task.Payload(), &payload))
	assert.Equal(t, TypeSendReminder, client.calls[0].task.Type())
	assert.Equal(t, "r1", payload.RequestID)
	assert.Equal(t, "u1", payload.UserID)
	assert.Equal(t, visit.Add(-2*time.Hour).Format(time.RFC3339), payload.FireDate)

	require.NoError(t, json.Unmarshal(client.calls[1].task.Payload(), &payload))
	assert.Equal(t, "pu1", payload.UserID)
}

func TestScheduleVisitReminder_Skips(t *testing.T) {
	client := &fakeEnqueuer{}
	s := newScheduler(client)
	past := now.Add(-time.Hour)

	require.NoError(t, s.ScheduleVisitReminder(context.Background(), &models.ServiceRequest{ID: "r1", UserID: "u1"}, ""))
	require.NoError(t, s.ScheduleVisitReminder(context.Background(), &models.ServiceRequest{ID: "r2", UserID: "u1", ScheduledDate: &past}, ""))
	assert.Empty(t, client.calls)
}

func TestScheduleVisitReminder_SoonFiresNow(t *testing.T) {
	client := &fakeEnqueuer{}
	soon := now.Add(30 * time.Minute)
	req := &models.ServiceRequest{ID: "r1", UserID: "u1", ScheduledDate: &soon}

	require.NoError(t, newScheduler(client).ScheduleVisitReminder(context.Background(), req, ""))
	require.Len(t, client.calls, 1)

	var payload models.ReminderPayload
	require.NoError(t, json.Unmarshal(client.calls[0].task.Payload(), &payload))
	assert.Equal(t, now.Format(time.RFC3339), payload.FireDate)
}

func TestScheduleVisitReminder_DuplicateIsIgnored(t *testing.T) {
	client := &fakeEnqueuer{conflict: true}
	visit := now.Add(24 * time.Hour)
	req := &models.ServiceRequest{ID: "r1", UserID: "u1", ScheduledDate: &visit}

	assert.NoError(t, newScheduler(client).ScheduleVisitReminder(context.Background(), req, ""))
}
