package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smartfix/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeSendReminder = "reminder:send"

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(reminderTaskID(payload.RequestID, payload.UserID)),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

func reminderTaskID(requestID, userID string) string {
	return fmt.Sprintf("reminder:%s:%s", requestID, userID)
}

// Enqueuer is the part of *asynq.Client the scheduler uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReminderScheduler queues a push reminder ahead of a request's scheduled
// visit for the owner and the assigned provider.
type ReminderScheduler struct {
	client   Enqueuer
	leadTime time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewReminderScheduler(client Enqueuer, leadTime time.Duration, logger *zap.Logger) *ReminderScheduler {
	return &ReminderScheduler{client: client, leadTime: leadTime, logger: logger, now: time.Now}
}

// ScheduleVisitReminder is a no-op for requests without a future
// scheduled date. Re-scheduling the same request is idempotent.
func (s *ReminderScheduler) ScheduleVisitReminder(ctx context.Context, req *models.ServiceRequest, providerUserID string) error {
	if req.ScheduledDate == nil {
		return nil
	}
	visit := req.ScheduledDate.UTC()
	now := s.now().UTC()
	if !visit.After(now) {
		return nil
	}
	fireAt := visit.Add(-s.leadTime)
	if fireAt.Before(now) {
		fireAt = now
	}

	recipients := []string{req.UserID}
	if providerUserID != "" {
		recipients = append(recipients, providerUserID)
	}

	for _, userID := range recipients {
		payload := models.ReminderPayload{
			RequestID: req.ID,
			UserID:    userID,
			Title:     "Upcoming visit",
			Body:      fmt.Sprintf("%q is scheduled for %s.", req.Label(), visit.Format("Mon 2 Jan 15:04 MST")),
			FireDate:  fireAt.Format(time.RFC3339),
		}
		task, opts, err := NewReminderTask(payload, fireAt)
		if err != nil {
			return fmt.Errorf("failed to build reminder task: %w", err)
		}
		info, err := s.client.EnqueueContext(ctx, task, opts...)
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to enqueue reminder for request %s: %w", req.ID, err)
		}
		s.logger.Info("Reminder scheduled",
			zap.String("requestId", req.ID),
			zap.String("userId", userID),
			zap.String("taskId", info.ID),
			zap.Time("fireAt", fireAt),
		)
	}
	return nil
}
