package cron

import (
	"context"
	"encoding/json"
	"fmt"

	"smartfix/config"
	"smartfix/models"
	"smartfix/services/notification"
	"smartfix/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisOpt returns the asynq connection for the queue database.
func RedisOpt(cfg config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
}

// ReminderWorker processes scheduled reminder tasks.
type ReminderWorker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

func NewReminderWorker(redisOpt asynq.RedisClientOpt, notifSvc notification.NotificationService, logger *zap.Logger) *ReminderWorker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{"default": 1},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, HandleReminderTask(notifSvc, logger))

	return &ReminderWorker{srv: srv, mux: mux, logger: logger}
}

// Start runs the worker in the background.
func (w *ReminderWorker) Start() error {
	if err := w.srv.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start reminder worker: %w", err)
	}
	w.logger.Info("Reminder worker started")
	return nil
}

func (w *ReminderWorker) Shutdown() {
	w.srv.Shutdown()
	w.logger.Info("Reminder worker stopped")
}

// HandleReminderTask delivers a reminder push. Malformed payloads are not
// retried.
func HandleReminderTask(notifSvc notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid reminder payload", zap.Error(err))
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}

		data := map[string]string{
			"type":      "reminder",
			"requestId": p.RequestID,
			"fireDate":  p.FireDate,
		}
		if err := notifSvc.SendUserPushNotification(ctx, p.UserID, p.Title, p.Body, data); err != nil {
			logger.Warn("Failed to send reminder",
				zap.String("requestId", p.RequestID),
				zap.String("userId", p.UserID),
				zap.Error(err),
			)
			return err
		}
		logger.Info("Reminder sent", zap.String("requestId", p.RequestID), zap.String("userId", p.UserID))
		return nil
	}
}
