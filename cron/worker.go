package cron

import (
	"context"
	"time"

	"vtcland/services/notification"
	"vtcland/services/tasks"
	"vtcland/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitNotificationWorker runs the notification worker in background and
// returns the server so main can shut it down.
func InitNotificationWorker(router notification.Dispatcher, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		utils.QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotificationDispatch, handleNotificationTask(router, logger))

	go func() {
		logger.Info("[NotificationWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("[NotificationWorker] Failed to start worker",
					zap.Int("attempt", attempts), zap.Int("max", maxAttempts), zap.Error(err))

				if attempts == maxAttempts {
					logger.Fatal("[NotificationWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
	return srv
}

func handleNotificationTask(router notification.Dispatcher, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseNotificationTask(task)
		if err != nil {
			logger.Error("[NotificationHandler] Invalid payload", zap.Error(err))
			return asynq.SkipRetry
		}

		if err := router.Notify(ctx, p.Channel, p.Template, p.Params); err != nil {
			logger.Warn("[NotificationHandler] Notification failed",
				zap.String("channel", p.Channel),
				zap.String("template", p.Template),
				zap.Error(err))
			return err
		}
		return nil
	}
}
