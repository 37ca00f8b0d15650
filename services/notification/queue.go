package notification

import (
	"context"
	"fmt"

	"vtcland/models"
	"vtcland/services/tasks"

	"github.com/hibiken/asynq"
)

// enqueuer is the part of *asynq.Client used here.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueDispatcher hands notifications to the background worker so delivery
// never blocks a chat reply. The worker runs them through a Router.
type QueueDispatcher struct {
	client enqueuer
}

func NewQueueDispatcher(client *asynq.Client) *QueueDispatcher {
	return &QueueDispatcher{client: client}
}

func (q *QueueDispatcher) Notify(ctx context.Context, channel, template string, params map[string]string) error {
	task, opts, err := tasks.NewNotificationTask(models.NotificationPayload{
		Channel:  channel,
		Template: template,
		Params:   params,
	})
	if err != nil {
		return fmt.Errorf("queue: build task: %w", err)
	}
	if _, err := q.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("queue: enqueue %s/%s: %w", channel, template, err)
	}
	return nil
}
