package tasks

import (
	"encoding/json"

	"vtcland/models"

	"github.com/hibiken/asynq"
)

const TypeNotificationDispatch = "notification:dispatch"

// NewNotificationTask builds a one-shot dispatch task. Delivery is not
// retried: a failed notification is logged by the worker and dropped.
func NewNotificationTask(payload models.NotificationPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeNotificationDispatch, b)
	opts := []asynq.Option{asynq.MaxRetry(0), asynq.Queue("default")}

	return task, opts, nil
}

// ParseNotificationTask decodes the payload of a dispatch task.
func ParseNotificationTask(task *asynq.Task) (models.NotificationPayload, error) {
	var p models.NotificationPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}
