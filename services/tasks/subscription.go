package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"creatorhub/models"

	"github.com/hibiken/asynq"
)

const TypeSubscriptionActivated = "subscription:activated"

func NewSubscriptionActivatedTask(payload models.SubscriptionActivatedPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSubscriptionActivated, b)
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
		// Stripe may redeliver the same event; one notification per subscription.
		asynq.TaskID(fmt.Sprintf("%s:%s", TypeSubscriptionActivated, payload.SubscriptionID)),
	}
	return task, opts, nil
}

func ParseSubscriptionActivated(task *asynq.Task) (models.SubscriptionActivatedPayload, error) {
	var p models.SubscriptionActivatedPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid %s payload: %w", TypeSubscriptionActivated, err)
	}
	return p, nil
}
