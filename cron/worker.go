package cron

import (
	"context"
	"time"

	"creatorhub/services/notification"
	"creatorhub/services/tasks"
	"creatorhub/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitSubscriptionWorker runs the async worker in background and returns the server so
// main can shut it down.
func InitSubscriptionWorker(notifSvc notification.NotificationService, logger *zap.Logger) *asynq.Server {
	redisOpts := utils.QueueRedisOpt()

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSubscriptionActivated, handleSubscriptionActivated(notifSvc, logger))

	go monitorRedisConnection(redisOpts, logger)

	go func() {
		logger.Info("[SubscriptionWorker] starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("[SubscriptionWorker] failed to start worker",
				zap.Int("attempt", attempts), zap.Int("max", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("[SubscriptionWorker] max retry attempts reached, worker disabled")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()

	return srv
}

func handleSubscriptionActivated(notifSvc notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseSubscriptionActivated(task)
		if err != nil {
			logger.Error("[SubscriptionHandler] invalid payload", zap.Error(err))
			// A malformed payload will never succeed.
			return asynq.SkipRetry
		}

		logger.Info("[SubscriptionHandler] notifying subscription",
			zap.String("subscription", p.SubscriptionID),
			zap.String("user", p.UserID),
			zap.String("creator", p.CreatorID),
			zap.String("tier", p.Tier))

		if err := notifSvc.NotifySubscriptionActivated(ctx, p); err != nil {
			logger.Warn("[SubscriptionHandler] failed to send notification", zap.Error(err))
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings the queue DB periodically to detect failures at runtime.
func monitorRedisConnection(opts asynq.RedisClientOpt, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	defer client.Close()

	ctx := context.Background()
	for {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("[SubscriptionWorker] Redis connection lost", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
