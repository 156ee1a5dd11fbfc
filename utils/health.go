package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Redis     bool      `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// StartHealthMonitor performs periodic health checks and updates in-memory state
// until ctx is cancelled.
func StartHealthMonitor(ctx context.Context, redisClient *redis.Client, mongoClient *mongo.Client) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		redisHealthy := redisClient.Ping(pingCtx).Err() == nil
		mongoHealthy := mongoClient.Ping(pingCtx, nil) == nil

		mu.Lock()
		currentHealth = HealthStatus{
			Mongo:     mongoHealthy,
			Redis:     redisHealthy,
			CheckedAt: time.Now(),
		}
		mu.Unlock()
	}

	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		check()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				check()
			}
		}
	}()
}
