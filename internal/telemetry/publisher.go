package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const decisionQueueKey = "decision_events"

// Виды решений, попадающих в поток телеметрии
const (
	DecisionMerge  = "incident_merge"
	DecisionInsert = "incident_insert"
	DecisionRoute  = "route_selection"
)

// DecisionEvent - структурированная запись решения ядра (слияние/вставка/выбор маршрута).
// Доставка best-effort: сбой публикации не влияет на результат основной операции.
type DecisionEvent struct {
	Kind      string         `json:"kind"`
	Input     map[string]any `json:"input"`
	Score     float64        `json:"score"`
	Decision  string         `json:"decision"`
	Timestamp time.Time      `json:"timestamp"`
}

// DecisionPublisher - интерфейс для публикации записей решений
type DecisionPublisher interface {
	Publish(ctx context.Context, event DecisionEvent) error
}

// RedisDecisionPublisher - реализация DecisionPublisher, использующая очередь Redis
type RedisDecisionPublisher struct {
	redisClient *redis.Client
}

// NewRedisDecisionPublisher создает новый RedisDecisionPublisher
func NewRedisDecisionPublisher(client *redis.Client) *RedisDecisionPublisher {
	return &RedisDecisionPublisher{
		redisClient: client,
	}
}

// Publish публикует запись решения в очередь Redis
func (p *RedisDecisionPublisher) Publish(ctx context.Context, event DecisionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal decision event: %w", err)
	}

	// LPUSH добавляет событие в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, decisionQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish decision event to Redis: %w", err)
	}
	return nil
}
