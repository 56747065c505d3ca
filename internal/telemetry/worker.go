package telemetry

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/disaster_routing_system/internal/config"
	"github.com/sirupsen/logrus"
)

// Worker вычитывает очередь решений из Redis и доставляет записи на внешний
// приёмник телеметрии по HTTP
type Worker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	cfg         *config.Config
	httpClient  *http.Client
}

// NewWorker создает новый Worker
func NewWorker(redisClient *redis.Client, logger *logrus.Logger, cfg *config.Config) *Worker {
	return &Worker{
		redisClient: redisClient,
		logger:      logger,
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.SinkTimeout,
		},
	}
}

// Start запускает горутину для обработки очереди решений
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting telemetry worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping telemetry worker.")
				return
			default:
				// BRPOP - блокирующее извлечение из правой части очереди, 0 = бесконечное ожидание
				result, err := w.redisClient.BRPop(ctx, 0, decisionQueueKey).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue
					}
					w.logger.WithError(err).Error("Failed to pop decision event from Redis")
					time.Sleep(w.cfg.SinkTimeout)
					continue
				}

				// result[0] - ключ, result[1] - значение
				payload := result[1]
				var event DecisionEvent
				if err := json.Unmarshal([]byte(payload), &event); err != nil {
					w.logger.WithError(err).Error("Failed to unmarshal decision event from Redis")
					continue
				}

				w.deliver(ctx, event, payload)
			}
		}
	}()
}

func (w *Worker) deliver(ctx context.Context, event DecisionEvent, rawPayload string) {
	log := w.logger.WithField("event_kind", event.Kind).WithField("event_decision", event.Decision)
	log.Debug("Delivering decision event...")

	if w.cfg.SinkURL == "" {
		log.Debug("Telemetry sink URL is not configured. Skipping delivery.")
		return
	}

	maxRetries := w.cfg.SinkMaxRetries
	baseDelay := w.cfg.SinkBaseDelay

	for i := 0; i < maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, "POST", w.cfg.SinkURL, bytes.NewBufferString(rawPayload))
		if err != nil {
			log.WithError(err).Errorf("Failed to create sink request. Retries left: %d", maxRetries-1-i)
			continue
		}

		req.Header.Set("Content-Type", "application/json")

		// HMAC подпись, если SINK_SECRET задан
		if w.cfg.SinkSecret != "" {
			signature := generateHMACSHA256(rawPayload, w.cfg.SinkSecret)
			req.Header.Set("X-Telemetry-Signature", signature)
		}

		resp, err := w.httpClient.Do(req)
		if err != nil {
			log.WithError(err).Warnf("Failed to send decision event. Retrying in %v. Retries left: %d", baseDelay, maxRetries-1-i)
			time.Sleep(baseDelay)
			baseDelay *= 2
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			log.Debug("Decision event delivered successfully.")
			return
		}
		log.Warnf("Sink delivery failed with status code %d. Retrying in %v. Retries left: %d", resp.StatusCode, baseDelay, maxRetries-1-i)
		time.Sleep(baseDelay)
		baseDelay *= 2
	}

	// Телеметрия best-effort: после исчерпания попыток событие теряется
	log.Errorf("Failed to deliver decision event after %d retries.", maxRetries)
}

// generateHMACSHA256 генерирует HMAC-SHA256 подпись для данных
func generateHMACSHA256(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
