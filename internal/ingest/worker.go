package ingest

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shenikar/disaster_routing_system/internal/models"
	"github.com/shenikar/disaster_routing_system/internal/observability"
	"github.com/shenikar/disaster_routing_system/internal/service"
	"github.com/sirupsen/logrus"
)

// Worker периодически опрашивает внешние ленты и передает нормализованные
// элементы в конвейер консолидации. Элемент без координат сохраняется как
// сырой сигнал, но инцидента не порождает.
type Worker struct {
	sources   []Source
	incidents service.IncidentService
	logger    *logrus.Logger
	interval  time.Duration
	metrics   *observability.Metrics
	clock     clockwork.Clock
}

// NewWorker создает новый Worker опроса внешних лент
func NewWorker(
	sources []Source,
	incidents service.IncidentService,
	logger *logrus.Logger,
	interval time.Duration,
	metrics *observability.Metrics,
	clock clockwork.Clock,
) *Worker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Worker{
		sources:   sources,
		incidents: incidents,
		logger:    logger,
		interval:  interval,
		metrics:   metrics,
		clock:     clock,
	}
}

// Start запускает горутину периодического опроса лент
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting ingest worker...")
	go func() {
		// Первый проход сразу при старте, дальше по тикеру
		w.pollAll(ctx)

		ticker := w.clock.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping ingest worker.")
				return
			case <-ticker.Chan():
				w.pollAll(ctx)
			}
		}
	}()
}

func (w *Worker) pollAll(ctx context.Context) {
	for _, src := range w.sources {
		if ctx.Err() != nil {
			return
		}
		w.poll(ctx, src)
	}
}

func (w *Worker) poll(ctx context.Context, src Source) {
	log := w.logger.WithField("source", src.Name())

	items, err := src.Fetch(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to fetch external feed")
		if w.metrics != nil {
			w.metrics.IngestErrors.WithLabelValues(src.Name()).Inc()
		}
		return
	}

	accepted := 0
	for _, item := range items {
		signal := &models.Signal{
			Text:       item.Text,
			SourceType: item.SourceType,
			SourceURL:  item.SourceURL,
		}
		if _, err := w.incidents.SubmitSignal(ctx, signal, item.Latitude, item.Longitude, item.Severity); err != nil {
			log.WithError(err).Warn("Failed to submit feed item")
			if w.metrics != nil {
				w.metrics.IngestErrors.WithLabelValues(src.Name()).Inc()
			}
			continue
		}
		accepted++
	}
	log.WithField("items", len(items)).WithField("accepted", accepted).Info("Feed poll completed")
}
