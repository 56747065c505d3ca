package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shenikar/disaster_routing_system/internal/config"
	"github.com/shenikar/disaster_routing_system/internal/credibility"
	"github.com/shenikar/disaster_routing_system/internal/geo"
	"github.com/shenikar/disaster_routing_system/internal/models"
	"github.com/shenikar/disaster_routing_system/internal/observability"
	"github.com/shenikar/disaster_routing_system/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// Порог достоверности, выше которого сигнал-производный инцидент сразу считается verified
const verifiedThreshold = 0.5

type incidentService struct {
	store     IncidentStore
	signals   SignalStore
	logger    *logrus.Logger
	cfg       *config.Config
	publisher telemetry.DecisionPublisher
	metrics   *observability.Metrics
	clock     clockwork.Clock
}

func NewIncidentService(
	store IncidentStore,
	signals SignalStore,
	logger *logrus.Logger,
	cfg *config.Config,
	publisher telemetry.DecisionPublisher,
	metrics *observability.Metrics,
	clock clockwork.Clock,
) IncidentService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &incidentService{
		store:     store,
		signals:   signals,
		logger:    logger,
		cfg:       cfg,
		publisher: publisher,
		metrics:   metrics,
		clock:     clock,
	}
}

// SubmitSignal сохраняет сырой сигнал и, если заданы координаты, выводит из него
// инцидент: оценка достоверности эвристикой по тексту, статус по порогу,
// затем прогон через дедупликацию. Возвращённый инцидент может быть как новым,
// так и выжившим после слияния.
func (s *incidentService) SubmitSignal(ctx context.Context, signal *models.Signal, lat, lon *float64, severity int) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "SubmitSignal",
		"source_type": signal.SourceType,
	})
	log.Info("Accepting a new signal")

	if err := s.signals.Create(ctx, signal); err != nil {
		log.WithError(err).Error("Failed to create signal in repository")
		return nil, fmt.Errorf("service: could not create signal: %w: %v", ErrUpstreamUnavailable, err)
	}
	if s.metrics != nil {
		s.metrics.SignalsIngested.Inc()
	}

	if lat == nil || lon == nil {
		log.Info("Signal has no coordinates, skipping incident derivation")
		return nil, nil
	}

	score := credibility.ScoreReport(signal.Text, severity, 0)
	status := models.StatusBorderline
	if score >= verifiedThreshold {
		status = models.StatusVerified
	}

	now := s.clock.Now().UTC()
	incident := &models.Incident{
		Type:        "unknown",
		Severity:    severity,
		Credibility: score,
		Status:      status,
		Latitude:    *lat,
		Longitude:   *lon,
		StartTime:   &now,
		SignalID:    &signal.ID,
	}

	merged, err := s.MergeOrInsert(ctx, incident)
	if err != nil {
		return nil, err
	}
	log.WithField("incident_id", merged.ID).Info("Signal consolidated into incident")
	return merged, nil
}

// MergeOrInsert - ядро дедупликации. Кандидаты: активные инциденты того же типа,
// созданные не раньше (start_time|now) - MergeWindow и лежащие в пределах
// MergeRadiusM (граница включительно). Без кандидатов отчёт вставляется как новый
// инцидент; иначе множество {отчёт} ∪ кандидаты сливается в первого кандидата
// (стабильный порядок created_at ASC): severity и credibility - максимум,
// координаты - центроид, start_time - минимум непустых.
func (s *incidentService) MergeOrInsert(ctx context.Context, incident *models.Incident) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "MergeOrInsert",
		"type":    incident.Type,
	})

	reference := s.clock.Now().UTC()
	if incident.StartTime != nil {
		reference = *incident.StartTime
	}
	since := reference.Add(-s.cfg.MergeWindow)

	candidates, err := s.store.FindActiveByTypeSince(ctx, incident.Type, since)
	if err != nil {
		log.WithError(err).Error("Failed to query merge candidates")
		return nil, fmt.Errorf("service: candidate lookup failed: %w: %v", ErrUpstreamUnavailable, err)
	}

	dupes := make([]*models.Incident, 0, len(candidates))
	for _, cand := range candidates {
		dist := geo.DistanceMeters(incident.Latitude, incident.Longitude, cand.Latitude, cand.Longitude)
		if dist <= s.cfg.MergeRadiusM {
			dupes = append(dupes, cand)
		}
	}

	if len(dupes) == 0 {
		if err := s.store.Create(ctx, incident); err != nil {
			log.WithError(err).Error("Failed to insert new incident")
			return nil, fmt.Errorf("service: could not create incident: %w: %v", ErrUpstreamUnavailable, err)
		}
		if s.metrics != nil {
			s.metrics.IncidentsCreated.Inc()
		}
		log.WithField("incident_id", incident.ID).Info("No near-duplicates, inserted new incident")
		s.publishDecision(ctx, telemetry.DecisionEvent{
			Kind: telemetry.DecisionInsert,
			Input: map[string]any{
				"type":     incident.Type,
				"severity": incident.Severity,
				"location": []float64{incident.Latitude, incident.Longitude},
			},
			Score:     incident.Credibility,
			Decision:  incident.Status,
			Timestamp: s.clock.Now().UTC(),
		})
		return incident, nil
	}

	mergeSet := append([]*models.Incident{incident}, dupes...)

	survivor := dupes[0]
	maxSeverity := mergeSet[0].Severity
	maxCredibility := mergeSet[0].Credibility
	sumLat, sumLon := 0.0, 0.0
	for _, m := range mergeSet {
		if m.Severity > maxSeverity {
			maxSeverity = m.Severity
		}
		if m.Credibility > maxCredibility {
			maxCredibility = m.Credibility
		}
		sumLat += m.Latitude
		sumLon += m.Longitude
	}
	survivor.Severity = maxSeverity
	survivor.Credibility = maxCredibility
	survivor.Latitude = sumLat / float64(len(mergeSet))
	survivor.Longitude = sumLon / float64(len(mergeSet))

	survivor.StartTime = nil
	for _, m := range mergeSet {
		if m.StartTime == nil {
			continue
		}
		if survivor.StartTime == nil || m.StartTime.Before(*survivor.StartTime) {
			t := *m.StartTime
			survivor.StartTime = &t
		}
	}

	absorbed := make([]uuid.UUID, 0, len(dupes)-1)
	for _, d := range dupes[1:] {
		absorbed = append(absorbed, d.ID)
	}

	if err := s.store.MergeInto(ctx, survivor, absorbed); err != nil {
		log.WithError(err).Error("Failed to apply merge")
		return nil, fmt.Errorf("service: could not merge incidents: %w: %v", ErrUpstreamUnavailable, err)
	}
	if s.metrics != nil {
		s.metrics.IncidentsMerged.Inc()
	}

	// Кэш выжившего и поглощённых записей устарел
	s.invalidateCache(ctx, survivor.ID)
	for _, id := range absorbed {
		s.invalidateCache(ctx, id)
	}

	log.WithFields(logrus.Fields{
		"incident_id":  survivor.ID,
		"merged_count": len(mergeSet),
	}).Info("Merged near-duplicate incidents")

	s.publishDecision(ctx, telemetry.DecisionEvent{
		Kind: telemetry.DecisionMerge,
		Input: map[string]any{
			"type":         survivor.Type,
			"severity":     survivor.Severity,
			"location":     []float64{survivor.Latitude, survivor.Longitude},
			"merged_count": len(mergeSet),
		},
		Score:     survivor.Credibility,
		Decision:  survivor.Status,
		Timestamp: s.clock.Now().UTC(),
	})
	return survivor, nil
}

// GetIncident получает инцидент по ID (сначала кэш, затем бд)
func (s *incidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})

	cached, err := s.store.GetIncidentFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident cache")
	}
	if cached != nil {
		return cached, nil
	}

	incident, err := s.store.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to get incident from repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if err := s.store.SetIncidentCache(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to cache incident")
	}
	return incident, nil
}

// ListIncidents возвращает список инцидентов с пагинацией
func (s *incidentService) ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "incident",
		"method":    "ListIncidents",
		"page":      page,
		"page_size": pageSize,
	})

	incidents, err := s.store.ListIncidents(ctx, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}

// ApproveIncident переводит инцидент в статус verified
func (s *incidentService) ApproveIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	return s.moderate(ctx, id, models.StatusVerified)
}

// DismissIncident переводит инцидент в статус dismissed: он исключается из
// слияния и из оценки маршрутов, но физически не удаляется
func (s *incidentService) DismissIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	return s.moderate(ctx, id, models.StatusDismissed)
}

func (s *incidentService) moderate(ctx context.Context, id uuid.UUID, status string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "moderate",
		"incident_id": id,
		"status":      status,
	})

	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		log.WithError(err).Error("Failed to update incident status")
		return nil, fmt.Errorf("service: could not update incident status: %w", err)
	}
	s.invalidateCache(ctx, id)

	incident, err := s.store.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to reload incident after status update")
		return nil, fmt.Errorf("service: could not reload incident: %w", err)
	}

	log.Info("Incident status updated")
	return incident, nil
}

func (s *incidentService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if err := s.store.InvalidateIncidentCache(ctx, id); err != nil {
		s.logger.WithError(err).WithField("incident_id", id).Warn("Failed to invalidate incident cache")
	}
}

// publishDecision отправляет запись решения в приёмник телеметрии.
// Контракт best-effort: ошибка публикации логируется и не влияет на результат.
func (s *incidentService) publishDecision(ctx context.Context, event telemetry.DecisionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).Warn("Failed to publish decision event")
		if s.metrics != nil {
			s.metrics.TelemetryDropped.Inc()
		}
	}
}
