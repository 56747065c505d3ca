package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shenikar/disaster_routing_system/internal/config"
	"github.com/shenikar/disaster_routing_system/internal/models"
	"github.com/shenikar/disaster_routing_system/internal/observability"
	"github.com/shenikar/disaster_routing_system/internal/routing"
	"github.com/shenikar/disaster_routing_system/internal/telemetry"
	"github.com/sirupsen/logrus"
)

const chosenReason = "Chosen route minimizes distance while avoiding nearby incidents"

type routeService struct {
	store     IncidentStore
	provider  RouteProvider
	logger    *logrus.Logger
	cfg       *config.Config
	publisher telemetry.DecisionPublisher
	metrics   *observability.Metrics
}

func NewRouteService(
	store IncidentStore,
	provider RouteProvider,
	logger *logrus.Logger,
	cfg *config.Config,
	publisher telemetry.DecisionPublisher,
	metrics *observability.Metrics,
) RouteService {
	return &routeService{
		store:     store,
		provider:  provider,
		logger:    logger,
		cfg:       cfg,
		publisher: publisher,
		metrics:   metrics,
	}
}

// ChooseSafest запрашивает кандидатов у внешнего провайдера, считает каждому
// штраф безопасности по активным инцидентам и выбирает маршрут с минимальной
// стоимостью distance_m + penalty*PenaltyDetourM. Чтение без побочных эффектов:
// отмена запроса не оставляет частичных изменений. Пустой ответ провайдера -
// валидный исход (ChosenIndex = -1), не ошибка.
func (s *routeService) ChooseSafest(ctx context.Context, origin, destination models.Coordinate) (*models.RouteDecision, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "route",
		"method":  "ChooseSafest",
	})
	if s.metrics != nil {
		s.metrics.RouteRequests.Inc()
	}

	incidents, err := s.store.ListActive(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load active incidents")
		return nil, fmt.Errorf("service: could not load active incidents: %w: %v", ErrUpstreamUnavailable, err)
	}
	if s.metrics != nil {
		s.metrics.ActiveIncidents.Set(float64(len(incidents)))
	}

	paths, err := s.provider.GetAlternativePaths(ctx, origin, destination)
	if err != nil {
		log.WithError(err).Error("Route provider call failed")
		return nil, fmt.Errorf("service: route provider failed: %w: %v", ErrUpstreamUnavailable, err)
	}

	if len(paths) == 0 {
		log.Info("Route provider returned no candidates")
		if s.metrics != nil {
			s.metrics.RoutesEmpty.Inc()
		}
		return &models.RouteDecision{
			ChosenIndex: -1,
			Routes:      []models.ScoredRoute{},
		}, nil
	}

	scored := make([]models.ScoredRoute, 0, len(paths))
	for _, p := range paths {
		penalty := routing.SafetyPenalty(p.Coordinates, incidents, s.cfg.DangerRadiusM)
		scored = append(scored, models.ScoredRoute{
			RoutePath:     p,
			SafetyPenalty: penalty,
		})
	}

	bestIndex := 0
	bestCost := scored[0].DistanceM + scored[0].SafetyPenalty*s.cfg.PenaltyDetourM
	for i := 1; i < len(scored); i++ {
		cost := scored[i].DistanceM + scored[i].SafetyPenalty*s.cfg.PenaltyDetourM
		if cost < bestCost {
			bestIndex = i
			bestCost = cost
		}
	}

	log.WithFields(logrus.Fields{
		"candidates":   len(scored),
		"chosen_index": bestIndex,
		"penalty":      scored[bestIndex].SafetyPenalty,
	}).Info("Safest route selected")

	s.publishDecision(ctx, telemetry.DecisionEvent{
		Kind: telemetry.DecisionRoute,
		Input: map[string]any{
			"origin":      []float64{origin.Latitude, origin.Longitude},
			"destination": []float64{destination.Latitude, destination.Longitude},
			"incidents":   len(incidents),
			"candidates":  len(scored),
		},
		Score:     scored[bestIndex].SafetyPenalty,
		Decision:  fmt.Sprintf("route_%d", bestIndex),
		Timestamp: time.Now().UTC(),
	})

	return &models.RouteDecision{
		ChosenIndex:  bestIndex,
		ChosenReason: chosenReason,
		Routes:       scored,
	}, nil
}

func (s *routeService) publishDecision(ctx context.Context, event telemetry.DecisionEvent) {
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
