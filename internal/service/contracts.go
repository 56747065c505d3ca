package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/disaster_routing_system/internal/models"
)

// IncidentStore определяет контракт для работы с бд инцидентов
type IncidentStore interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	Update(ctx context.Context, incident *models.Incident) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	FindActiveByTypeSince(ctx context.Context, incidentType string, since time.Time) ([]*models.Incident, error)
	ListActive(ctx context.Context) ([]*models.Incident, error)
	ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error)
	MergeInto(ctx context.Context, survivor *models.Incident, absorbed []uuid.UUID) error
	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
	InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error
}

// SignalStore определяет контракт для работы с бд сырых сигналов
type SignalStore interface {
	Create(ctx context.Context, signal *models.Signal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Signal, error)
}

// RouteProvider - внешний провайдер маршрутов (черный ящик, возвращает
// кандидатов; пустой список - валидный ответ, не ошибка)
type RouteProvider interface {
	GetAlternativePaths(ctx context.Context, origin, destination models.Coordinate) ([]models.RoutePath, error)
}

// IncidentService определяет контракт бизнес-логики консолидации инцидентов
type IncidentService interface {
	SubmitSignal(ctx context.Context, signal *models.Signal, lat, lon *float64, severity int) (*models.Incident, error)
	MergeOrInsert(ctx context.Context, incident *models.Incident) (*models.Incident, error)
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error)
	ApproveIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	DismissIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
}

// RouteService определяет контракт выбора безопасного маршрута
type RouteService interface {
	ChooseSafest(ctx context.Context, origin, destination models.Coordinate) (*models.RouteDecision, error)
}
