package routing

import (
	"testing"

	"github.com/shenikar/disaster_routing_system/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSafetyPenalty_Empty(t *testing.T) {
	assert.Equal(t, 0.0, SafetyPenalty(nil, nil, 150))
	assert.Equal(t, 0.0, SafetyPenalty([]models.Coordinate{{Latitude: 1, Longitude: 1}}, nil, 150))
}

func TestSafetyPenalty_SinglePointNearIncident(t *testing.T) {
	incidents := []*models.Incident{
		{Severity: 3, Credibility: 0.5, Status: models.StatusVerified, Latitude: 0, Longitude: 0},
	}
	coords := []models.Coordinate{{Latitude: 0, Longitude: 0.0005}} // ~55 м

	assert.InDelta(t, 1.5, SafetyPenalty(coords, incidents, 150), 1e-9)
}

func TestSafetyPenalty_AccumulatesPerPathPoint(t *testing.T) {
	// Штраф начисляется на каждую точку пути в радиусе, а не один раз на инцидент:
	// путь, идущий вдоль опасной зоны, дороже пути, касающегося её
	incidents := []*models.Incident{
		{Severity: 5, Credibility: 1.0, Status: models.StatusVerified, Latitude: 0, Longitude: 0},
	}
	grazing := []models.Coordinate{
		{Latitude: 0, Longitude: 0.0005},
	}
	dwelling := []models.Coordinate{
		{Latitude: 0, Longitude: -0.0005},
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 0.0005},
	}

	assert.InDelta(t, 5.0, SafetyPenalty(grazing, incidents, 150), 1e-9)
	assert.InDelta(t, 15.0, SafetyPenalty(dwelling, incidents, 150), 1e-9)
}

func TestSafetyPenalty_RadiusBoundary(t *testing.T) {
	incidents := []*models.Incident{
		{Severity: 2, Credibility: 1.0, Status: models.StatusVerified, Latitude: 0, Longitude: 0},
	}

	inside := []models.Coordinate{{Latitude: 0.00134, Longitude: 0}}  // ~149 м
	outside := []models.Coordinate{{Latitude: 0.00136, Longitude: 0}} // ~151 м

	assert.InDelta(t, 2.0, SafetyPenalty(inside, incidents, 150), 1e-9)
	assert.Equal(t, 0.0, SafetyPenalty(outside, incidents, 150))
}

func TestSafetyPenalty_SkipsDismissed(t *testing.T) {
	incidents := []*models.Incident{
		{Severity: 5, Credibility: 1.0, Status: models.StatusDismissed, Latitude: 0, Longitude: 0},
		{Severity: 1, Credibility: 0.4, Status: models.StatusBorderline, Latitude: 0, Longitude: 0},
	}
	coords := []models.Coordinate{{Latitude: 0, Longitude: 0}}

	// dismissed не участвует; borderline - активный статус
	assert.InDelta(t, 0.4, SafetyPenalty(coords, incidents, 150), 1e-9)
}
