package routing

import (
	"github.com/shenikar/disaster_routing_system/internal/geo"
	"github.com/shenikar/disaster_routing_system/internal/models"
)

// SafetyPenalty считает аддитивный штраф безопасности маршрута: для каждой точки
// пути и каждого активного инцидента в пределах radiusM добавляется
// severity*credibility. Штраф намеренно накапливается на каждую точку пути,
// а не один раз на инцидент: маршрут, долго идущий вдоль опасной зоны,
// штрафуется сильнее маршрута, лишь касающегося её.
func SafetyPenalty(coords []models.Coordinate, incidents []*models.Incident, radiusM float64) float64 {
	penalty := 0.0
	for _, point := range coords {
		for _, inc := range incidents {
			if !inc.IsActive() {
				continue
			}
			dist := geo.DistanceMeters(point.Latitude, point.Longitude, inc.Latitude, inc.Longitude)
			if dist <= radiusM {
				penalty += float64(inc.Severity) * inc.Credibility
			}
		}
	}
	return penalty
}
