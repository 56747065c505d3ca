package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shenikar/disaster_routing_system/internal/models"
)

// OSRMClient запрашивает альтернативные маршруты у OSRM-совместимого сервиса.
// Пустой список маршрутов - валидный ответ провайдера.
type OSRMClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOSRMClient создает клиент OSRM с таймаутом на запрос
func NewOSRMClient(baseURL string, timeout time.Duration) *OSRMClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OSRMClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type osrmResponse struct {
	Routes []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Geometry struct {
		// GeoJSON: пары [lon, lat]
		Coordinates [][]float64 `json:"coordinates"`
	} `json:"geometry"`
}

// GetAlternativePaths возвращает кандидатов маршрута между двумя точками.
// Отмена контекста прерывает запрос; ядро не делает повторных попыток.
func (c *OSRMClient) GetAlternativePaths(ctx context.Context, origin, destination models.Coordinate) ([]models.RoutePath, error) {
	// OSRM принимает координаты в порядке lon,lat
	url := fmt.Sprintf(
		"%s/route/v1/driving/%f,%f;%f,%f?alternatives=true&overview=full&geometries=geojson",
		c.baseURL,
		origin.Longitude, origin.Latitude,
		destination.Longitude, destination.Latitude,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSRM request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call OSRM: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OSRM returned status %d", resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode OSRM response: %w", err)
	}

	paths := make([]models.RoutePath, 0, len(body.Routes))
	for _, r := range body.Routes {
		coords := make([]models.Coordinate, 0, len(r.Geometry.Coordinates))
		for _, pair := range r.Geometry.Coordinates {
			if len(pair) < 2 {
				continue
			}
			coords = append(coords, models.Coordinate{Latitude: pair[1], Longitude: pair[0]})
		}
		paths = append(paths, models.RoutePath{
			Coordinates: coords,
			DistanceM:   r.Distance,
			DurationS:   r.Duration,
		})
	}
	return paths, nil
}
