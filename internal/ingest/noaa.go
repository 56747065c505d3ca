package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const noaaSourceName = "noaa"

// NOAAClient читает активные погодные предупреждения NOAA по региону.
// https://api.weather.gov/alerts/active?area=NY
type NOAAClient struct {
	baseURL    string
	area       string
	httpClient *http.Client
}

// NewNOAAClient создает клиент ленты предупреждений NOAA
func NewNOAAClient(baseURL, area string, timeout time.Duration) *NOAAClient {
	if baseURL == "" {
		baseURL = "https://api.weather.gov"
	}
	return &NOAAClient{
		baseURL: baseURL,
		area:    area,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *NOAAClient) Name() string { return noaaSourceName }

type noaaResponse struct {
	Features []noaaFeature `json:"features"`
}

type noaaFeature struct {
	ID       string `json:"id"`
	Geometry *struct {
		Type string `json:"type"`
		// Point: [lon, lat]; Polygon: [[[lon, lat], ...]]
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Event       string `json:"event"`
		Headline    string `json:"headline"`
		Description string `json:"description"`
		Severity    string `json:"severity"`
	} `json:"properties"`
}

// Fetch возвращает активные предупреждения, нормализованные в элементы ленты.
// Предупреждения без геометрии возвращаются без координат.
func (c *NOAAClient) Fetch(ctx context.Context) ([]Item, error) {
	url := fmt.Sprintf("%s/alerts/active?area=%s", c.baseURL, c.area)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create NOAA request: %w", err)
	}
	// api.weather.gov требует осмысленный User-Agent
	req.Header.Set("User-Agent", "disaster-routing-system (ops@disaster-routing.local)")
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call NOAA: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NOAA returned status %d", resp.StatusCode)
	}

	var body noaaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode NOAA response: %w", err)
	}

	items := make([]Item, 0, len(body.Features))
	for _, f := range body.Features {
		text := f.Properties.Headline
		if text == "" {
			text = f.Properties.Event
		}

		item := Item{
			Text:       text,
			SourceType: "NOAA",
			SourceURL:  f.ID,
			Severity:   noaaSeverity(f.Properties.Severity),
		}

		if f.Geometry != nil {
			if lat, lon, ok := noaaCentroid(f.Geometry.Type, f.Geometry.Coordinates); ok {
				item.Latitude = &lat
				item.Longitude = &lon
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// noaaSeverity переводит категорию NOAA в серьезность 1..5
func noaaSeverity(category string) int {
	switch category {
	case "Extreme":
		return 5
	case "Severe":
		return 4
	case "Moderate":
		return 3
	case "Minor":
		return 2
	default:
		return 1
	}
}

// noaaCentroid извлекает координаты из геометрии предупреждения:
// Point как есть, Polygon - центр первого контура
func noaaCentroid(geomType string, raw json.RawMessage) (lat, lon float64, ok bool) {
	switch geomType {
	case "Point":
		var pt []float64
		if err := json.Unmarshal(raw, &pt); err != nil || len(pt) < 2 {
			return 0, 0, false
		}
		return pt[1], pt[0], true
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(raw, &rings); err != nil || len(rings) == 0 || len(rings[0]) == 0 {
			return 0, 0, false
		}
		var sumLat, sumLon float64
		count := 0
		for _, pt := range rings[0] {
			if len(pt) < 2 {
				continue
			}
			sumLon += pt[0]
			sumLat += pt[1]
			count++
		}
		if count == 0 {
			return 0, 0, false
		}
		return sumLat / float64(count), sumLon / float64(count), true
	default:
		return 0, 0, false
	}
}
