package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const usgsSourceName = "usgs"

// USGSClient читает ленту землетрясений USGS за последнюю неделю.
// https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson
type USGSClient struct {
	feedURL      string
	minMagnitude float64
	httpClient   *http.Client
}

// NewUSGSClient создает клиент ленты землетрясений USGS
func NewUSGSClient(feedURL string, minMagnitude float64, timeout time.Duration) *USGSClient {
	if feedURL == "" {
		feedURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson"
	}
	return &USGSClient{
		feedURL:      feedURL,
		minMagnitude: minMagnitude,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *USGSClient) Name() string { return usgsSourceName }

type usgsResponse struct {
	Features []usgsFeature `json:"features"`
}

type usgsFeature struct {
	Properties struct {
		Mag   float64 `json:"mag"`
		Place string  `json:"place"`
		URL   string  `json:"url"`
	} `json:"properties"`
	Geometry struct {
		// [lon, lat, depth]
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
}

// Fetch возвращает землетрясения с магнитудой не ниже порога
func (c *USGSClient) Fetch(ctx context.Context) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create USGS request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call USGS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("USGS returned status %d", resp.StatusCode)
	}

	var body usgsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode USGS response: %w", err)
	}

	items := make([]Item, 0, len(body.Features))
	for _, f := range body.Features {
		if f.Properties.Mag < c.minMagnitude {
			continue
		}

		item := Item{
			Text:       fmt.Sprintf("M%.1f earthquake - %s", f.Properties.Mag, f.Properties.Place),
			SourceType: "USGS",
			SourceURL:  f.Properties.URL,
			Severity:   usgsSeverity(f.Properties.Mag),
		}
		if len(f.Geometry.Coordinates) >= 2 {
			lat := f.Geometry.Coordinates[1]
			lon := f.Geometry.Coordinates[0]
			item.Latitude = &lat
			item.Longitude = &lon
		}
		items = append(items, item)
	}
	return items, nil
}

// usgsSeverity переводит магнитуду в серьезность 1..5
func usgsSeverity(mag float64) int {
	switch {
	case mag >= 7.0:
		return 5
	case mag >= 6.0:
		return 4
	case mag >= 5.0:
		return 3
	case mag >= 4.0:
		return 2
	default:
		return 1
	}
}
