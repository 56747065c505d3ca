package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUSGSClient_FetchFiltersByMagnitude(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"features": [
				{
					"properties": {"mag": 5.4, "place": "10km N of Somewhere", "url": "https://earthquake.usgs.gov/eq1"},
					"geometry": {"coordinates": [-118.25, 34.05, 12.3]}
				},
				{
					"properties": {"mag": 1.2, "place": "Quarry blast", "url": "https://earthquake.usgs.gov/eq2"},
					"geometry": {"coordinates": [-120.0, 36.0, 5.0]}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewUSGSClient(server.URL, 2.5, 5*time.Second)
	items, err := client.Fetch(context.Background())

	require.NoError(t, err)
	// Магнитуда 1.2 ниже порога 2.5 и отбрасывается
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "M5.4 earthquake - 10km N of Somewhere", item.Text)
	assert.Equal(t, "USGS", item.SourceType)
	assert.Equal(t, "https://earthquake.usgs.gov/eq1", item.SourceURL)
	assert.Equal(t, 3, item.Severity)
	require.NotNil(t, item.Latitude)
	require.NotNil(t, item.Longitude)
	assert.Equal(t, 34.05, *item.Latitude)
	assert.Equal(t, -118.25, *item.Longitude)
}

func TestUSGSClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewUSGSClient(server.URL, 2.5, 5*time.Second)
	_, err := client.Fetch(context.Background())

	require.Error(t, err)
}

func TestUSGSSeverity(t *testing.T) {
	assert.Equal(t, 5, usgsSeverity(7.5))
	assert.Equal(t, 4, usgsSeverity(6.1))
	assert.Equal(t, 3, usgsSeverity(5.0))
	assert.Equal(t, 2, usgsSeverity(4.2))
	assert.Equal(t, 1, usgsSeverity(2.5))
}
