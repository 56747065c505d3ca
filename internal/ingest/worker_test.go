package ingest

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shenikar/disaster_routing_system/internal/models"
	"github.com/shenikar/disaster_routing_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type stubSource struct {
	name  string
	items []Item
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context) ([]Item, error) {
	s.calls++
	return s.items, s.err
}

func newTestWorker(t *testing.T, sources ...Source) (*Worker, *mocks.MockIncidentService) {
	ctrl := gomock.NewController(t)
	incidentsMock := mocks.NewMockIncidentService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	w := NewWorker(sources, incidentsMock, logger, 10*time.Minute, nil, clockwork.NewFakeClock())
	return w, incidentsMock
}

func TestWorker_SubmitsFeedItems(t *testing.T) {
	lat, lon := 40.7, -74.0
	src := &stubSource{
		name: "usgs",
		items: []Item{
			{Text: "M5.4 earthquake", SourceType: "USGS", SourceURL: "https://example.com/eq1", Latitude: &lat, Longitude: &lon, Severity: 3},
			{Text: "Flood Warning", SourceType: "NOAA", SourceURL: "https://example.com/a1", Severity: 4},
		},
	}
	w, incidentsMock := newTestWorker(t, src)

	ctx := context.Background()
	incidentsMock.EXPECT().
		SubmitSignal(ctx, gomock.Any(), &lat, &lon, 3).
		DoAndReturn(func(_ context.Context, signal *models.Signal, _, _ *float64, _ int) (*models.Incident, error) {
			assert.Equal(t, "M5.4 earthquake", signal.Text)
			assert.Equal(t, "USGS", signal.SourceType)
			return &models.Incident{}, nil
		}).
		Times(1)
	// Элемент без координат все равно уходит в SubmitSignal: сигнал сохраняется
	incidentsMock.EXPECT().
		SubmitSignal(ctx, gomock.Any(), nil, nil, 4).
		Return(nil, nil).
		Times(1)

	w.pollAll(ctx)

	assert.Equal(t, 1, src.calls)
}

func TestWorker_FetchFailureDoesNotStopOtherSources(t *testing.T) {
	broken := &stubSource{name: "noaa", err: fmt.Errorf("upstream down")}
	lat, lon := 1.0, 2.0
	healthy := &stubSource{
		name:  "usgs",
		items: []Item{{Text: "quake", SourceType: "USGS", Latitude: &lat, Longitude: &lon, Severity: 2}},
	}
	w, incidentsMock := newTestWorker(t, broken, healthy)

	ctx := context.Background()
	incidentsMock.EXPECT().SubmitSignal(ctx, gomock.Any(), &lat, &lon, 2).Return(nil, nil).Times(1)

	w.pollAll(ctx)

	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, healthy.calls)
}

func TestWorker_SubmitFailureContinues(t *testing.T) {
	lat, lon := 1.0, 2.0
	src := &stubSource{
		name: "usgs",
		items: []Item{
			{Text: "first", SourceType: "USGS", Latitude: &lat, Longitude: &lon, Severity: 1},
			{Text: "second", SourceType: "USGS", Latitude: &lat, Longitude: &lon, Severity: 1},
		},
	}
	w, incidentsMock := newTestWorker(t, src)

	ctx := context.Background()
	gomock.InOrder(
		incidentsMock.EXPECT().SubmitSignal(ctx, gomock.Any(), &lat, &lon, 1).Return(nil, fmt.Errorf("db down")).Times(1),
		incidentsMock.EXPECT().SubmitSignal(ctx, gomock.Any(), &lat, &lon, 1).Return(nil, nil).Times(1),
	)

	w.pollAll(ctx)
}

func TestWorker_CancelledContextSkipsPolling(t *testing.T) {
	src := &stubSource{name: "usgs"}
	w, _ := newTestWorker(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w.pollAll(ctx)

	assert.Equal(t, 0, src.calls)
}
