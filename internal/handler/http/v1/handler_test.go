package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/disaster_routing_system/internal/config"
	"github.com/shenikar/disaster_routing_system/internal/credibility"
	"github.com/shenikar/disaster_routing_system/internal/models"
	"github.com/shenikar/disaster_routing_system/internal/service"
	"github.com/shenikar/disaster_routing_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestHandler создает новый экземпляр Handler с мокированными сервисами
func newTestHandler(t *testing.T) (*Handler, *mocks.MockIncidentService, *mocks.MockRouteService, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockIncidents := mocks.NewMockIncidentService(ctrl)
	mockRoutes := mocks.NewMockRouteService(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys: []string{"test-api-key"},
	}

	handler := NewHandler(mockIncidents, mockRoutes, credibility.NewDeterministicScorer(), logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return handler, mockIncidents, mockRoutes, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitSignal_WithCoordinates(t *testing.T) {
	_, mockIncidents, _, router := newTestHandler(t)
	lat, lon := 40.7128, -74.0060
	reqBody := SubmitSignalRequest{
		Text:       "Fire on Main St, flames visible",
		SourceType: "user",
		Latitude:   &lat,
		Longitude:  &lon,
		Severity:   4,
	}
	signalID := uuid.New()
	incidentID := uuid.New()

	mockIncidents.EXPECT().
		SubmitSignal(gomock.Any(), gomock.Any(), &lat, &lon, 4).
		DoAndReturn(func(_ context.Context, signal *models.Signal, _, _ *float64, _ int) (*models.Incident, error) {
			signal.ID = signalID
			signal.CreatedAt = time.Now()
			return &models.Incident{
				ID:          incidentID,
				Type:        "fire",
				Severity:    4,
				Credibility: 0.74,
				Status:      models.StatusVerified,
				Latitude:    lat,
				Longitude:   lon,
			}, nil
		}).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/signals", bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp SignalResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, signalID, resp.ID)
	require.NotNil(t, resp.Incident)
	assert.Equal(t, incidentID, resp.Incident.ID)
	assert.Equal(t, "fire", resp.Incident.Type)
}

func TestSubmitSignal_TextOnly(t *testing.T) {
	_, mockIncidents, _, router := newTestHandler(t)
	reqBody := SubmitSignalRequest{
		Text:       "Rumor of flooding downtown",
		SourceType: "news",
		Severity:   2,
	}

	// Сигнал без координат сохраняется, но инцидента не порождает
	mockIncidents.EXPECT().
		SubmitSignal(gomock.Any(), gomock.Any(), nil, nil, 2).
		Return(nil, nil).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/signals", bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp SignalResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Nil(t, resp.Incident)
}

func TestSubmitSignal_InvalidJSON(t *testing.T) {
	_, mockIncidents, _, router := newTestHandler(t)

	mockIncidents.EXPECT().SubmitSignal(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/signals", bytes.NewBufferString(`{"text": "fire"`), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestSubmitSignal_ValidationError(t *testing.T) {
	_, mockIncidents, _, router := newTestHandler(t)
	reqBody := SubmitSignalRequest{ // Отсутствует Text
		SourceType: "user",
		Severity:   3,
	}

	mockIncidents.EXPECT().SubmitSignal(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/signals", bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Text' failed on the 'required' tag")
}

func TestSubmitSignal_MismatchedCoordinates(t *testing.T) {
	_, mockIncidents, _, router := newTestHandler(t)
	lat := 40.7128
	reqBody := SubmitSignalRequest{
		Text:       "Accident on the bridge",
		SourceType: "user",
		Latitude:   &lat, // Долгота не передана
		Severity:   3,
	}

	mockIncidents.EXPECT().SubmitSignal(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/signals", bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "latitude and longitude must be provided together")
}

func TestSubmitSignal_UpstreamUnavailable(t *testing.T) {
	_, mockIncidents, _, router := newTestHandler(t)
	reqBody := SubmitSignalRequest{
		Text:       "Fire on Main St",
		SourceType: "user",
		Severity:   4,
	}

	mockIncidents.EXPECT().
		SubmitSignal(gomock.Any(), gomock.Any(), nil, nil, 4).
		Return(nil, fmt.Errorf("submit signal: %w: connection refused", service.ErrUpstreamUnavailable)).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/signals", bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "upstream unavailable")
}

func TestListIncidents_Success(t *testing.T) {
	_, mockIncidents, _, router := newTestHandler(t)
	incidents := []*models.Incident{
		{ID: uuid.New(), Type: "fire", Severity: 4, Status: models.StatusVerified},
		{ID: uuid.New(), Type: "flood", Severity: 2, Status: models.StatusBorderline},
	}

	mockIncidents.EXPECT().ListIncidents(gomock.Any(), 2, 5).Return(incidents, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents?page=2&pageSize=5", nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []*IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, "fire", resp[0].Type)
}

func TestGetIncident_Success(t *testing.T) {
	_, mockIncidents, _, router := newTestHandler(t)
	incidentID := uuid.New()
	incident := &models.Incident{
		ID:          incidentID,
		Type:        "accident",
		Severity:    3,
		Credibility: 0.6,
		Status:      models.StatusVerified,
	}

	mockIncidents.EXPECT().GetIncident(gomock.Any(), incidentID).Return(incident, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/"+incidentID.String(), nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, incidentID, resp.ID)
	assert.Equal(t, "accident", resp.Type)
}

func TestGetIncident_InvalidID(t *testing.T) {
	_, _, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/incidents/not-a-uuid", nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid incident ID")
}

func TestGetIncident_NotFound(t *testing.T) {
	_, mockIncidents, _, router := newTestHandler(t)
	incidentID := uuid.New()

	mockIncidents.EXPECT().
		GetIncident(gomock.Any(), incidentID).
		Return(nil, fmt.Errorf("get incident: %w", service.ErrIncidentNotFound)).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/"+incidentID.String(), nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "incident not found")
}

func TestApproveIncident_Success(t *testing.T) {
	_, mockIncidents, _, router := newTestHandler(t)
	incidentID := uuid.New()
	incident := &models.Incident{ID: incidentID, Type: "fire", Status: models.StatusVerified}

	mockIncidents.EXPECT().ApproveIncident(gomock.Any(), incidentID).Return(incident, nil).Times(1)

	w := makeRequest(router, "POST", "/api/v1/incidents/"+incidentID.String()+"/approve", nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, resp.Status)
}

func TestDismissIncident_Success(t *testing.T) {
	_, mockIncidents, _, router := newTestHandler(t)
	incidentID := uuid.New()
	incident := &models.Incident{ID: incidentID, Type: "fire", Status: models.StatusDismissed}

	mockIncidents.EXPECT().DismissIncident(gomock.Any(), incidentID).Return(incident, nil).Times(1)

	w := makeRequest(router, "POST", "/api/v1/incidents/"+incidentID.String()+"/dismiss", nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp IncidentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDismissed, resp.Status)
}

func TestDismissIncident_NotFound(t *testing.T) {
	_, mockIncidents, _, router := newTestHandler(t)
	incidentID := uuid.New()

	mockIncidents.EXPECT().
		DismissIncident(gomock.Any(), incidentID).
		Return(nil, fmt.Errorf("dismiss incident: %w", service.ErrIncidentNotFound)).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/incidents/"+incidentID.String()+"/dismiss", nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChooseRoute_Success(t *testing.T) {
	_, _, mockRoutes, router := newTestHandler(t)
	reqBody := RouteRequest{
		Origin:      CoordinateDTO{Latitude: 40.7128, Longitude: -74.0060},
		Destination: CoordinateDTO{Latitude: 40.7580, Longitude: -73.9855},
	}
	decision := &models.RouteDecision{
		ChosenIndex:  1,
		ChosenReason: "Chosen route minimizes distance while avoiding nearby incidents",
		Routes: []models.ScoredRoute{
			{RoutePath: models.RoutePath{DistanceM: 900}, SafetyPenalty: 5},
			{RoutePath: models.RoutePath{DistanceM: 1000}, SafetyPenalty: 0},
		},
	}

	mockRoutes.EXPECT().
		ChooseSafest(gomock.Any(), models.Coordinate{Latitude: 40.7128, Longitude: -74.0060}, models.Coordinate{Latitude: 40.7580, Longitude: -73.9855}).
		Return(decision, nil).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/route", bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp RouteResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ChosenIndex)
	require.Len(t, resp.Routes, 2)
	assert.Equal(t, 5.0, resp.Routes[0].SafetyPenalty)
}

func TestChooseRoute_NoRoutes(t *testing.T) {
	_, _, mockRoutes, router := newTestHandler(t)
	reqBody := RouteRequest{
		Origin:      CoordinateDTO{Latitude: 0, Longitude: 0},
		Destination: CoordinateDTO{Latitude: 1, Longitude: 1},
	}

	mockRoutes.EXPECT().
		ChooseSafest(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&models.RouteDecision{ChosenIndex: -1, Routes: []models.ScoredRoute{}}, nil).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/route", bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	// Отсутствие кандидатов - определённый исход, а не ошибка
	assert.Equal(t, http.StatusOK, w.Code)

	var resp RouteResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, -1, resp.ChosenIndex)
	assert.Empty(t, resp.Routes)
}

func TestChooseRoute_ProviderUnavailable(t *testing.T) {
	_, _, mockRoutes, router := newTestHandler(t)
	reqBody := RouteRequest{
		Origin:      CoordinateDTO{Latitude: 0, Longitude: 0},
		Destination: CoordinateDTO{Latitude: 1, Longitude: 1},
	}

	mockRoutes.EXPECT().
		ChooseSafest(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("choose safest: %w: timeout", service.ErrUpstreamUnavailable)).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/route", bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "upstream unavailable")
}

func TestListPrompts_Success(t *testing.T) {
	_, _, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/credibility/prompts", nil, map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Contains(t, resp, "v1")
	assert.Contains(t, resp, "v2")
}

func TestScoreSources_Success(t *testing.T) {
	_, _, _, router := newTestHandler(t)
	reqBody := ScoreSourcesRequest{Sources: []string{"NYPD"}}

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/credibility/score", bytes.NewBuffer(bodyBytes), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ScoreSourcesResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 2.44, resp.Score)
	assert.NotEmpty(t, resp.Reason)
}

func TestScoreSources_EmptyList(t *testing.T) {
	_, _, _, router := newTestHandler(t)

	w := makeRequest(router, "POST", "/api/v1/credibility/score", bytes.NewBufferString(`{"sources": []}`), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ScoreSourcesResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 5.0, resp.Score)
}

func TestHealthCheck(t *testing.T) {
	_, _, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestAPIKeyAuthMiddleware(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	cfg := &config.Config{APIKeys: []string{"valid-key"}}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	protected := router.Group("/api/v1", APIKeyAuthMiddleware(cfg, logger))
	protected.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Без ключа
	w := makeRequest(router, "GET", "/api/v1/ping", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Неверный ключ
	w = makeRequest(router, "GET", "/api/v1/ping", nil, map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Верный ключ в X-API-Key
	w = makeRequest(router, "GET", "/api/v1/ping", nil, map[string]string{"X-API-Key": "valid-key"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Верный ключ в Authorization: Bearer
	w = makeRequest(router, "GET", "/api/v1/ping", nil, map[string]string{"Authorization": "Bearer valid-key"})
	assert.Equal(t, http.StatusOK, w.Code)
}
