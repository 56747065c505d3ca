package v1

import (
	"time"

	"github.com/google/uuid"
)

// SubmitSignalRequest DTO для приёма сырого сигнала
// @Description DTO для приёма сырого сигнала
type SubmitSignalRequest struct {
	Text       string   `json:"text" validate:"required,min=2"`
	SourceType string   `json:"source_type" validate:"required,min=2,max=255"`
	SourceURL  string   `json:"source_url,omitempty" validate:"omitempty,url"`
	Latitude   *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude  *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Severity   int      `json:"severity" validate:"required,gte=1,lte=5"`
}

// SignalResponse DTO для ответа на приём сигнала. Incident заполняется,
// только если сигнал содержал координаты и породил или обновил инцидент.
// @Description DTO для ответа на приём сигнала
type SignalResponse struct {
	ID         uuid.UUID         `json:"id"`
	Text       string            `json:"text"`
	SourceType string            `json:"source_type"`
	SourceURL  string            `json:"source_url,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	Incident   *IncidentResponse `json:"incident,omitempty"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Severity    int        `json:"severity"`
	Credibility float64    `json:"credibility"`
	Status      string     `json:"status"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CoordinateDTO - пара координат в градусах
// @Description Пара координат в градусах
type CoordinateDTO struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// RouteRequest DTO для запроса безопасного маршрута
// @Description DTO для запроса безопасного маршрута
type RouteRequest struct {
	Origin      CoordinateDTO `json:"origin"`
	Destination CoordinateDTO `json:"destination"`
}

// ScoredRouteResponse - кандидат маршрута с накопленным штрафом безопасности
// @Description Кандидат маршрута с накопленным штрафом безопасности
type ScoredRouteResponse struct {
	Coordinates   []CoordinateDTO `json:"coordinates"`
	DistanceM     float64         `json:"distance_m"`
	DurationS     float64         `json:"duration_s"`
	SafetyPenalty float64         `json:"safety_penalty"`
}

// RouteResponse DTO для ответа выбора маршрута. ChosenIndex равен -1,
// если провайдер не вернул ни одного кандидата.
// @Description DTO для ответа выбора маршрута
type RouteResponse struct {
	ChosenIndex  int                   `json:"chosen_index"`
	ChosenReason string                `json:"chosen_reason"`
	Routes       []ScoredRouteResponse `json:"routes"`
}

// ScoreSourcesRequest DTO для оценки достоверности по набору источников
// @Description DTO для оценки достоверности по набору источников
type ScoreSourcesRequest struct {
	Sources []string `json:"sources" validate:"dive,min=1"`
}

// ScoreSourcesResponse DTO с оценкой достоверности на шкале [1,5]
// @Description DTO с оценкой достоверности на шкале [1,5]
type ScoreSourcesResponse struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
}
