package models

// Coordinate - точка маршрута (широта, долгота)
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RoutePath - кандидат маршрута, как его возвращает внешний провайдер
type RoutePath struct {
	Coordinates []Coordinate `json:"coordinates"`
	DistanceM   float64      `json:"distance_m"`
	DurationS   float64      `json:"duration_s"`
}

// ScoredRoute - кандидат маршрута с рассчитанным штрафом безопасности
type ScoredRoute struct {
	RoutePath
	SafetyPenalty float64 `json:"safety_penalty"`
}

// RouteDecision - итог выбора маршрута. ChosenIndex == -1 означает,
// что провайдер не вернул ни одного маршрута (это не ошибка).
type RouteDecision struct {
	ChosenIndex  int           `json:"chosen_index"`
	ChosenReason string        `json:"chosen_reason"`
	Routes       []ScoredRoute `json:"routes"`
}
