package v1

import "github.com/shenikar/disaster_routing_system/internal/models"

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:          model.ID,
		Type:        model.Type,
		Severity:    model.Severity,
		Credibility: model.Credibility,
		Status:      model.Status,
		Latitude:    model.Latitude,
		Longitude:   model.Longitude,
		StartTime:   model.StartTime,
		EndTime:     model.EndTime,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

// DTOToCoordinate преобразует DTO координат в доменную модель
func DTOToCoordinate(dto CoordinateDTO) models.Coordinate {
	return models.Coordinate{
		Latitude:  dto.Latitude,
		Longitude: dto.Longitude,
	}
}

// DecisionToRouteResponse преобразует решение о маршруте в DTO для ответа
func DecisionToRouteResponse(decision *models.RouteDecision) *RouteResponse {
	routes := make([]ScoredRouteResponse, len(decision.Routes))
	for i, r := range decision.Routes {
		coords := make([]CoordinateDTO, len(r.Coordinates))
		for j, c := range r.Coordinates {
			coords[j] = CoordinateDTO{Latitude: c.Latitude, Longitude: c.Longitude}
		}
		routes[i] = ScoredRouteResponse{
			Coordinates:   coords,
			DistanceM:     r.DistanceM,
			DurationS:     r.DurationS,
			SafetyPenalty: r.SafetyPenalty,
		}
	}
	return &RouteResponse{
		ChosenIndex:  decision.ChosenIndex,
		ChosenReason: decision.ChosenReason,
		Routes:       routes,
	}
}

// SignalToResponse преобразует сырой сигнал и (опционально) порождённый
// инцидент в DTO для ответа
func SignalToResponse(signal *models.Signal, incident *models.Incident) *SignalResponse {
	resp := &SignalResponse{
		ID:         signal.ID,
		Text:       signal.Text,
		SourceType: signal.SourceType,
		SourceURL:  signal.SourceURL,
		CreatedAt:  signal.CreatedAt,
	}
	if incident != nil {
		resp.Incident = ModelToIncidentResponse(incident)
	}
	return resp
}
