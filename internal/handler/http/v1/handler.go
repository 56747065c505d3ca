package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/disaster_routing_system/internal/config"
	"github.com/shenikar/disaster_routing_system/internal/credibility"
	"github.com/shenikar/disaster_routing_system/internal/models"
	"github.com/shenikar/disaster_routing_system/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	incidentService service.IncidentService
	routeService    service.RouteService
	scorer          credibility.SourceScorer
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(
	incidentService service.IncidentService,
	routeService service.RouteService,
	scorer credibility.SourceScorer,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		incidentService: incidentService,
		routeService:    routeService,
		scorer:          scorer,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// @Summary Submit a raw signal
// @Description Submit a raw disaster signal. Signals with coordinates are scored and consolidated into incidents. Requires API key.
// @Tags Signals
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param signal body SubmitSignalRequest true "Signal submission request"
// @Success 201 {object} SignalResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Upstream store unavailable"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /signals [post]
func (h *Handler) submitSignal(c *gin.Context) {
	var input SubmitSignalRequest
	log := h.logger.WithField("method", "submitSignal")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Координаты задаются только парой
	if (input.Latitude == nil) != (input.Longitude == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude must be provided together"})
		return
	}

	signal := &models.Signal{
		Text:       input.Text,
		SourceType: input.SourceType,
		SourceURL:  input.SourceURL,
	}

	incident, err := h.incidentService.SubmitSignal(c.Request.Context(), signal, input.Latitude, input.Longitude, input.Severity)
	if err != nil {
		log.WithError(err).Error("Failed to submit signal in service")
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SignalToResponse(signal, incident))
}

// @Summary Get a list of incidents
// @Description Get a paginated list of consolidated incidents. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(10)
// @Success 200 {array} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))

	incidents, err := h.incidentService.ListIncidents(c.Request.Context(), page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get incident by ID
// @Description Get a single consolidated incident by its ID. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident from service")
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Approve an incident
// @Description Mark a borderline incident as verified after moderation. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id}/approve [post]
func (h *Handler) approveIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "approveIncident").WithField("id", id)

	incident, err := h.incidentService.ApproveIncident(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).Warn("Failed to approve incident in service")
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Dismiss an incident
// @Description Dismiss an incident after moderation. Dismissed incidents are excluded from routing. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id}/dismiss [post]
func (h *Handler) dismissIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "dismissIncident").WithField("id", id)

	incident, err := h.incidentService.DismissIncident(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).Warn("Failed to dismiss incident in service")
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Choose the safest route
// @Description Choose the route candidate minimizing distance plus safety penalty around active incidents. Requires API key.
// @Tags Routes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param route body RouteRequest true "Route selection request"
// @Success 200 {object} RouteResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Route provider unavailable"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /route [post]
func (h *Handler) chooseRoute(c *gin.Context) {
	var input RouteRequest
	log := h.logger.WithField("method", "chooseRoute")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decision, err := h.routeService.ChooseSafest(
		c.Request.Context(),
		DTOToCoordinate(input.Origin),
		DTOToCoordinate(input.Destination),
	)
	if err != nil {
		log.WithError(err).Error("Failed to choose route in service")
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, DecisionToRouteResponse(decision))
}

// @Summary Get the credibility prompt catalog
// @Description Get the versioned catalog of LLM credibility prompts. Requires API key.
// @Tags Credibility
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /credibility/prompts [get]
func (h *Handler) listPrompts(c *gin.Context) {
	c.JSON(http.StatusOK, credibility.PromptCatalog())
}

// @Summary Score a set of sources
// @Description Aggregate a set of reporting sources into a credibility score on the [1,5] scale. Requires API key.
// @Tags Credibility
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param sources body ScoreSourcesRequest true "Source scoring request"
// @Success 200 {object} ScoreSourcesResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /credibility/score [post]
func (h *Handler) scoreSources(c *gin.Context) {
	var input ScoreSourcesRequest
	log := h.logger.WithField("method", "scoreSources")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	score, reason, err := h.scorer.ScoreSources(c.Request.Context(), input.Sources)
	if err != nil {
		log.WithError(err).Error("Failed to score sources")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ScoreSourcesResponse{Score: score, Reason: reason})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondServiceError переводит ошибки сервисного слоя в HTTP-статусы
func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrIncidentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
	case errors.Is(err, service.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
