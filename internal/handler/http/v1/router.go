package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Приём сырых сигналов
	api.POST("/signals", h.submitSignal)

	// Консолидированные инциденты и модерация
	incidents := api.Group("/incidents")
	{
		incidents.GET("", h.listIncidents)
		incidents.GET("/:id", h.getIncident)
		incidents.POST("/:id/approve", h.approveIncident)
		incidents.POST("/:id/dismiss", h.dismissIncident)
	}

	// Выбор безопасного маршрута
	api.POST("/route", h.chooseRoute)

	// Оценка достоверности
	credibility := api.Group("/credibility")
	{
		credibility.GET("/prompts", h.listPrompts)
		credibility.POST("/score", h.scoreSources)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
