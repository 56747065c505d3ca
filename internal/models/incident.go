package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы инцидента. dismissed исключается из маршрутизации и из слияния дубликатов.
const (
	StatusVerified   = "verified"
	StatusBorderline = "borderline"
	StatusDismissed  = "dismissed"
)

// Incident - каноническое (дедуплицированное) событие ЧС
type Incident struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Severity    int        `json:"severity"`    // 1-5
	Credibility float64    `json:"credibility"` // 0.0-1.0
	Status      string     `json:"status"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	SignalID    *uuid.UUID `json:"signal_id,omitempty"` // слабая ссылка на исходный сигнал
}

// IsActive сообщает, участвует ли инцидент в слиянии и в оценке маршрутов
func (i *Incident) IsActive() bool {
	return i.Status != StatusDismissed
}
