package models

import (
	"time"

	"github.com/google/uuid"
)

// Signal представляет сырое сообщение о возможном происшествии до консолидации.
// Запись неизменяема после создания; инцидент ссылается на неё через SignalID.
type Signal struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	SourceType string    `json:"source_type"` // user, noaa, usgs, news
	SourceURL  string    `json:"source_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
