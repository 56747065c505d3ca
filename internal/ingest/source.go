package ingest

import "context"

// Item - нормализованный элемент внешней ленты. Координаты опциональны:
// элемент без координат сохраняется как сырой сигнал, но не порождает инцидент.
type Item struct {
	Text       string
	SourceType string
	SourceURL  string
	Latitude   *float64
	Longitude  *float64
	Severity   int
}

// Source - внешняя лента происшествий (NOAA, USGS)
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Item, error)
}
