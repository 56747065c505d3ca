package service

import "errors"

// Типизированные отказы ядра. Ошибки внешних границ (бд, провайдер маршрутов)
// оборачиваются в ErrUpstreamUnavailable и пробрасываются без повторных попыток.
var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrIncidentNotFound    = errors.New("incident not found")
)
