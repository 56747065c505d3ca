package credibility

import "context"

// SourceScorer - способность оценивать достоверность по набору источников.
// Детерминированная реализация обязательна и всегда доступна; LLM-реализация
// опциональна и подключается конфигурацией.
type SourceScorer interface {
	ScoreSources(ctx context.Context, sources []string) (score float64, reason string, err error)
}

// DeterministicScorer - базовая реализация SourceScorer на таблице весов.
// Не делает I/O и никогда не возвращает ошибку.
type DeterministicScorer struct{}

func NewDeterministicScorer() *DeterministicScorer {
	return &DeterministicScorer{}
}

func (s *DeterministicScorer) ScoreSources(_ context.Context, sources []string) (float64, string, error) {
	return ScoreSources(sources), "deterministic source-weight model", nil
}
