package credibility

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// GeminiScorer - опциональная LLM-реализация SourceScorer. Любая ошибка
// (сеть, парсинг, пустой ответ) приводит к откату на детерминированную модель,
// поэтому результат всегда валиден и лежит в [1,5].
type GeminiScorer struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	logger        *logrus.Logger
	promptVersion string
	fallback      *DeterministicScorer
}

type geminiResult struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// NewGeminiScorer создает LLM-оценщик с заданной версией промпта из каталога.
// Неизвестная версия заменяется на "v2".
func NewGeminiScorer(ctx context.Context, apiKey, promptVersion string, logger *logrus.Logger) (*GeminiScorer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if _, ok := Prompts[promptVersion]; !ok {
		promptVersion = "v2"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-flash")
	model.ResponseMIMEType = "application/json"
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr[float32](0.3),
		MaxOutputTokens: genai.Ptr[int32](200),
	}

	return &GeminiScorer{
		client:        client,
		model:         model,
		logger:        logger,
		promptVersion: promptVersion,
		fallback:      NewDeterministicScorer(),
	}, nil
}

// Close освобождает клиент Gemini
func (s *GeminiScorer) Close() error {
	return s.client.Close()
}

func (s *GeminiScorer) ScoreSources(ctx context.Context, sources []string) (float64, string, error) {
	prompt := Prompts[s.promptVersion] + "\nSources: " + strings.Join(sources, ", ")

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		s.logger.WithError(err).Warn("Gemini request failed, falling back to deterministic scorer")
		return s.fallback.ScoreSources(ctx, sources)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		s.logger.Warn("Empty Gemini response, falling back to deterministic scorer")
		return s.fallback.ScoreSources(ctx, sources)
	}

	textPart, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		s.logger.Warn("Unexpected Gemini response type, falling back to deterministic scorer")
		return s.fallback.ScoreSources(ctx, sources)
	}

	clean := strings.TrimSpace(string(textPart))
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")

	var result geminiResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(clean)), &result); err != nil {
		s.logger.WithError(err).Warn("Failed to parse Gemini response, falling back to deterministic scorer")
		return s.fallback.ScoreSources(ctx, sources)
	}

	score := max(sourceScaleMin, min(sourceScaleMax, result.Score))
	return score, result.Reason, nil
}
