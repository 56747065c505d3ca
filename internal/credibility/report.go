package credibility

import "strings"

// disasterKeywords - фиксированная таблица ключевых слов по категориям ЧС.
// Загружается один раз при старте процесса и не изменяется.
var disasterKeywords = map[string][]string{
	"fire":     {"fire", "smoke", "flames"},
	"flood":    {"flood", "water rising", "flash flood"},
	"accident": {"accident", "crash", "collision"},
	"shooting": {"shooting", "gunshots"},
	"blackout": {"blackout", "power outage", "no power"},
}

const (
	reportBaseScore    = 0.2
	keywordBonus       = 0.3
	severityBonusStep  = 0.04
	severityBonusCap   = 0.2
	corroborationStep  = 0.2
	corroborationLimit = 0.5
)

// ScoreReport оценивает достоверность одиночного сообщения по шкале [0,1].
// База 0.2; +0.3 при совпадении любого ключевого слова (регистронезависимый
// поиск подстроки, бонус начисляется один раз, категории не суммируются);
// до +0.2 за severity; до +0.5 за количество подтверждений. Детерминированно, без I/O.
func ScoreReport(text string, severity, corroborations int) float64 {
	score := reportBaseScore

	lower := strings.ToLower(text)
	for _, kws := range disasterKeywords {
		matched := false
		for _, kw := range kws {
			if strings.Contains(lower, kw) {
				matched = true
				break
			}
		}
		if matched {
			score += keywordBonus
			break
		}
	}

	if severity < 1 {
		severity = 1
	}
	if severity > 5 {
		severity = 5
	}
	score += min(severityBonusCap, severityBonusStep*float64(severity))
	score += min(corroborationLimit, corroborationStep*float64(corroborations))

	return max(0.0, min(1.0, score))
}
