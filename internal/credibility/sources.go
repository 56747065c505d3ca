package credibility

import "math"

// sourceWeights - фиксированная таблица надёжности источников [0,1].
// Неизвестный источник получает defaultSourceWeight.
var sourceWeights = map[string]float64{
	// Государственные службы
	"NYPD":    1.0,
	"FDNY":    0.95,
	"NYC DOT": 0.9,
	"NYC OEM": 0.9,
	// Крупные местные СМИ
	"CBS New York": 0.85,
	"NBC New York": 0.85,
	"ABC7NY":       0.85,
	"Gothamist":    0.8,
	"NY1":          0.8,
	// Смешанная достоверность
	"NYPost":     0.7,
	"Daily News": 0.7,
	// Приложения, блоги, сканеры
	"CitizenApp": 0.6,
	"Scanner":    0.55,
	"Local Blog": 0.45,
}

const (
	defaultSourceWeight    = 0.5
	corroborationPerSource = 0.04
	corroborationMaxCount  = 25 // бонус насыщается на +1.0

	sourceScaleMin = 1.0
	sourceScaleMax = 5.0
)

// ScoreSources агрегирует набор источников в оценку достоверности [1,5].
// Средний вес источников плюс бонус 0.04*min(n,25), затем линейное
// растяжение от центра 0.5 на шкалу [1,5] и округление до 2 знаков.
//
// Пустой список трактуется как максимальный кредит неопределённости и
// возвращает потолок шкалы 5.0 (отсутствие источников - не отрицательное
// свидетельство). Это зафиксированное политическое решение.
func ScoreSources(sources []string) float64 {
	if len(sources) == 0 {
		return sourceScaleMax
	}

	sum := 0.0
	for _, s := range sources {
		w, ok := sourceWeights[s]
		if !ok {
			w = defaultSourceWeight
		}
		sum += w
	}
	avg := sum / float64(len(sources))

	count := len(sources)
	if count > corroborationMaxCount {
		count = corroborationMaxCount
	}
	raw := avg + corroborationPerSource*float64(count)

	score := 1.0 + (raw-0.5)*(4.0/1.5)
	score = max(sourceScaleMin, min(sourceScaleMax, score))
	return math.Round(score*100) / 100
}

// SourceWeight возвращает вес источника из таблицы (или вес по умолчанию)
func SourceWeight(name string) float64 {
	if w, ok := sourceWeights[name]; ok {
		return w
	}
	return defaultSourceWeight
}
