package credibility

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreSources_Empty(t *testing.T) {
	// Отсутствие источников - максимальный кредит неопределённости, потолок шкалы
	assert.Equal(t, 5.0, ScoreSources(nil))
	assert.Equal(t, 5.0, ScoreSources([]string{}))
}

func TestScoreSources_KnownValues(t *testing.T) {
	// avg=1.0, бонус 0.04: 1 + (1.04-0.5)*(4/1.5) = 2.44
	assert.InDelta(t, 2.44, ScoreSources([]string{"NYPD"}), 1e-9)

	// Смесь официальных и крупных СМИ
	real := []string{"NYPD", "FDNY", "ABC7NY", "NBC New York", "NY1"}
	assert.InDelta(t, 2.57, ScoreSources(real), 1e-9)

	// Только низкодостоверные источники
	fake := []string{"Local Blog", "CitizenApp", "Scanner"}
	assert.InDelta(t, 1.41, ScoreSources(fake), 1e-9)

	assert.Greater(t, ScoreSources(real), ScoreSources(fake))
}

func TestScoreSources_UnknownSourceDefaultWeight(t *testing.T) {
	// Неизвестный источник получает вес 0.5: raw=0.54 -> 1.11
	assert.InDelta(t, 1.11, ScoreSources([]string{"Some Random Feed"}), 1e-9)
	assert.Equal(t, 0.5, SourceWeight("Some Random Feed"))
	assert.Equal(t, 1.0, SourceWeight("NYPD"))
}

func TestScoreSources_MonotonicInCount(t *testing.T) {
	// При фиксированном качестве источников рост корробораций не снижает оценку
	for _, src := range []string{"NYPD", "Scanner", "Unknown Outlet"} {
		prev := 0.0
		for n := 1; n <= 30; n++ {
			list := make([]string, n)
			for i := range list {
				list[i] = src
			}
			got := ScoreSources(list)
			assert.GreaterOrEqual(t, got, prev, "source=%s n=%d", src, n)
			assert.GreaterOrEqual(t, got, 1.0)
			assert.LessOrEqual(t, got, 5.0)
			prev = got
		}
	}
}

func TestScoreSources_BonusSaturation(t *testing.T) {
	list25 := make([]string, 25)
	list40 := make([]string, 40)
	for i := range list25 {
		list25[i] = "NYPD"
	}
	for i := range list40 {
		list40[i] = "NYPD"
	}
	// Бонус насыщается на 25 источниках; 25 надёжных дают потолок шкалы
	assert.Equal(t, 5.0, ScoreSources(list25))
	assert.Equal(t, ScoreSources(list25), ScoreSources(list40))
}

func TestDeterministicScorer(t *testing.T) {
	s := NewDeterministicScorer()
	score, reason, err := s.ScoreSources(context.Background(), []string{"NYPD"})
	require.NoError(t, err)
	assert.InDelta(t, 2.44, score, 1e-9)
	assert.NotEmpty(t, reason)
}

func TestPromptCatalog_Copy(t *testing.T) {
	catalog := PromptCatalog()
	require.Contains(t, catalog, "v2")
	catalog["v2"] = "mutated"
	assert.NotEqual(t, "mutated", Prompts["v2"])
}
