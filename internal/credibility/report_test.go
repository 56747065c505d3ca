package credibility

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreReport_Base(t *testing.T) {
	// Без ключевых слов и подтверждений: 0.2 + 0.04*1 = 0.24
	assert.InDelta(t, 0.24, ScoreReport("something happened", 1, 0), 1e-9)
}

func TestScoreReport_KeywordBonus(t *testing.T) {
	// 0.2 + 0.3 + 0.04 = 0.54
	assert.InDelta(t, 0.54, ScoreReport("there is a fire on the block", 1, 0), 1e-9)

	// Регистронезависимость
	assert.InDelta(t, 0.54, ScoreReport("FLASH FLOOD near the bridge", 1, 0), 1e-9)

	// Бонус не суммируется между категориями
	assert.InDelta(t, 0.54, ScoreReport("fire and flood and crash", 1, 0), 1e-9)
}

func TestScoreReport_SeverityBonus(t *testing.T) {
	base := ScoreReport("quiet street", 1, 0)
	for sev := 1; sev <= 5; sev++ {
		got := ScoreReport("quiet street", sev, 0)
		assert.InDelta(t, base+0.04*float64(sev-1), got, 1e-9)
	}
	// Значения вне диапазона прижимаются к [1,5]
	assert.Equal(t, ScoreReport("quiet street", 5, 0), ScoreReport("quiet street", 9, 0))
	assert.Equal(t, ScoreReport("quiet street", 1, 0), ScoreReport("quiet street", -3, 0))
}

func TestScoreReport_CorroborationBonus(t *testing.T) {
	// 0.2*count, насыщение на 0.5
	assert.InDelta(t, 0.44, ScoreReport("x", 1, 1), 1e-9)
	assert.InDelta(t, 0.64, ScoreReport("x", 1, 2), 1e-9)
	assert.InDelta(t, 0.74, ScoreReport("x", 1, 3), 1e-9)
	assert.InDelta(t, 0.74, ScoreReport("x", 1, 10), 1e-9)
}

func TestScoreReport_Monotonic(t *testing.T) {
	for _, text := range []string{"nothing", "fire downtown"} {
		prev := -1.0
		for corr := 0; corr <= 6; corr++ {
			got := ScoreReport(text, 3, corr)
			assert.GreaterOrEqual(t, got, prev, fmt.Sprintf("text=%q corr=%d", text, corr))
			prev = got
		}
		prev = -1.0
		for sev := 1; sev <= 5; sev++ {
			got := ScoreReport(text, sev, 2)
			assert.GreaterOrEqual(t, got, prev)
			prev = got
		}
	}
}

func TestScoreReport_Bounds(t *testing.T) {
	cases := []struct {
		text string
		sev  int
		corr int
	}{
		{"", 1, 0},
		{"fire smoke flames flood crash", 5, 100},
		{"gunshots reported", 3, 2},
	}
	for _, c := range cases {
		got := ScoreReport(c.text, c.sev, c.corr)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
	// Максимально возможное значение: 0.2+0.3+0.2+0.5 = 1.0
	assert.InDelta(t, 1.0, ScoreReport("major fire", 5, 10), 1e-9)
}
