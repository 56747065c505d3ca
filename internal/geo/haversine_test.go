package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters_SamePoint(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{40.7128, -74.0060},
		{-33.8688, 151.2093},
		{89.9, 179.9},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, DistanceMeters(p[0], p[1], p[0], p[1]))
	}
}

func TestDistanceMeters_Symmetry(t *testing.T) {
	d1 := DistanceMeters(40.7128, -74.0060, 40.7580, -73.9855)
	d2 := DistanceMeters(40.7580, -73.9855, 40.7128, -74.0060)
	assert.Equal(t, d1, d2)
}

func TestDistanceMeters_KnownDistances(t *testing.T) {
	// Один градус широты на экваторе ~ 111.19 км
	d := DistanceMeters(0, 0, 1, 0)
	assert.InDelta(t, 111195, d, 100)

	// Таймс-сквер - Эмпайр-стейт-билдинг, порядка 1.1 км
	d = DistanceMeters(40.7580, -73.9855, 40.7484, -73.9857)
	assert.InDelta(t, 1070, d, 50)
}

func TestDistanceMeters_SmallOffsets(t *testing.T) {
	// 0.002 градуса долготы на экваторе ~ 222 м, важно для порога слияния 200 м
	d := DistanceMeters(0, 0, 0, 0.002)
	assert.InDelta(t, 222.4, d, 1.0)

	d = DistanceMeters(0, 0, 0, 0.00179)
	assert.Less(t, d, 200.0)

	d = DistanceMeters(0, 0, 0, 0.00181)
	assert.Greater(t, d, 200.0)
}
