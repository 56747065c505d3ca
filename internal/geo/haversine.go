package geo

import "math"

// Радиус Земли в метрах (сферическая модель)
const earthRadiusM = 6371000.0

// DistanceMeters возвращает расстояние по дуге большого круга (формула гаверсинусов)
// между двумя точками в метрах. Вызывающая сторона обязана заранее проверить,
// что lat в [-90,90] и lon в [-180,180]; для значений вне диапазона результат не определён.
func DistanceMeters(latA, lonA, latB, lonB float64) float64 {
	phiA := latA * math.Pi / 180
	phiB := latB * math.Pi / 180
	dPhi := (latB - latA) * math.Pi / 180
	dLambda := (lonB - lonA) * math.Pi / 180

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phiA)*math.Cos(phiB)*sinLambda*sinLambda
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}
