package planner

import "math"

const earthRadiusKm = 6371

// haversineKm calculates the great-circle distance between two coordinates
// in kilometers.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dlat := lat2Rad - lat1Rad
	dlon := lon2Rad - lon1Rad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// midpoint returns the geographic midpoint of two coordinates.
func midpoint(lat1, lon1, lat2, lon2 float64) (float64, float64) {
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	bx := math.Cos(lat2Rad) * math.Cos(lon2Rad-lon1Rad)
	by := math.Cos(lat2Rad) * math.Sin(lon2Rad-lon1Rad)

	midLat := math.Atan2(
		math.Sin(lat1Rad)+math.Sin(lat2Rad),
		math.Sqrt((math.Cos(lat1Rad)+bx)*(math.Cos(lat1Rad)+bx)+by*by),
	)
	midLon := lon1Rad + math.Atan2(by, math.Cos(lat1Rad)+bx)

	return midLat * 180 / math.Pi, midLon * 180 / math.Pi
}
