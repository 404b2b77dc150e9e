package utils

import "math"

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000

func degreesToRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// CalculateHaversineDistance returns the great-circle distance in meters
// between (lat1, lon1) and (lat2, lon2), all in degrees.
func CalculateHaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	// rounding can push a a hair above 1 for antipodal points
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// DestinationPoint returns the point reached by travelling distanceMeters from
// (lat, lon) along the initial bearing (degrees clockwise from north).
func DestinationPoint(lat, lon, bearingDeg, distanceMeters float64) (float64, float64) {
	angular := distanceMeters / EarthRadiusMeters
	bearing := degreesToRadians(bearingDeg)
	latRad := degreesToRadians(lat)
	lonRad := degreesToRadians(lon)

	lat2 := math.Asin(math.Sin(latRad)*math.Cos(angular) +
		math.Cos(latRad)*math.Sin(angular)*math.Cos(bearing))
	lon2 := lonRad + math.Atan2(
		math.Sin(bearing)*math.Sin(angular)*math.Cos(latRad),
		math.Cos(angular)-math.Sin(latRad)*math.Sin(lat2),
	)

	lon2Deg := math.Mod(lon2*180/math.Pi+540, 360) - 180
	return lat2 * 180 / math.Pi, lon2Deg
}
