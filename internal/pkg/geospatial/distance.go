package geospatial

import "math"

const (
	statuteMilesPerNauticalMile = 1.15077945
	// nauticalMilesPerDegree is one minute of arc per nautical mile.
	nauticalMilesPerDegree = 60.0
	milesPerDegreeLat      = nauticalMilesPerDegree * statuteMilesPerNauticalMile
)

// DistanceMiles returns the great-circle distance in statute miles between two
// points, using the spherical law of cosines.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRad(lat1)
	phi2 := toRad(lat2)

	cosAngle := math.Sin(phi1)*math.Sin(phi2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Cos(toRad(lon1-lon2))

	// rounding can push the argument just past ±1 for identical points
	cosAngle = math.Max(-1, math.Min(1, cosAngle))

	angle := math.Acos(cosAngle)
	nauticalMiles := nauticalMilesPerDegree * toDeg(angle)
	return statuteMilesPerNauticalMile * nauticalMiles
}

// BoundingBoxMiles returns the smallest latitude/longitude box containing every
// point within radiusMiles of (lat, lon). Near the poles the box widens to the
// full longitude range.
func BoundingBoxMiles(lat, lon, radiusMiles float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMiles / milesPerDegreeLat

	minLat = lat - latDelta
	maxLat = lat + latDelta
	if minLat <= -90 || maxLat >= 90 {
		return math.Max(-90, minLat), -180, math.Min(90, maxLat), 180
	}

	ratio := math.Sin(toRad(latDelta)) / math.Cos(toRad(lat))
	if ratio >= 1 {
		return minLat, -180, maxLat, 180
	}
	lonDelta := toDeg(math.Asin(ratio))
	return minLat, lon - lonDelta, maxLat, lon + lonDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
