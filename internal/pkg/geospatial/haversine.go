package geospatial

import "math"

const earthRadiusKm = 6371.0

// HaversineKm calculates the great-circle distance in kilometers between two points.
// Inputs are not range checked.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// PathBounds returns the bounding box of a sequence of (lat, lon) pairs.
// An empty input yields all zeros.
func PathBounds(pts [][2]float64) (minLat, minLon, maxLat, maxLon float64) {
	if len(pts) == 0 {
		return 0, 0, 0, 0
	}
	minLat, minLon = pts[0][0], pts[0][1]
	maxLat, maxLon = minLat, minLon
	for _, p := range pts[1:] {
		minLat = math.Min(minLat, p[0])
		maxLat = math.Max(maxLat, p[0])
		minLon = math.Min(minLon, p[1])
		maxLon = math.Max(maxLon, p[1])
	}
	return minLat, minLon, maxLat, maxLon
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
