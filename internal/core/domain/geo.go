package domain

import (
	"fmt"

	"github.com/samirrijal/tunitrip/internal/pkg/geospatial"
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies inside the WGS 84 ranges.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// DistanceKm returns the great-circle distance to q in kilometers.
func (p GeoPoint) DistanceKm(q GeoPoint) float64 {
	return geospatial.HaversineKm(p.Lat, p.Lon, q.Lat, q.Lon)
}

// GeoLineString represents an ordered sequence of geographic coordinates.
// Order is render order.
type GeoLineString struct {
	Coordinates []GeoPoint `json:"coordinates"`
}

// DecodePath decodes an encoded polyline into a line string.
func DecodePath(encoded string) (*GeoLineString, error) {
	pairs, err := geospatial.DecodePolyline(encoded)
	if err != nil {
		return nil, err
	}
	ls := &GeoLineString{Coordinates: make([]GeoPoint, 0, len(pairs))}
	for _, p := range pairs {
		ls.Coordinates = append(ls.Coordinates, GeoPoint{Lat: p[0], Lon: p[1]})
	}
	return ls, nil
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// BoundsOf returns the box enclosing pts, or nil when fewer than two points are given.
func BoundsOf(pts []GeoPoint) *Bounds {
	if len(pts) < 2 {
		return nil
	}
	pairs := make([][2]float64, len(pts))
	for i, p := range pts {
		pairs[i] = [2]float64{p.Lat, p.Lon}
	}
	minLat, minLon, maxLat, maxLon := geospatial.PathBounds(pairs)
	return &Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
}

// LocationPoint is a named coordinate picked by the user, either a gazetteer
// city or a custom point placed on the map.
type LocationPoint struct {
	Name     string   `json:"name"`
	Coords   GeoPoint `json:"coords"`
	IsCustom bool     `json:"is_custom,omitempty"`
}

// CustomLocation names a map-clicked point after its coordinates.
func CustomLocation(p GeoPoint) LocationPoint {
	return LocationPoint{
		Name:     fmt.Sprintf("Tunisia (%.4f, %.4f)", p.Lat, p.Lon),
		Coords:   p,
		IsCustom: true,
	}
}
