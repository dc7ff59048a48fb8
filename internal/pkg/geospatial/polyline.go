package geospatial

import (
	"errors"
	"math"
	"strings"
)

// polylineFactor is the fixed-point scale of the encoded polyline format (1e-5 degrees).
const polylineFactor = 1e5

// ErrMalformedPolyline is returned when an encoded path cannot be decoded completely.
var ErrMalformedPolyline = errors.New("malformed polyline")

// DecodePolyline converts an encoded polyline string into (lat, lon) pairs.
//
// Each point is stored as a latitude delta followed by a longitude delta from
// the previous point, starting at (0, 0). A delta is zig-zag encoded and split
// into 5-bit chunks, least significant first, each offset by 63; a chunk with
// bit 0x20 set is followed by another chunk of the same value.
//
// An empty string decodes to an empty slice. Truncated input, a latitude
// without its longitude, or bytes outside the alphabet return ErrMalformedPolyline.
func DecodePolyline(encoded string) ([][2]float64, error) {
	points := make([][2]float64, 0, len(encoded)/4)
	var lat, lng int64
	index := 0

	for index < len(encoded) {
		dlat, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		if next >= len(encoded) {
			return nil, ErrMalformedPolyline
		}
		dlng, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		index = next

		lat += dlat
		lng += dlng
		points = append(points, [2]float64{float64(lat) / polylineFactor, float64(lng) / polylineFactor})
	}

	return points, nil
}

// decodeValue reads one zig-zag varint starting at index and returns it along
// with the index of the next unread byte.
func decodeValue(encoded string, index int) (int64, int, error) {
	var result int64
	shift := uint(0)
	for {
		if index >= len(encoded) {
			return 0, index, ErrMalformedPolyline
		}
		b := int64(encoded[index]) - 63
		index++
		if b < 0 || b > 0x3f || shift > 60 {
			return 0, index, ErrMalformedPolyline
		}
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}

// EncodePolyline is the inverse of DecodePolyline.
func EncodePolyline(points [][2]float64) string {
	var sb strings.Builder
	var prevLat, prevLng int64
	for _, p := range points {
		lat := int64(math.Round(p[0] * polylineFactor))
		lng := int64(math.Round(p[1] * polylineFactor))
		encodeValue(&sb, lat-prevLat)
		encodeValue(&sb, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return sb.String()
}

func encodeValue(sb *strings.Builder, v int64) {
	u := v << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		sb.WriteByte(byte((0x20 | (u & 0x1f)) + 63))
		u >>= 5
	}
	sb.WriteByte(byte(u + 63))
}
