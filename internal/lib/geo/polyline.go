package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedPolyline is returned when an encoded polyline cannot be
// decoded: the input ends in the middle of a codeword, contains a byte
// outside the encoding alphabet, or encodes a delta that overflows the
// 1e-5 fixed-point representation.
var ErrMalformedPolyline = errors.New("malformed polyline")

const polylineScale = 1e5

// DecodePolyline decodes a Google encoded polyline string into a point
// sequence. Deltas are accumulated onto a running latitude and longitude
// starting from (0, 0), so output order is the path's traversal order.
// An empty string decodes to an empty path.
func DecodePolyline(encoded string) ([]Point, error) {
	var points []Point
	var lat, lng int64

	for i := 0; i < len(encoded); {
		dlat, n, err := decodeDelta(encoded[i:])
		if err != nil {
			return nil, fmt.Errorf("%w: latitude at offset %d: %v", ErrMalformedPolyline, i, err)
		}
		i += n

		dlng, n, err := decodeDelta(encoded[i:])
		if err != nil {
			return nil, fmt.Errorf("%w: longitude at offset %d: %v", ErrMalformedPolyline, i, err)
		}
		i += n

		lat += dlat
		lng += dlng

		p := Point{
			Latitude:  float64(lat) / polylineScale,
			Longitude: float64(lng) / polylineScale,
		}
		if !p.Valid() {
			return nil, fmt.Errorf("%w: coordinate out of range at offset %d", ErrMalformedPolyline, i)
		}
		points = append(points, p)
	}

	return points, nil
}

// decodeDelta reads one varint codeword: continuation-flagged 5-bit groups,
// least significant group first, followed by zig-zag decoding. Returns the
// signed delta and the number of bytes consumed.
func decodeDelta(s string) (int64, int, error) {
	var result int64
	var shift uint
	i := 0

	for {
		if i >= len(s) {
			return 0, 0, errors.New("input ends mid-codeword")
		}
		c := s[i]
		if c < 63 || c > 126 {
			return 0, 0, fmt.Errorf("invalid byte %q", c)
		}
		i++

		b := int64(c) - 63
		result |= (b & 0x1f) << shift
		if b < 0x20 {
			break
		}
		shift += 5
		// Six 5-bit groups cover every legal delta at 1e-5 precision.
		if shift > 30 {
			return 0, 0, errors.New("delta overflows fixed-point range")
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), i, nil
	}
	return result >> 1, i, nil
}

// EncodePolyline encodes a point sequence using the same delta + zig-zag +
// base32 scheme DecodePolyline consumes.
func EncodePolyline(points []Point) string {
	var buf []byte
	var prevLat, prevLng int64

	for _, p := range points {
		lat := int64(math.Round(p.Latitude * polylineScale))
		lng := int64(math.Round(p.Longitude * polylineScale))
		buf = appendDelta(buf, lat-prevLat)
		buf = appendDelta(buf, lng-prevLng)
		prevLat, prevLng = lat, lng
	}

	return string(buf)
}

func appendDelta(buf []byte, v int64) []byte {
	u := uint64(v) << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		buf = append(buf, byte(0x20|(u&0x1f))+63)
		u >>= 5
	}
	return append(buf, byte(u)+63)
}
