package geo

import "math"

func cosDeg(deg float64) float64 {
	return math.Abs(math.Cos(deg * math.Pi / 180))
}

// BBox is an axis-aligned bounding box, SW (lower-left) to NE (upper-right).
type BBox struct {
	SW Point
	NE Point
}

// Valid reports whether b is well-formed and non-empty.
func (b BBox) Valid() bool {
	return b.SW.Lat <= b.NE.Lat && b.SW.Lon <= b.NE.Lon
}

// Contains reports whether p lies within b, inclusive of the boundary.
func (b BBox) Contains(p Point) bool {
	return p.Lat >= b.SW.Lat && p.Lat <= b.NE.Lat &&
		p.Lon >= b.SW.Lon && p.Lon <= b.NE.Lon
}

// Intersects reports whether b and other share any point.
func (b BBox) Intersects(other BBox) bool {
	if b.NE.Lat < other.SW.Lat || b.SW.Lat > other.NE.Lat {
		return false
	}
	if b.NE.Lon < other.SW.Lon || b.SW.Lon > other.NE.Lon {
		return false
	}
	return true
}

// Center returns the midpoint of b.
func (b BBox) Center() Point {
	return Point{
		Lat: (b.SW.Lat + b.NE.Lat) / 2,
		Lon: (b.SW.Lon + b.NE.Lon) / 2,
	}
}

// metersPerDegreeLat is constant across latitudes; longitude degrees shrink
// with cos(lat), so PadMeters converts its longitude pad at the box's own
// latitude rather than relying on a fixed ratio.
const metersPerDegreeLat = earthRadiusMeters * 3.141592653589793 / 180

// PadMeters returns b expanded by pad meters on every side. The longitude
// pad is widened by 1/cos(lat) evaluated at the box's center latitude, so
// it is exact at that latitude and approximate elsewhere within b.
func (b BBox) PadMeters(pad float64) BBox {
	if pad <= 0 {
		return b
	}
	center := b.Center()
	cosLat := cosDeg(center.Lat)
	if cosLat < 0.01 {
		cosLat = 0.01 // guard near the poles; not a realistic road deployment
	}
	dLat := pad / metersPerDegreeLat
	dLon := pad / (metersPerDegreeLat * cosLat)
	return BBox{
		SW: Point{Lat: b.SW.Lat - dLat, Lon: b.SW.Lon - dLon},
		NE: Point{Lat: b.NE.Lat + dLat, Lon: b.NE.Lon + dLon},
	}
}
