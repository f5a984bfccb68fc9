// Package roadmap defines the road-segment model: typed edges with a
// classification tag and a per-edge geofence corridor.
package roadmap

import (
	"fmt"

	"github.com/azybler/bsm-filter/internal/geo"
)

// WayType classifies a road edge. The set is closed and derived from the
// OSM "highway" tag vocabulary the map loader recognizes.
type WayType uint8

const (
	WayUnknown WayType = iota
	WayMotorway
	WayTrunk
	WayPrimary
	WaySecondary
	WayTertiary
	WayResidential
	WayService
	WayLivingStreet
	WayUnclassified
)

var wayTypeNames = map[WayType]string{
	WayUnknown:      "unknown",
	WayMotorway:     "motorway",
	WayTrunk:        "trunk",
	WayPrimary:      "primary",
	WaySecondary:    "secondary",
	WayTertiary:     "tertiary",
	WayResidential:  "residential",
	WayService:      "service",
	WayLivingStreet: "living_street",
	WayUnclassified: "unclassified",
}

var wayTypeByName = func() map[string]WayType {
	m := make(map[string]WayType, len(wayTypeNames))
	for k, v := range wayTypeNames {
		m[v] = k
	}
	return m
}()

// String returns the canonical lowercase tag for t.
func (t WayType) String() string {
	if name, ok := wayTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseWayType resolves a tag string to a WayType, or WayUnknown if it is
// not part of the recognized closed set.
func ParseWayType(tag string) WayType {
	if t, ok := wayTypeByName[tag]; ok {
		return t
	}
	return WayUnknown
}

// Edge is a directed-or-undirected road segment used only for its
// geofence corridor; the filter does not care about traversal direction.
type Edge struct {
	ID      uint64
	A, B    geo.Point
	WayType WayType
	WidthM  float64 // corridor width, must be positive
}

// Validate reports whether e satisfies the data-model invariants:
// endpoints distinct, width positive.
func (e Edge) Validate() error {
	if e.A == e.B {
		return fmt.Errorf("roadmap: edge %d has coincident endpoints", e.ID)
	}
	if e.WidthM <= 0 {
		return fmt.Errorf("roadmap: edge %d has non-positive width %f", e.ID, e.WidthM)
	}
	return nil
}

// HalfWidth returns the effective corridor half-width for e, given the
// global box-extension padding applied uniformly to every edge.
func (e Edge) HalfWidth(boxExtensionM float64) float64 {
	return e.WidthM/2 + boxExtensionM
}

// DistanceTo returns the perpendicular distance in meters from p to e's
// segment.
func (e Edge) DistanceTo(p geo.Point) float64 {
	return geo.DistanceToSegment(p, e.A, e.B)
}

// CorridorBBox returns the axis-aligned box that strictly contains e's
// geofence corridor: the segment's own bounding box padded by the
// effective half-width.
func (e Edge) CorridorBBox(boxExtensionM float64) geo.BBox {
	swLat, neLat := e.A.Lat, e.B.Lat
	if swLat > neLat {
		swLat, neLat = neLat, swLat
	}
	swLon, neLon := e.A.Lon, e.B.Lon
	if swLon > neLon {
		swLon, neLon = neLon, swLon
	}
	bbox := geo.BBox{SW: geo.Point{Lat: swLat, Lon: swLon}, NE: geo.Point{Lat: neLat, Lon: neLon}}
	return bbox.PadMeters(e.HalfWidth(boxExtensionM))
}

// Contains reports whether p lies within e's corridor: its perpendicular
// distance to the segment is at most the effective half-width. The
// boundary is inclusive (spec: "≤, not <").
func (e Edge) Contains(p geo.Point, boxExtensionM float64) bool {
	return e.DistanceTo(p) <= e.HalfWidth(boxExtensionM)
}
