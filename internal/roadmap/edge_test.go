package roadmap

import (
	"testing"

	"github.com/azybler/bsm-filter/internal/geo"
)

func testEdge() Edge {
	return Edge{
		ID:      1,
		A:       geo.Point{Lat: 35.000, Lon: -84.000},
		B:       geo.Point{Lat: 35.001, Lon: -84.000},
		WayType: WayResidential,
		WidthM:  10,
	}
}

func TestEdgeValidate(t *testing.T) {
	e := testEdge()
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	coincident := e
	coincident.B = coincident.A
	if err := coincident.Validate(); err == nil {
		t.Error("expected error for coincident endpoints")
	}

	zeroWidth := e
	zeroWidth.WidthM = 0
	if err := zeroWidth.Validate(); err == nil {
		t.Error("expected error for non-positive width")
	}
}

func TestEdgeContainsBoundary(t *testing.T) {
	e := testEdge()
	const ext = 5.0
	halfWidth := e.HalfWidth(ext)

	mid := geo.Point{Lat: 35.0005, Lon: -84.000}
	degOffset := halfWidth / 111_195.0 // approx meters-per-degree latitude

	// Offset eastward by halfWidth expressed in latitude degrees. A degree
	// of longitude is shorter than a degree of latitude here, so this point
	// lies just inside the half-width and the doubled offset lies outside
	// it; assert containment on each side.
	onBoundary := geo.Point{Lat: mid.Lat, Lon: mid.Lon + degOffset}
	dist := e.DistanceTo(onBoundary)
	if dist > halfWidth*1.05 {
		t.Fatalf("test setup: computed distance %f too far past half-width %f", dist, halfWidth)
	}
	if dist <= halfWidth && !e.Contains(onBoundary, ext) {
		t.Error("point with distance <= half-width must be contained")
	}

	beyond := geo.Point{Lat: mid.Lat, Lon: mid.Lon + degOffset*2}
	if e.DistanceTo(beyond) > halfWidth && e.Contains(beyond, ext) {
		t.Error("point with distance > half-width must not be contained")
	}
}

func TestWayTypeRoundTrip(t *testing.T) {
	for _, name := range []string{"motorway", "residential", "service", "unclassified"} {
		wt := ParseWayType(name)
		if wt.String() != name {
			t.Errorf("ParseWayType(%q).String() = %q, want %q", name, wt.String(), name)
		}
	}
	if ParseWayType("not-a-real-tag") != WayUnknown {
		t.Error("expected unrecognized tag to map to WayUnknown")
	}
}

func TestCorridorBBoxContainsSegment(t *testing.T) {
	e := testEdge()
	bbox := e.CorridorBBox(5)
	if !bbox.Contains(e.A) || !bbox.Contains(e.B) {
		t.Error("corridor bbox must contain both endpoints")
	}
}
