package geo

import "testing"

func TestBBoxContains(t *testing.T) {
	b := BBox{SW: Point{Lat: 0, Lon: 0}, NE: Point{Lat: 10, Lon: 10}}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"center", Point{5, 5}, true},
		{"on sw boundary", Point{0, 0}, true},
		{"on ne boundary", Point{10, 10}, true},
		{"outside", Point{11, 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestBBoxIntersects(t *testing.T) {
	b := BBox{SW: Point{Lat: 0, Lon: 0}, NE: Point{Lat: 10, Lon: 10}}
	overlapping := BBox{SW: Point{Lat: 5, Lon: 5}, NE: Point{Lat: 15, Lon: 15}}
	disjoint := BBox{SW: Point{Lat: 20, Lon: 20}, NE: Point{Lat: 30, Lon: 30}}
	touching := BBox{SW: Point{Lat: 10, Lon: 10}, NE: Point{Lat: 20, Lon: 20}}

	if !b.Intersects(overlapping) {
		t.Error("expected overlapping boxes to intersect")
	}
	if b.Intersects(disjoint) {
		t.Error("expected disjoint boxes not to intersect")
	}
	if !b.Intersects(touching) {
		t.Error("expected boxes sharing a corner to intersect")
	}
}

func TestBBoxPadMeters(t *testing.T) {
	b := BBox{SW: Point{Lat: 35.0, Lon: -84.0}, NE: Point{Lat: 35.001, Lon: -84.0}}
	padded := b.PadMeters(10)

	if !padded.Valid() {
		t.Fatal("padded box is not valid")
	}
	if padded.SW.Lat >= b.SW.Lat || padded.NE.Lat <= b.NE.Lat {
		t.Error("padded box does not strictly contain original in latitude")
	}
	if padded.SW.Lon >= b.SW.Lon || padded.NE.Lon <= b.NE.Lon {
		t.Error("padded box does not strictly contain original in longitude")
	}

	if zero := b.PadMeters(0); zero != b {
		t.Errorf("PadMeters(0) = %v, want unchanged %v", zero, b)
	}
}
