package mapfile

import (
	"testing"

	"github.com/paulmach/osm"
)

func TestIsRoadWay(t *testing.T) {
	tests := []struct {
		name string
		tags osm.Tags
		want bool
	}{
		{"residential road", osm.Tags{{Key: "highway", Value: "residential"}}, true},
		{"motorway", osm.Tags{{Key: "highway", Value: "motorway"}}, true},
		{"footway (not a road)", osm.Tags{{Key: "highway", Value: "footway"}}, false},
		{"no highway tag", osm.Tags{}, false},
		{
			"area plaza excluded",
			osm.Tags{{Key: "highway", Value: "residential"}, {Key: "area", Value: "yes"}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRoadWay(tt.tags); got != tt.want {
				t.Errorf("isRoadWay(%v) = %v, want %v", tt.tags, got, tt.want)
			}
		})
	}
}

func TestParseMeters(t *testing.T) {
	v, err := parseMeters("7.5")
	if err != nil || v != 7.5 {
		t.Errorf("parseMeters(7.5) = (%f, %v), want (7.5, nil)", v, err)
	}
	if _, err := parseMeters("not-a-number"); err == nil {
		t.Error("expected error parsing non-numeric width tag")
	}
}
