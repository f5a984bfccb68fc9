package mapfile

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/azybler/bsm-filter/internal/geo"
	"github.com/azybler/bsm-filter/internal/roadmap"
)

// LoadGeoJSON parses a GeoJSON FeatureCollection of LineString features
// into road-segment edges, for deployments that distribute pre-extracted
// geofence corridors rather than raw OSM extracts. Each feature is split
// into one Edge per consecutive coordinate pair. Recognized properties:
// "highway" (way-type tag) and "width_m" (corridor width in meters,
// falls back to the way type's default when absent or non-positive).
func LoadGeoJSON(data []byte) ([]roadmap.Edge, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("mapfile: parsing geojson: %w", err)
	}

	var edges []roadmap.Edge
	var nextID uint64

	for _, feature := range fc.Features {
		line, ok := feature.Geometry.(orb.LineString)
		if !ok {
			continue
		}
		if len(line) < 2 {
			continue
		}

		wayType := roadmap.ParseWayType(stringProp(feature.Properties, "highway"))
		width := defaultWidthByWayType[wayType]
		if w, ok := numberProp(feature.Properties, "width_m"); ok && w > 0 {
			width = w
		}

		for i := 0; i < len(line)-1; i++ {
			a := geo.Point{Lat: line[i][1], Lon: line[i][0]}
			b := geo.Point{Lat: line[i+1][1], Lon: line[i+1][0]}
			if a == b {
				continue
			}
			edges = append(edges, roadmap.Edge{
				ID:      nextID,
				A:       a,
				B:       b,
				WayType: wayType,
				WidthM:  width,
			})
			nextID++
		}
	}

	return edges, nil
}

func stringProp(props geojson.Properties, key string) string {
	v, ok := props[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func numberProp(props geojson.Properties, key string) (float64, bool) {
	v, ok := props[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
