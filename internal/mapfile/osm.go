// Package mapfile loads road-segment map files into the []roadmap.Edge
// records the quadtree builder consumes. Two loaders are provided: an
// OSM PBF loader (LoadOSM, adapted from the teacher's two-pass parser)
// and a GeoJSON loader (LoadGeoJSON) for deployments that ship
// pre-extracted geofence corridors instead of raw OSM extracts.
package mapfile

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"github.com/azybler/bsm-filter/internal/geo"
	"github.com/azybler/bsm-filter/internal/roadmap"
)

// defaultWidthByWayType approximates a typical carriageway width in
// meters when the map source carries no explicit width tag. These are
// corridor defaults for privacy padding, not engineering measurements.
var defaultWidthByWayType = map[roadmap.WayType]float64{
	roadmap.WayMotorway:     24,
	roadmap.WayTrunk:        18,
	roadmap.WayPrimary:      14,
	roadmap.WaySecondary:    12,
	roadmap.WayTertiary:     9,
	roadmap.WayResidential:  7,
	roadmap.WayService:      5,
	roadmap.WayLivingStreet: 5,
	roadmap.WayUnclassified: 7,
	roadmap.WayUnknown:      6,
}

// osmHighwayTags lists the highway tag values recognized as road edges,
// mirroring the teacher's carHighways closed set.
var osmHighwayTags = map[string]bool{
	"motorway": true, "motorway_link": true,
	"trunk": true, "trunk_link": true,
	"primary": true, "primary_link": true,
	"secondary": true, "secondary_link": true,
	"tertiary": true, "tertiary_link": true,
	"unclassified": true, "residential": true,
	"living_street": true, "service": true,
}

func isRoadWay(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if !osmHighwayTags[hw] {
		return false
	}
	if tags.Find("area") == "yes" {
		return false
	}
	return true
}

// LoadOSM reads an OSM PBF file and returns one roadmap.Edge per way
// segment (consecutive node pair). The reader is consumed twice (seeks
// back to start for the second pass), mirroring the teacher's two-pass
// strategy: pass 1 collects referenced node IDs from ways of interest,
// pass 2 collects coordinates only for those nodes, avoiding the memory
// cost of loading every node in a large extract.
func LoadOSM(ctx context.Context, rs io.ReadSeeker) ([]roadmap.Edge, error) {
	type wayInfo struct {
		nodeIDs []osm.NodeID
		wayType roadmap.WayType
		widthM  float64
	}

	referenced := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok || !isRoadWay(w.Tags) || len(w.Nodes) < 2 {
			continue
		}

		wayType := roadmap.ParseWayType(w.Tags.Find("highway"))
		width := defaultWidthByWayType[wayType]
		if wtag := w.Tags.Find("width"); wtag != "" {
			if parsed, err := parseMeters(wtag); err == nil && parsed > 0 {
				width = parsed
			}
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referenced[wn.ID] = struct{}{}
		}
		ways = append(ways, wayInfo{nodeIDs: nodeIDs, wayType: wayType, widthM: width})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("mapfile: osm pass 1 (ways): %w", err)
	}
	scanner.Close()
	log.Printf("mapfile: pass 1 complete: %d road ways, %d referenced nodes", len(ways), len(referenced))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("mapfile: seek for pass 2: %w", err)
	}

	nodePos := make(map[osm.NodeID]geo.Point, len(referenced))
	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referenced[n.ID]; !needed {
			continue
		}
		nodePos[n.ID] = geo.Point{Lat: n.Lat, Lon: n.Lon}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("mapfile: osm pass 2 (nodes): %w", err)
	}
	scanner.Close()
	log.Printf("mapfile: pass 2 complete: %d node coordinates collected", len(nodePos))

	var edges []roadmap.Edge
	var nextID uint64
	var skipped int

	for _, w := range ways {
		for i := 0; i < len(w.nodeIDs)-1; i++ {
			a, aok := nodePos[w.nodeIDs[i]]
			b, bok := nodePos[w.nodeIDs[i+1]]
			if !aok || !bok || a == b {
				skipped++
				continue
			}
			edges = append(edges, roadmap.Edge{
				ID:      nextID,
				A:       a,
				B:       b,
				WayType: w.wayType,
				WidthM:  w.widthM,
			})
			nextID++
		}
	}
	if skipped > 0 {
		log.Printf("mapfile: skipped %d degenerate or unresolved segments", skipped)
	}
	log.Printf("mapfile: built %d road-segment edges", len(edges))

	return edges, nil
}

func parseMeters(tag string) (float64, error) {
	var v float64
	_, err := fmt.Sscanf(tag, "%f", &v)
	return v, err
}
