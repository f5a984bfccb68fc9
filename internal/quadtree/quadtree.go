// Package quadtree implements a recursive bounding-box spatial index over
// road-segment geofence corridors. It supports a single point query that
// returns every edge whose corridor bounding box may contain the point,
// leaving the exact distance test to the caller.
//
// Construction is grounded on the teacher's grid-based nearest-road index
// (pkg/routing/snap.go): a flat index built once over read-only edges,
// queried many times concurrently without locking. The quadtree
// generalizes that grid to recursive subdivision so query cost degrades
// gracefully with uneven edge density instead of depending on a fixed
// cell size tuned for one deployment.
package quadtree

import (
	"github.com/azybler/bsm-filter/internal/geo"
	"github.com/azybler/bsm-filter/internal/roadmap"
)

// Defaults for the split heuristic. Implementation knobs, not observable
// outside this package.
const (
	DefaultMaxLeaf  = 32
	DefaultMaxDepth = 20

	// minNodeSideDeg bounds how small a node's bbox may get before it
	// refuses to split further, regardless of leaf size. Prevents
	// pathological splitting around a cluster of coincident corridors.
	minNodeSideDeg = 1e-6
)

// Quad is a quadtree spatial index over road-segment corridors. Built
// once at startup from the complete edge set and read-only for the
// remainder of the process; queries require no synchronization.
type Quad struct {
	root          *node
	boxExtensionM float64
	maxLeaf       int
	maxDepth      int
}

type node struct {
	bbox     geo.BBox
	children [4]*node // nil for a leaf
	edges    []roadmap.Edge
	depth    int
}

func (n *node) isLeaf() bool {
	return n.children[0] == nil
}

// Option configures a Quad at construction.
type Option func(*Quad)

// WithMaxLeaf overrides the default leaf capacity before splitting.
func WithMaxLeaf(n int) Option {
	return func(q *Quad) { q.maxLeaf = n }
}

// WithMaxDepth overrides the default maximum tree depth.
func WithMaxDepth(n int) Option {
	return func(q *Quad) { q.maxDepth = n }
}

// New creates an empty quadtree over the given envelope. boxExtensionM is
// the global corridor padding (spec.md's box_extension_m) applied to
// every edge's corridor when computing bounding boxes and containment.
func New(envelope geo.BBox, boxExtensionM float64, opts ...Option) *Quad {
	q := &Quad{
		root:          &node{bbox: envelope, depth: 0},
		boxExtensionM: boxExtensionM,
		maxLeaf:       DefaultMaxLeaf,
		maxDepth:      DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Insert adds e to the tree, descending into every node whose bbox
// intersects e's corridor bbox and, at a leaf, appending e to its edge
// list (and splitting the leaf once that append takes it past the leaf
// capacity).
func (q *Quad) Insert(e roadmap.Edge) {
	corridor := e.CorridorBBox(q.boxExtensionM)
	q.insert(q.root, e, corridor)
}

func (q *Quad) insert(n *node, e roadmap.Edge, corridor geo.BBox) {
	if !n.bbox.Intersects(corridor) {
		return
	}

	if !n.isLeaf() {
		for _, child := range n.children {
			q.insert(child, e, corridor)
		}
		return
	}

	n.edges = append(n.edges, e)

	if len(n.edges) > q.maxLeaf && n.depth < q.maxDepth && nodeSplittable(n.bbox) {
		q.split(n)
	}
}

func nodeSplittable(b geo.BBox) bool {
	return (b.NE.Lat-b.SW.Lat) > minNodeSideDeg && (b.NE.Lon-b.SW.Lon) > minNodeSideDeg
}

// split partitions n's bbox into four equal quadrants in canonical
// (lat, lon) order — SW, SE, NW, NE — creates four child leaves, and
// redistributes every edge currently in n into each child whose bbox
// intersects that edge's corridor bbox. An edge may end up in more than
// one child; this is intentional (design notes, spec.md §9): it keeps a
// point query a single root-to-leaf descent instead of a sibling fan-out.
func (q *Quad) split(n *node) {
	mid := n.bbox.Center()

	sw := geo.BBox{SW: n.bbox.SW, NE: mid}
	se := geo.BBox{SW: geo.Point{Lat: n.bbox.SW.Lat, Lon: mid.Lon}, NE: geo.Point{Lat: mid.Lat, Lon: n.bbox.NE.Lon}}
	nw := geo.BBox{SW: geo.Point{Lat: mid.Lat, Lon: n.bbox.SW.Lon}, NE: geo.Point{Lat: n.bbox.NE.Lat, Lon: mid.Lon}}
	ne := geo.BBox{SW: mid, NE: n.bbox.NE}

	n.children = [4]*node{
		{bbox: sw, depth: n.depth + 1},
		{bbox: se, depth: n.depth + 1},
		{bbox: nw, depth: n.depth + 1},
		{bbox: ne, depth: n.depth + 1},
	}

	existing := n.edges
	n.edges = nil

	for _, e := range existing {
		corridor := e.CorridorBBox(q.boxExtensionM)
		for _, child := range n.children {
			if child.bbox.Intersects(corridor) {
				child.edges = append(child.edges, e)
				if len(child.edges) > q.maxLeaf && child.depth < q.maxDepth && nodeSplittable(child.bbox) {
					q.split(child)
				}
			}
		}
	}
}

// Query descends into the unique child whose bbox contains p and returns
// its edge list: every candidate edge whose corridor bounding box may
// contain p. The caller applies the exact perpendicular-distance test
// (roadmap.Edge.Contains). A point lies in exactly one leaf, so the
// result contains no duplicates for a single query.
func (q *Quad) Query(p geo.Point) []roadmap.Edge {
	n := q.root
	if !n.bbox.Contains(p) {
		return nil
	}
	for !n.isLeaf() {
		for _, child := range n.children {
			if child.bbox.Contains(p) {
				n = child
				break
			}
		}
	}
	return n.edges
}

// BoxExtensionM returns the corridor padding this tree was built with.
func (q *Quad) BoxExtensionM() float64 {
	return q.boxExtensionM
}
