// Package routing builds the pipe network: a weighted graph over water
// sources and zone centroids, reduced to a minimum spanning forest in which
// every zone hangs off exactly one source.
package routing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/Adps75/irrigation-editor/pkg/geo"
	"github.com/Adps75/irrigation-editor/pkg/geodesy"
	"github.com/Adps75/irrigation-editor/pkg/validation"
	"github.com/Adps75/irrigation-editor/pkg/zone"
)

// NodeKind tags a network node.
type NodeKind string

const (
	NodeSource NodeKind = "source"
	NodeZone   NodeKind = "zone"
)

// Node is a vertex of the pipe network. Ids are assigned per build: sources
// take 0..S-1 in input order, zones with a centroid follow in input order.
type Node struct {
	id       int64
	Kind     NodeKind
	Index    int // source index or zone index in the request
	Point    geo.Point2D
	Location geo.LatLng
}

// ID implements graph.Node.
func (n Node) ID() int64 {
	return n.id
}

// Source is a water source with its projected position.
type Source struct {
	Index    int
	Location geo.LatLng
	Point    geo.Point2D
}

// NewSources projects water-source coordinates.
func NewSources(p *geodesy.Projector, lls []geo.LatLng) ([]Source, error) {
	out := make([]Source, len(lls))
	for i, ll := range lls {
		pt, err := p.Project(ll)
		if err != nil {
			return nil, fmt.Errorf("water source %d: %w", i, err)
		}
		out[i] = Source{Index: i, Location: ll, Point: pt}
	}
	return out, nil
}

// Edge is an undirected weighted connection. In a Topology's tree edges,
// From is the endpoint nearer the source.
type Edge struct {
	From   int64   `json:"from"`
	To     int64   `json:"to"`
	Weight float64 `json:"weight"`
}

// Options tune graph construction.
type Options struct {
	// AllowZoneLinks adds zone-to-zone candidate edges so a zone may be fed
	// through a neighbouring zone. Off by default: zones connect to sources only.
	AllowZoneLinks bool
}

// Topology is the extracted pipe network.
type Topology struct {
	Nodes []Node
	// Edges are the spanning forest edges, sorted by (To, From).
	Edges []Edge
	// Candidates is the number of edges in the candidate graph.
	Candidates int
	// TotalLength is the sum of Edges weights in meters.
	TotalLength float64
	// Disconnected lists zone indices no source reaches.
	Disconnected []int

	sourceOf map[int64]int64
	byID     map[int64]int
}

// Node returns the node with the given id.
func (t *Topology) Node(id int64) (Node, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Node{}, false
	}
	return t.Nodes[i], true
}

// ZoneNode returns the node of the zone at the given request index.
func (t *Topology) ZoneNode(zoneIndex int) (Node, bool) {
	for _, n := range t.Nodes {
		if n.Kind == NodeZone && n.Index == zoneIndex {
			return n, true
		}
	}
	return Node{}, false
}

// SourceOf returns the source index feeding the zone at zoneIndex.
func (t *Topology) SourceOf(zoneIndex int) (int, bool) {
	n, ok := t.ZoneNode(zoneIndex)
	if !ok {
		return 0, false
	}
	sid, ok := t.sourceOf[n.ID()]
	if !ok {
		return 0, false
	}
	src, _ := t.Node(sid)
	return src.Index, true
}

// ZoneNodeCount returns the number of zone nodes in the graph.
func (t *Topology) ZoneNodeCount() int {
	c := 0
	for _, n := range t.Nodes {
		if n.Kind == NodeZone {
			c++
		}
	}
	return c
}

// Build connects every zone with a centroid to a water source at minimum
// total pipe length. Degenerate zones are skipped. With no sources it returns
// a no_water_source error.
func Build(sources []Source, zones []zone.Geometry, opts Options) (*Topology, error) {
	if len(sources) == 0 {
		return nil, validation.NewError("routing.Build", validation.KindNoWaterSource, nil, nil)
	}

	t := &Topology{
		sourceOf: make(map[int64]int64),
		byID:     make(map[int64]int),
	}
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))

	for _, s := range sources {
		t.addNode(g, Node{Kind: NodeSource, Index: s.Index, Point: s.Point, Location: s.Location})
	}
	var zoneIDs []int64
	for _, z := range zone.WithCentroid(zones) {
		n := t.addNode(g, Node{Kind: NodeZone, Index: z.Index, Point: z.Centroid, Location: z.Location})
		zoneIDs = append(zoneIDs, n.ID())
	}

	for _, zid := range zoneIDs {
		zn := t.Nodes[t.byID[zid]]
		for i := range sources {
			t.addEdge(g, t.Nodes[i], zn)
		}
	}
	if opts.AllowZoneLinks {
		for i, a := range zoneIDs {
			for _, b := range zoneIDs[i+1:] {
				t.addEdge(g, t.Nodes[t.byID[a]], t.Nodes[t.byID[b]])
			}
		}
	}

	t.span(g)
	return t, nil
}

func (t *Topology) addNode(g *simple.WeightedUndirectedGraph, n Node) Node {
	n.id = int64(len(t.Nodes))
	t.byID[n.id] = len(t.Nodes)
	t.Nodes = append(t.Nodes, n)
	g.AddNode(n)
	return n
}

func (t *Topology) addEdge(g *simple.WeightedUndirectedGraph, a, b Node) {
	w := geodesy.PlanarDistance(a.Point, b.Point)
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return
	}
	g.SetWeightedEdge(simple.WeightedEdge{F: a, T: b, W: w})
	t.Candidates++
}

// rootWeight sits below every pipe length so Kruskal joins all sources to the
// virtual root before any real edge, even zero-length ones.
const rootWeight = -1

// span extracts the minimum spanning forest. A virtual root joined to every
// source turns the source-rooted forest into one spanning tree; its edges are
// dropped afterwards.
func (t *Topology) span(g *simple.WeightedUndirectedGraph) {
	root := simple.Node(int64(len(t.Nodes)))
	g.AddNode(root)
	for _, n := range t.Nodes {
		if n.Kind == NodeSource {
			g.SetWeightedEdge(simple.WeightedEdge{F: root, T: n, W: rootWeight})
		}
	}

	tree := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	path.Kruskal(tree, g)

	// Orient tree edges away from the root and record each node's source.
	parent := map[int64]int64{root.ID(): -1}
	queue := []int64{root.ID()}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		neighbors := tree.From(cur)
		var next []int64
		for neighbors.Next() {
			next = append(next, neighbors.Node().ID())
		}
		sort.Slice(next, func(i, j int) bool { return next[i] < next[j] })
		for _, nid := range next {
			if _, seen := parent[nid]; seen {
				continue
			}
			parent[nid] = cur
			queue = append(queue, nid)

			if cur == root.ID() {
				t.sourceOf[nid] = nid
				continue
			}
			t.sourceOf[nid] = t.sourceOf[cur]
			w := tree.WeightedEdge(cur, nid).Weight()
			t.Edges = append(t.Edges, Edge{From: cur, To: nid, Weight: w})
			t.TotalLength += w
		}
	}

	sort.Slice(t.Edges, func(i, j int) bool {
		if t.Edges[i].To != t.Edges[j].To {
			return t.Edges[i].To < t.Edges[j].To
		}
		return t.Edges[i].From < t.Edges[j].From
	})

	for _, n := range t.Nodes {
		if n.Kind != NodeZone {
			continue
		}
		if _, ok := parent[n.ID()]; !ok {
			t.Disconnected = append(t.Disconnected, n.Index)
		}
	}
}

// Report summarises the topology, flagging disconnected zones one by one.
func (t *Topology) Report() *validation.Report {
	r := validation.NewReport()
	for _, zi := range t.Disconnected {
		r.AddError(validation.Result{
			Level:     validation.LevelNetwork,
			Kind:      validation.KindDisconnectedZone,
			Message:   fmt.Sprintf("zones[%d] cannot reach any water source", zi),
			SpecPath:  fmt.Sprintf("zones[%d]", zi),
			ZoneIndex: validation.Zone(zi),
		})
	}
	r.AddInfo(validation.Result{
		Level: validation.LevelNetwork,
		Message: fmt.Sprintf("pipe network: %d nodes, %d candidate edges, %d pipes, %.1f m total",
			len(t.Nodes), t.Candidates, len(t.Edges), t.TotalLength),
	})
	return r
}
