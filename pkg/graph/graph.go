// Package graph implements RoutingGraph: a directed multigraph of road
// nodes and direction-aware edges, indexed for spatial search by a pair of
// R-trees (one over nodes, one over edge envelopes) layered over a
// CSR-style adjacency array.
package graph

import (
	"github.com/azybler/mapmatch/pkg/osmsrc"
	"github.com/tidwall/rtree"
)

// NodeID is an opaque, totally ordered, hashable node identifier. It
// encodes the source OSM node id directly; NullNodeID is the distinguished
// "no node" sentinel used by synthetic candidates and failed lookups.
type NodeID int64

// NullNodeID is the distinguished null sentinel for NodeID.
const NullNodeID NodeID = -1

// Direction marks which way an edge runs relative to its way's node list.
type Direction uint8

const (
	Forward Direction = iota
	Backward
)

// EdgeID direction-aware identifies an edge. BaseID is shared between the
// forward and backward edge produced from the same node pair of a
// bidirectional way; EdgeMetadata is keyed by BaseID.
type EdgeID struct {
	BaseID NodeID
	Dir    Direction
}

// Node is an immutable graph vertex.
type Node struct {
	ID       NodeID
	Lat, Lon float64
}

// Edge is a directed, weighted arc. Weight is a dimensionless road-class
// preference (1..100, smaller = preferred) — not a physical distance.
type Edge struct {
	Source, Target NodeID
	Weight         uint32
	ID             EdgeID
}

// EdgeMetadata holds the routing-relevant tag data shared by every edge
// with the same base id.
type EdgeMetadata struct {
	LaneCount  uint8
	SpeedLimit uint16
	Access     osmsrc.Access
	RoadClass  osmsrc.RoadClass
}

// Accessible reports whether travel in dir is permitted under this metadata.
func (m EdgeMetadata) Accessible(dir Direction) bool {
	return m.Access.Allows(osmsrc.Direction(dir))
}

// Graph is the RoutingGraph: a read-only-after-construction directed
// multigraph with CSR adjacency, a node hash index, and dual R-tree spatial
// indices over nodes and edges.
type Graph struct {
	nodeID []NodeID          // CSR index -> NodeID
	index  map[NodeID]uint32 // NodeID -> CSR index (the hash index of the data model)
	lat    []float64
	lon    []float64

	firstOut []uint32 // CSR row pointers, len = numNodes+1
	edges    []Edge   // CSR-ordered, len = numEdges

	metadata map[NodeID]EdgeMetadata // keyed by base_id

	nodeTree rtree.RTreeG[uint32] // stores CSR node index
	edgeTree rtree.RTreeG[uint32] // stores CSR edge index (into edges)
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() uint32 { return uint32(len(g.nodeID)) }

// NumEdges returns the number of edges in the graph.
func (g *Graph) NumEdges() uint32 { return uint32(len(g.edges)) }

// EdgesFrom returns the half-open range of edge indices whose source is
// the node at CSR index u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.firstOut[u], g.firstOut[u+1]
}

// NodeAt returns the Node at the given CSR index.
func (g *Graph) NodeAt(idx uint32) Node {
	return Node{ID: g.nodeID[idx], Lat: g.lat[idx], Lon: g.lon[idx]}
}

// Index returns the CSR index of id, and whether id is present.
func (g *Graph) Index(id NodeID) (uint32, bool) {
	idx, ok := g.index[id]
	return idx, ok
}

// NodeByID looks up a Node by its NodeID via the hash index.
func (g *Graph) NodeByID(id NodeID) (Node, bool) {
	idx, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.NodeAt(idx), true
}

// EdgeAt returns the Edge at the given global edge index.
func (g *Graph) EdgeAt(e uint32) Edge { return g.edges[e] }

// EdgeBetween returns the Edge from u to v, if one exists in the CSR
// adjacency. Used by the transition solver to materialize map edges along
// a reconstructed node path.
func (g *Graph) EdgeBetween(u, v NodeID) (Edge, bool) {
	ui, ok := g.index[u]
	if !ok {
		return Edge{}, false
	}
	start, end := g.EdgesFrom(ui)
	for e := start; e < end; e++ {
		if g.edges[e].Target == v {
			return g.edges[e], true
		}
	}
	return Edge{}, false
}

// Metadata returns the EdgeMetadata keyed by baseID, and whether it exists.
func (g *Graph) Metadata(baseID NodeID) (EdgeMetadata, bool) {
	m, ok := g.metadata[baseID]
	return m, ok
}
