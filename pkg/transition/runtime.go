package transition

import "github.com/azybler/mapmatch/pkg/graph"

// Runtime is the access filter applied by PredicateCache when expanding
// the bounded Dijkstra: a successor edge is only followed if Runtime
// allows travel along it in its direction. Caches may be reused across
// solves on the same graph only while the Runtime does not change — a
// different vehicle profile must use a differently scoped cache.
type Runtime interface {
	Allowed(meta graph.EdgeMetadata, dir graph.Direction) bool
}

// CarRuntime is the default Runtime: a private car, which simply honors
// the edge's own direction-aware access metadata.
type CarRuntime struct{}

func (CarRuntime) Allowed(meta graph.EdgeMetadata, dir graph.Direction) bool {
	return meta.Accessible(dir)
}
