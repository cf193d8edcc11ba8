package transition

import "sync"

// candidateEdge is a zero-cost placeholder wired by AttachEnds/Weave. It
// stores no weight — the solver computes real transition cost on demand
// in reach() — it exists purely so A* can discover successors via the
// graph.
type candidateEdge struct {
	target CandidateID
}

// CandidateGraph is the layered DAG of candidates connected between
// consecutive layers. It is exclusively owned by one solve and handed
// on to the CollapsedPath that solve returns.
type CandidateGraph struct {
	mu sync.RWMutex

	emission []uint32 // CandidateID -> emission cost; unused for synthetic ends
	isEnd    []bool   // true for the two synthetic start/end nodes
	adj      map[CandidateID][]candidateEdge

	lookupMu sync.Mutex
	lookup   map[CandidateID]Candidate

	ends *[2]CandidateID // (start, end), set once by AttachEnds
}

// NewCandidateGraph returns an empty CandidateGraph, ready to be
// populated by a LayerGenerator.
func NewCandidateGraph() *CandidateGraph {
	return &CandidateGraph{
		adj:    make(map[CandidateID][]candidateEdge),
		lookup: make(map[CandidateID]Candidate),
	}
}

// AddCandidate appends a candidate node carrying its emission cost and
// records it in the flyweight lookup. Returns the new CandidateID.
func (g *CandidateGraph) AddCandidate(c Candidate) CandidateID {
	g.mu.Lock()
	id := CandidateID(len(g.emission))
	g.emission = append(g.emission, c.Emission)
	g.isEnd = append(g.isEnd, false)
	g.mu.Unlock()

	g.lookupMu.Lock()
	g.lookup[id] = c
	g.lookupMu.Unlock()

	return id
}

func (g *CandidateGraph) addEnd() CandidateID {
	id := CandidateID(len(g.emission))
	g.emission = append(g.emission, 0)
	g.isEnd = append(g.isEnd, true)
	return id
}

func (g *CandidateGraph) addEdgeLocked(a, b CandidateID) {
	g.adj[a] = append(g.adj[a], candidateEdge{target: b})
}

// AttachEnds inserts two synthetic candidates, START and END, and wires
// zero-cost edges START -> every candidate in the first layer, and every
// candidate in the last layer -> END. Fails if called twice or if there
// are no layers at all. An empty first or last layer is not an error
// here: it simply gets no edges, leaving END unreachable.
func (g *CandidateGraph) AttachEnds(layers []Layer) (start, end CandidateID, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ends != nil {
		return 0, 0, &EndAttachFailure{Reason: ErrEndsAlreadyAttached}
	}
	if len(layers) == 0 {
		return 0, 0, &EndAttachFailure{Reason: ErrLayerMissing}
	}

	start = g.addEnd()
	end = g.addEnd()

	first := layers[0]
	last := layers[len(layers)-1]

	for _, node := range first.Nodes {
		g.addEdgeLocked(start, node)
	}
	for _, node := range last.Nodes {
		g.addEdgeLocked(node, end)
	}

	ends := [2]CandidateID{start, end}
	g.ends = &ends
	return start, end, nil
}

// Weave adds zero-cost placeholder "reachability slot" edges from every
// candidate in layer i to every candidate in layer i+1, for every
// consecutive pair of layers.
func (g *CandidateGraph) Weave(layers []Layer) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := 0; i+1 < len(layers); i++ {
		a, b := layers[i], layers[i+1]
		for _, na := range a.Nodes {
			for _, nb := range b.Nodes {
				g.addEdgeLocked(na, nb)
			}
		}
	}
}

// Successors returns the raw candidate successors of source written by
// AttachEnds/Weave.
func (g *CandidateGraph) Successors(source CandidateID) []CandidateID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := g.adj[source]
	out := make([]CandidateID, len(edges))
	for i, e := range edges {
		out[i] = e.target
	}
	return out
}

// Emission returns the emission cost of a candidate node (0 for the
// synthetic ends).
func (g *CandidateGraph) Emission(id CandidateID) uint32 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if int(id) >= len(g.emission) {
		return 0
	}
	return g.emission[id]
}

// Candidate returns the Candidate flyweight for id, if it is not a
// synthetic end.
func (g *CandidateGraph) Candidate(id CandidateID) (Candidate, bool) {
	g.lookupMu.Lock()
	defer g.lookupMu.Unlock()
	c, ok := g.lookup[id]
	return c, ok
}

// Ends returns the (start, end) pair, if AttachEnds has run.
func (g *CandidateGraph) Ends() (start, end CandidateID, ok bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.ends == nil {
		return 0, 0, false
	}
	return g.ends[0], g.ends[1], true
}
