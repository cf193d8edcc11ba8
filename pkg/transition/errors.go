// Package transition implements the Hidden-Markov-Model matching core:
// candidate generation, the layered candidate DAG, the read-through
// successors/predicate caches, and the selective-forward A* solver that
// turns a noisy linestring into a RoutedPath.
package transition

import "errors"

// EndAttachFailure is returned by CandidateGraph.AttachEnds when a
// wiring precondition is violated.
type EndAttachFailure struct {
	Reason error
}

func (e *EndAttachFailure) Error() string {
	return "attach ends: " + e.Reason.Error()
}

func (e *EndAttachFailure) Unwrap() error { return e.Reason }

// EndAttachFailure reasons.
var (
	ErrEndsAlreadyAttached = errors.New("ends already attached to graph, cannot attach more than once")
	ErrLayerMissing        = errors.New("layer missing from graph, both start and end must be present")
)

// CollapseFailure is returned when final assembly of the solved path
// fails.
type CollapseFailure struct {
	Reason error
}

func (e *CollapseFailure) Error() string {
	return "collapse: " + e.Reason.Error()
}

func (e *CollapseFailure) Unwrap() error { return e.Reason }

// CollapseFailure reasons.
var (
	ErrNoPathFound = errors.New("could not find a path through the transition graph")
)

// MatchError kinds surfaced by a single Match/Snap solve. All are fatal
// for that solve only, never for the process.
var (
	// ErrNoInputPoints is returned when the linestring had fewer than 2
	// points.
	ErrNoInputPoints = errors.New("linestring must have at least 2 points")
)
