package costing

import "github.com/azybler/mapmatch/pkg/geo"

// Resolution records which method a solver used to resolve a hop between
// two candidates: Standard means a map path was reconstructed through the
// PredicateCache; DistanceOnly means the hop fell into the same-edge fast
// path, so no map path was reconstructed and OptimalPath is empty.
type Resolution uint8

const (
	Standard Resolution = iota
	DistanceOnly
)

// EmissionContext carries everything the emission strategy needs to cost
// choosing a single candidate for a single observed point.
type EmissionContext struct {
	// SourceLat/SourceLon is the observed (un-matched) input point.
	SourceLat, SourceLon float64
	// CandidateLat/CandidateLon is the projected position being scored.
	CandidateLat, CandidateLon float64
	// Distance is the Haversine distance between the two, precomputed by
	// the layer generator so it is never computed twice.
	Distance float64
}

// TransitionContext carries everything the transition strategy needs to
// cost moving from one candidate to another.
type TransitionContext struct {
	// OptimalPath is the reconstructed map path between the two
	// candidates, used to quantify turning and directness.
	OptimalPath Trip
	// SourceLat/SourceLon, TargetLat/TargetLon are the two candidates'
	// projected positions.
	SourceLat, SourceLon float64
	TargetLat, TargetLon float64
	// LayerWidth is the Haversine distance between the source and target
	// layers' origin points (the two observed positions being bridged).
	LayerWidth float64
	// Resolution records how the hop's path was derived.
	Resolution Resolution
}

// EmissionStrategy costs the choice of a candidate for an observed point.
// Implementers may substitute any strategy so long as it exposes Cost.
type EmissionStrategy interface {
	Cost(ctx EmissionContext) uint32
}

// TransitionStrategy costs moving between two candidates in consecutive
// layers. Implementers may substitute any strategy so long as it exposes
// Cost.
type TransitionStrategy interface {
	Cost(ctx TransitionContext) uint32
}

// DefaultEmissionCost penalizes distance between an observation and its
// candidate sharply: raw = haversine(source, candidate)^2.
type DefaultEmissionCost struct{}

const (
	emissionZeta = 1.0
	emissionBeta = -100.0
)

func (DefaultEmissionCost) Cost(ctx EmissionContext) uint32 {
	raw := ctx.Distance * ctx.Distance
	return Decay(raw, emissionZeta, emissionBeta)
}

// DefaultTransitionCost discourages winding paths (turnCost) and adds a
// deviance term: path length over the straight-line distance between the
// candidates, clamped to [0, 1]. Every path at least as long as the
// straight line gets the same deviance of 1, so extra length beyond that
// adds no cost; an empty path gets 0.
type DefaultTransitionCost struct{}

const (
	transitionZeta = 1.0
	transitionBeta = -50.0
)

func (DefaultTransitionCost) Cost(ctx TransitionContext) uint32 {
	turnCost := ctx.OptimalPath.ImmediateAngle()
	if turnCost < 0 {
		turnCost = -turnCost
	}

	shortestDistance := geo.Haversine(ctx.SourceLat, ctx.SourceLon, ctx.TargetLat, ctx.TargetLon)
	deviance := 1.0
	if shortestDistance > 0 {
		deviance = ctx.OptimalPath.Length() / shortestDistance
	}
	if deviance < 0 {
		deviance = 0
	} else if deviance > 1 {
		deviance = 1
	}

	raw := turnCost + deviance
	return Decay(raw, transitionZeta, transitionBeta)
}

// Strategies bundles an emission and a transition strategy pair; the zero
// value uses the defaults.
type Strategies struct {
	Emission   EmissionStrategy
	Transition TransitionStrategy
}

// DefaultStrategies returns the default emission/transition pair.
func DefaultStrategies() Strategies {
	return Strategies{Emission: DefaultEmissionCost{}, Transition: DefaultTransitionCost{}}
}

func (s Strategies) emissionOrDefault() EmissionStrategy {
	if s.Emission != nil {
		return s.Emission
	}
	return DefaultEmissionCost{}
}

func (s Strategies) transitionOrDefault() TransitionStrategy {
	if s.Transition != nil {
		return s.Transition
	}
	return DefaultTransitionCost{}
}

// Emission costs the given context using the configured emission
// strategy, falling back to DefaultEmissionCost.
func (s Strategies) EmissionCost(ctx EmissionContext) uint32 {
	return s.emissionOrDefault().Cost(ctx)
}

// TransitionCost costs the given context using the configured transition
// strategy, falling back to DefaultTransitionCost.
func (s Strategies) TransitionCost(ctx TransitionContext) uint32 {
	return s.transitionOrDefault().Cost(ctx)
}
