package costing

import (
	"math"
	"testing"
)

func TestDecayClampsAndSaturates(t *testing.T) {
	// raw = 0 clamps to zero: exp(0) = 1 <= zeta*e.
	if got := Decay(0, 1, -100); got != 0 {
		t.Errorf("Decay(0, 1, -100) = %d, want 0", got)
	}

	// Small raw values stay below the Euler floor and also clamp to zero.
	if got := Decay(50, 1, -100); got != 0 {
		t.Errorf("Decay(50, 1, -100) = %d, want 0 (below the e floor)", got)
	}

	// Past the floor, cost grows monotonically with raw.
	mid := Decay(500, 1, -100)
	big := Decay(1500, 1, -100)
	if mid == 0 || big <= mid {
		t.Errorf("expected 0 < Decay(500)=%d < Decay(1500)=%d", mid, big)
	}

	// Huge raw values saturate instead of wrapping through an
	// out-of-range float conversion.
	if got := Decay(1e9, 1, -100); got != math.MaxUint32 {
		t.Errorf("Decay(1e9, 1, -100) = %d, want MaxUint32", got)
	}
}

func TestEmissionCostMonotonicInDistance(t *testing.T) {
	// Decreasing observation-candidate distance never increases emission
	// cost. Small distances sit below the Euler floor and all cost zero;
	// past it the cost climbs steeply and eventually saturates.
	prev := uint32(0)
	for _, d := range []float64{0, 5, 15, 25, 40, 100, 250} {
		got := DefaultEmissionCost{}.Cost(EmissionContext{Distance: d})
		if got < prev {
			t.Fatalf("cost(%v) = %d < cost of a shorter distance %d", d, got, prev)
		}
		prev = got
	}
}

func TestEmissionCostFloorsNearbyCandidates(t *testing.T) {
	// A candidate within a few meters of the observation should be free:
	// raw = d^2 stays under the e floor.
	if got := (DefaultEmissionCost{}).Cost(EmissionContext{Distance: 5}); got != 0 {
		t.Errorf("cost(5m) = %d, want 0", got)
	}
	// A candidate 25m out must carry a real penalty.
	if got := (DefaultEmissionCost{}).Cost(EmissionContext{Distance: 25}); got == 0 {
		t.Error("cost(25m) = 0, want a positive penalty")
	}
}

func TestTransitionCostPenalizesDeviance(t *testing.T) {
	straight := TransitionContext{
		OptimalPath: NewTrip([][2]float64{{0, 0}, {0, 1}}),
		SourceLat:   0, SourceLon: 0,
		TargetLat: 0, TargetLon: 1,
	}
	zigzag := TransitionContext{
		OptimalPath: NewTrip([][2]float64{{0, 0}, {1, 0.5}, {0, 1}}),
		SourceLat:   0, SourceLon: 0,
		TargetLat: 0, TargetLon: 1,
	}

	straightCost := DefaultTransitionCost{}.Cost(straight)
	zigzagCost := DefaultTransitionCost{}.Cost(zigzag)

	// The decay floor can clamp both to zero for very small raw costs; the
	// meaningful assertion is the raw cost ordering, checked indirectly
	// through Decay's monotonic increase as raw grows.
	if straightCost > zigzagCost {
		t.Errorf("straight path should never cost more than zig-zag: straight=%d zigzag=%d", straightCost, zigzagCost)
	}
}

func TestTransitionCostDiscouragesUTurns(t *testing.T) {
	straight := TransitionContext{
		OptimalPath: NewTrip([][2]float64{{0, 0}, {0, 0.01}, {0, 0.02}}),
		SourceLat:   0, SourceLon: 0,
		TargetLat: 0, TargetLon: 0.02,
	}
	// Two consecutive near-180 reversals push raw turn cost well past the
	// decay floor.
	uturn := TransitionContext{
		OptimalPath: NewTrip([][2]float64{{0, 0}, {0, 0.01}, {0.00001, 0}, {0, 0.01}}),
		SourceLat:   0, SourceLon: 0,
		TargetLat: 0, TargetLon: 0.01,
	}

	straightCost := DefaultTransitionCost{}.Cost(straight)
	uturnCost := DefaultTransitionCost{}.Cost(uturn)

	if straightCost != 0 {
		t.Errorf("straight path cost = %d, want 0 (no turning, deviance at floor)", straightCost)
	}
	if uturnCost <= straightCost {
		t.Errorf("u-turn cost = %d, want strictly greater than straight cost %d", uturnCost, straightCost)
	}
}

func TestDefaultStrategiesFallback(t *testing.T) {
	var s Strategies
	if s.EmissionCost(EmissionContext{Distance: 1}) != (DefaultEmissionCost{}).Cost(EmissionContext{Distance: 1}) {
		t.Errorf("zero-value Strategies should fall back to DefaultEmissionCost")
	}
}
