// Package costing implements the two pluggable cost strategies (emission,
// transition) behind a shared exponential decay function, and the Trip
// metrics (turn angle, length) the default transition strategy draws on.
package costing

import "math"

// precision preserves three decimal digits of resolution when the decayed
// cost is scaled into a u32.
const precision = 1000.0

// offset is Euler's e. Subtracting it acts as an implicit floor that drops
// low-raw-cost values to zero. Tunable: lowering it makes small distances
// and gentle turns carry nonzero cost instead of being free.
var offset = math.E

// Decay maps a raw cost to a u32 by:
//
//	cost = max(0, (1/zeta) * exp(-raw/beta) - e) * precision
//
// Saturates at MaxUint32: with a negative beta the exponential grows with
// raw, and a float-to-uint32 conversion of an out-of-range value is
// implementation-dependent.
func Decay(raw, zeta, beta float64) uint32 {
	shifted := (1/zeta)*math.Exp(-raw/beta) - offset
	if shifted < 0 {
		shifted = 0
	}
	scaled := precision * shifted
	if scaled >= math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(scaled)
}
