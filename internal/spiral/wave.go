package spiral

import "math"

// sides is the base period of the wave: one step per hexagon side.
const sides = 6

// TriangleWave evaluates one cube axis for index x on ring cycle, whose
// first index is cycleStart. The wave's amplitude and period both grow with
// the ring number and the result is clamped to [-cycle, cycle]. Phase 0
// yields q and phase 4 yields r.
//
// Every intermediate value is a multiple of 1/4, so the wave is computed on
// quarters in integer arithmetic and is exact for every ring.
func TriangleWave(x, cycle, cycleStart uint64, phase int64) int {
	c := int64(cycle)
	offset := int64(x - cycleStart)

	s := 4*offset - c*(2*phase+sides)
	period := 4 * sides * c
	y := abs64(Modulo(s, period)-period/2) - 6*c

	if abs64(y) > 4*c {
		if y < 0 {
			return int(-c)
		}
		return int(c)
	}
	// Go's integer division truncates toward zero.
	return int(y / 4)
}

// TriangleWaveFloat is TriangleWave evaluated in float64. Only the in-ring
// offset is converted, so intermediates stay small multiples of 1/4 and the
// result agrees with TriangleWave for every representable ring.
func TriangleWaveFloat(x, cycle, cycleStart uint64, phase float64) int {
	c := float64(cycle)
	offset := float64(x - cycleStart)

	s := offset - (c/4)*(2*phase+sides)
	period := c * sides
	y := math.Abs(ModuloFloat(s, period)-c*sides/2) - 1.5*c

	if math.Abs(y) > c {
		return int(math.Copysign(c, y))
	}
	return int(y)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
