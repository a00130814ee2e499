package spiral

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Modulo returns the mathematical modulo of a and b, which lies in [0, b)
// for b > 0. Go's % is a remainder and keeps the sign of a.
func Modulo[T constraints.Integer](a, b T) T {
	return ((a % b) + b) % b
}

// ModuloFloat is Modulo for floating point operands.
func ModuloFloat(a, b float64) float64 {
	return math.Mod(math.Mod(a, b)+b, b)
}
