// Package spiral converts between spiral indices and cube coordinates.
//
// Spiral indices label hexagons 0, 1, 2, ... walking outwards ring by ring
// from the origin. Which index sits on which ring is decided by a
// RingLocator; this package derives the cube coordinate inside the ring.
package spiral

import (
	"fmt"

	"github.com/gravitas-015/hexcore/hex"
	locator "github.com/gravitas-015/hexcore/spiral"
)

// RingLocator maps indices to rings and rings to their first index.
type RingLocator interface {
	Ring(x uint64) uint64
	RingOffset(n uint64) uint64
}

// Cell pairs a spiral index with its cube coordinate.
type Cell struct {
	Index uint64   `json:"index"`
	Cube  hex.Cube `json:"cube"`
}

// Converter performs spiral/cube conversions using a RingLocator.
type Converter struct {
	rings RingLocator
}

// Default uses the closed-form hexcore locator.
var Default = New(locator.Locator{})

// New creates a converter backed by rings.
func New(rings RingLocator) Converter {
	return Converter{rings: rings}
}

// ToCube converts a spiral index with the default converter.
func ToCube(x uint64) hex.Cube { return Default.ToCube(x) }

// FromCube converts a cube coordinate with the default converter.
func FromCube(c hex.Cube) (uint64, bool) { return Default.FromCube(c) }

// RingOf returns the ring holding index x.
func (cv Converter) RingOf(x uint64) uint64 { return cv.rings.Ring(x) }

// ToCube returns the cube coordinate of spiral index x. It is defined for
// every uint64.
func (cv Converter) ToCube(x uint64) hex.Cube {
	if x == 0 {
		return hex.Origin
	}
	ring := cv.rings.Ring(x)
	start := cv.rings.RingOffset(ring)

	q := TriangleWave(x, ring, start, 0)
	r := TriangleWave(x, ring, start, 4)
	return hex.Cube{Q: q, R: r, S: -q - r}
}

// FromCube returns the spiral index of c, searching the 6n indices of its
// ring n. ok is false when no index on the ring maps to c, or when the ring
// lies beyond locator.MaxRing.
//
// FromCube panics if q+r+s != 0.
func (cv Converter) FromCube(c hex.Cube) (x uint64, ok bool) {
	if !c.Valid() {
		panic(fmt.Sprintf("spiral: cube coordinate %v does not sum to zero", c))
	}
	if c == hex.Origin {
		return 0, true
	}

	ring := uint64(c.Length())
	if ring > locator.MaxRing {
		return 0, false
	}
	start := cv.rings.RingOffset(ring)
	for i := uint64(0); i < 6*ring; i++ {
		x = start + i
		if x < start {
			// the last ring runs past MaxUint64
			break
		}
		if cv.ToCube(x) == c {
			return x, true
		}
	}
	return 0, false
}

// Ring returns the cells of ring n in spiral order. It panics for
// n > locator.MaxRing.
func (cv Converter) Ring(n uint64) []Cell {
	if n == 0 {
		return []Cell{{Index: 0, Cube: hex.Origin}}
	}
	start := cv.rings.RingOffset(n)
	cells := make([]Cell, 0, locator.RingSize(n))
	for i := uint64(0); i < 6*n; i++ {
		x := start + i
		if x < start {
			break
		}
		cells = append(cells, Cell{Index: x, Cube: cv.ToCube(x)})
	}
	return cells
}
