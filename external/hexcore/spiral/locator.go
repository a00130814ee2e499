// Package spiral locates spiral indices on the concentric rings of a hex
// grid. Index 0 is the origin; ring n >= 1 holds the 6n indices
// [3n(n-1)+1, 3n(n+1)].
package spiral

import "math"

// MaxRing is the largest ring whose first index fits in a uint64.
// The ring itself is only partially representable.
const MaxRing uint64 = 2479700525

// Locator satisfies the ring lookup interface expected by converters.
type Locator struct{}

// Ring returns the ring number containing index x.
func (Locator) Ring(x uint64) uint64 { return Ring(x) }

// RingOffset returns the first index on ring n.
func (Locator) RingOffset(n uint64) uint64 { return RingOffset(n) }

// Ring returns the smallest n with 3n(n+1) >= x.
func Ring(x uint64) uint64 {
    if x == 0 {
        return 0
    }
    // n(n+1) >= ceil(x/3) keeps every product below 2^63.
    k := x / 3
    if x%3 != 0 {
        k++
    }
    n := uint64(math.Sqrt(float64(k)))
    for n*(n+1) < k {
        n++
    }
    for n > 0 && (n-1)*n >= k {
        n--
    }
    return n
}

// RingOffset returns the first index on ring n. It panics for n > MaxRing.
func RingOffset(n uint64) uint64 {
    if n == 0 {
        return 0
    }
    if n > MaxRing {
        panic("spiral: ring offset overflows uint64")
    }
    return 3*n*(n-1) + 1
}

// RingSize returns the number of hexes on ring n.
func RingSize(n uint64) uint64 {
    if n == 0 {
        return 1
    }
    return 6 * n
}
