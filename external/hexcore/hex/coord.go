package hex

import "fmt"

// Axial represents axial coordinates (q, r) for pointy-top orientation.
type Axial struct {
    Q int `json:"q"`
    R int `json:"r"`
}

// Cube represents cube coordinates (q, r, s) with q+r+s=0.
type Cube struct {
    Q int `json:"q"`
    R int `json:"r"`
    S int `json:"s"`
}

// Origin is the centre hex.
var Origin = Cube{}

// Directions for cube neighbors, ordered counter-clockwise from east.
var Directions = []Cube{
    {+1, 0, -1}, {+1, -1, 0}, {0, -1, +1}, {-1, 0, +1}, {-1, +1, 0}, {0, +1, -1},
}

// NewCube builds a cube coordinate from q and r, deriving s.
func NewCube(q, r int) Cube { return Cube{Q: q, R: r, S: -q - r} }

// Add returns a+b in cube space.
func (c Cube) Add(b Cube) Cube { return Cube{c.Q + b.Q, c.R + b.R, c.S + b.S} }

// Mul scales a cube vector by k.
func (c Cube) Mul(k int) Cube { return Cube{c.Q * k, c.R * k, c.S * k} }

// Valid reports whether the components sum to zero.
func (c Cube) Valid() bool { return c.Q+c.R+c.S == 0 }

// Length returns the ring number of c: max(|q|, |r|, |s|).
func (c Cube) Length() int {
    return max3(abs(c.Q), abs(c.R), abs(c.S))
}

// ToAxial converts cube to axial.
func (c Cube) ToAxial() Axial { return Axial{Q: c.Q, R: c.R} }

func (c Cube) String() string { return fmt.Sprintf("(%d, %d, %d)", c.Q, c.R, c.S) }

// ToCube converts axial to cube.
func (a Axial) ToCube() Cube { return NewCube(a.Q, a.R) }

// DistanceCube returns hex distance between two cube coords.
func DistanceCube(a, b Cube) int {
    return Cube{a.Q - b.Q, a.R - b.R, a.S - b.S}.Length()
}

func abs(v int) int {
    if v < 0 {
        return -v
    }
    return v
}

func max3(a, b, c int) int {
    if b > a {
        a = b
    }
    if c > a {
        a = c
    }
    return a
}
