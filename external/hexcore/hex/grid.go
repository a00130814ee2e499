package hex

// Ring returns the cube coordinates at exact distance k from center c,
// starting from direction 4 scaled by k and walking the six sides.
// If k==0, returns [c].
func Ring(c Cube, k int) []Cube {
    if k == 0 {
        return []Cube{c}
    }
    res := make([]Cube, 0, 6*k)
    cur := c.Add(Directions[4].Mul(k))
    for side := 0; side < 6; side++ {
        for step := 0; step < k; step++ {
            res = append(res, cur)
            cur = cur.Add(Directions[side])
        }
    }
    return res
}

// Disk returns all cube coordinates at distance <= r from center c.
func Disk(c Cube, r int) []Cube {
    res := make([]Cube, 0, DiskSize(r))
    for q := -r; q <= r; q++ {
        for r2 := max(-r, -q-r); r2 <= min(r, -q+r); r2++ {
            res = append(res, c.Add(NewCube(q, r2)))
        }
    }
    return res
}

// DiskSize is the number of hexes within distance r: 1 + 3r(r+1).
func DiskSize(r int) int { return 1 + 3*r*(r+1) }

func min(a, b int) int { if a < b { return a }; return b }
func max(a, b int) int { if a > b { return a }; return b }
