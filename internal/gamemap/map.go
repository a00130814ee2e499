package gamemap

import (
	"fmt"

	"github.com/gravitas-015/hexcore/hex"
	"github.com/rs/zerolog/log"

	"github.com/gravitas-games/hexspiral/internal/spiral"
)

// GameMap holds every hex within Radius rings of the origin, stored in
// spiral order so a cell's slice position is its spiral index.
type GameMap struct {
	Radius int
	cells  []spiral.Cell
	byCube map[hex.Cube]uint64
}

// New builds a map with the specified radius
func New(radius int) (*GameMap, error) {
	return NewWithConverter(radius, spiral.Default)
}

// NewWithConverter builds a map using cv for the spiral walk.
func NewWithConverter(radius int, cv spiral.Converter) (*GameMap, error) {
	if radius < 0 {
		return nil, fmt.Errorf("negative map radius %d", radius)
	}
	log.Debug().Int("radius", radius).Msg("generating spiral map")

	gm := &GameMap{
		Radius: radius,
		cells:  make([]spiral.Cell, 0, hex.DiskSize(radius)),
		byCube: make(map[hex.Cube]uint64, hex.DiskSize(radius)),
	}
	if err := gm.generateCells(cv); err != nil {
		return nil, err
	}

	log.Debug().Int("cells", len(gm.cells)).Msg("spiral map generated")
	return gm, nil
}

// generateCells walks the rings outwards and checks the walk covers the
// same disk as hex.Disk with no repeats.
func (gm *GameMap) generateCells(cv spiral.Converter) error {
	for n := 0; n <= gm.Radius; n++ {
		for _, cell := range cv.Ring(uint64(n)) {
			if prev, dup := gm.byCube[cell.Cube]; dup {
				return fmt.Errorf("indices %d and %d both map to %v", prev, cell.Index, cell.Cube)
			}
			if cell.Index != uint64(len(gm.cells)) {
				return fmt.Errorf("ring %d starts at index %d, expected %d", n, cell.Index, len(gm.cells))
			}
			gm.byCube[cell.Cube] = cell.Index
			gm.cells = append(gm.cells, cell)
		}
	}

	for _, c := range hex.Disk(hex.Origin, gm.Radius) {
		if _, ok := gm.byCube[c]; !ok {
			return fmt.Errorf("spiral walk misses %v", c)
		}
	}
	return nil
}

// Cell returns the cell at spiral index x.
func (gm *GameMap) Cell(x uint64) (spiral.Cell, bool) {
	if x >= uint64(len(gm.cells)) {
		return spiral.Cell{}, false
	}
	return gm.cells[x], true
}

// Lookup returns the spiral index of c when it lies on the map.
func (gm *GameMap) Lookup(c hex.Cube) (uint64, bool) {
	x, ok := gm.byCube[c]
	return x, ok
}

// Ring returns the cells of ring n in spiral order.
func (gm *GameMap) Ring(n int) []spiral.Cell {
	if n < 0 || n > gm.Radius {
		return nil
	}
	if n == 0 {
		return gm.cells[:1]
	}
	start := 3*n*(n-1) + 1
	return gm.cells[start : start+6*n]
}

// Cells returns all cells in spiral order.
func (gm *GameMap) Cells() []spiral.Cell {
	return gm.cells
}

// HexCount returns the number of hexes in the map
func (gm *GameMap) HexCount() int {
	return len(gm.cells)
}

func (gm *GameMap) String() string {
	return fmt.Sprintf("GameMap(radius=%d, hexes=%d)", gm.Radius, gm.HexCount())
}
