// Package cache stores finished conversions so repeated lookups skip the
// ring search.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gravitas-015/hexcore/hex"
)

// Cache remembers conversions in both directions.
type Cache interface {
	GetCube(ctx context.Context, x uint64) (hex.Cube, bool, error)
	SetCube(ctx context.Context, x uint64, c hex.Cube) error
	GetIndex(ctx context.Context, c hex.Cube) (uint64, bool, error)
	SetIndex(ctx context.Context, c hex.Cube, x uint64) error
}

// Nop never stores anything.
type Nop struct{}

func (Nop) GetCube(context.Context, uint64) (hex.Cube, bool, error) { return hex.Cube{}, false, nil }
func (Nop) SetCube(context.Context, uint64, hex.Cube) error { return nil }
func (Nop) GetIndex(context.Context, hex.Cube) (uint64, bool, error) { return 0, false, nil }
func (Nop) SetIndex(context.Context, hex.Cube, uint64) error { return nil }

func encodeCube(c hex.Cube) string {
	return fmt.Sprintf("%d,%d,%d", c.Q, c.R, c.S)
}

func decodeCube(s string) (hex.Cube, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return hex.Cube{}, fmt.Errorf("malformed cube %q", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return hex.Cube{}, fmt.Errorf("malformed cube %q: %w", s, err)
		}
		v[i] = n
	}
	c := hex.Cube{Q: v[0], R: v[1], S: v[2]}
	if !c.Valid() {
		return hex.Cube{}, fmt.Errorf("cube %q does not sum to zero", s)
	}
	return c, nil
}
