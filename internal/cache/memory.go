package cache

import (
	"context"
	"sync"

	"github.com/gravitas-015/hexcore/hex"
)

// Memory is a bounded in-process cache. When a direction is full an
// arbitrary entry is evicted to make room.
type Memory struct {
	mu      sync.RWMutex
	size    int
	cubes   map[uint64]hex.Cube
	indices map[hex.Cube]uint64
}

// NewMemory creates a cache holding up to size entries per direction.
func NewMemory(size int) *Memory {
	return &Memory{
		size:    size,
		cubes:   make(map[uint64]hex.Cube, size),
		indices: make(map[hex.Cube]uint64, size),
	}
}

func (m *Memory) GetCube(_ context.Context, x uint64) (hex.Cube, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cubes[x]
	return c, ok, nil
}

func (m *Memory) SetCube(_ context.Context, x uint64, c hex.Cube) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cubes[x]; !ok && len(m.cubes) >= m.size {
		for k := range m.cubes {
			delete(m.cubes, k)
			break
		}
	}
	m.cubes[x] = c
	return nil
}

func (m *Memory) GetIndex(_ context.Context, c hex.Cube) (uint64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	x, ok := m.indices[c]
	return x, ok, nil
}

func (m *Memory) SetIndex(_ context.Context, c hex.Cube, x uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.indices[c]; !ok && len(m.indices) >= m.size {
		for k := range m.indices {
			delete(m.indices, k)
			break
		}
	}
	m.indices[c] = x
	return nil
}

// Len returns the number of entries held in each direction.
func (m *Memory) Len() (cubes, indices int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cubes), len(m.indices)
}
