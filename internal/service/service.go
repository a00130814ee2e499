// Package service exposes spiral conversions to the network layer. It
// validates input before it reaches the core, applies request limits and
// caches results.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gravitas-015/hexcore/hex"
	"github.com/rs/zerolog"

	"github.com/gravitas-games/hexspiral/internal/cache"
	"github.com/gravitas-games/hexspiral/internal/spiral"
)

var (
	// ErrMalformedCube is returned for coordinates whose components do not sum to zero.
	ErrMalformedCube = errors.New("cube coordinate does not sum to zero")

	// ErrNotFound is returned when no index on the coordinate's ring matches it.
	ErrNotFound = errors.New("no spiral index matches cube coordinate")

	// ErrOutOfRange is returned for rings above the configured limit.
	ErrOutOfRange = errors.New("ring exceeds configured limit")

	// ErrBatchTooLarge is returned for batches above the configured limit.
	ErrBatchTooLarge = errors.New("batch exceeds configured limit")
)

// Service converts between spiral indices and cube coordinates.
type Service struct {
	conv     spiral.Converter
	cache    cache.Cache
	log      zerolog.Logger
	maxRing  uint64
	maxBatch int
	served   atomic.Int64
}

// Option configures a Service.
type Option func(*Service)

// WithCache sets the conversion cache.
func WithCache(c cache.Cache) Option { return func(s *Service) { s.cache = c } }

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

// WithConverter replaces the default converter.
func WithConverter(cv spiral.Converter) Option { return func(s *Service) { s.conv = cv } }

// New creates a service that refuses rings above maxRing and batches
// larger than maxBatch.
func New(maxRing uint64, maxBatch int, opts ...Option) *Service {
	s := &Service{
		conv:     spiral.Default,
		cache:    cache.Nop{},
		log:      zerolog.Nop(),
		maxRing:  maxRing,
		maxBatch: maxBatch,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Served returns the number of conversions performed or answered from cache.
func (s *Service) Served() int64 { return s.served.Load() }

// SpiralToCube returns the cube coordinate of index x.
func (s *Service) SpiralToCube(ctx context.Context, x uint64) (hex.Cube, error) {
	if ring := s.conv.RingOf(x); ring > s.maxRing {
		return hex.Cube{}, fmt.Errorf("index %d on ring %d: %w", x, ring, ErrOutOfRange)
	}

	if c, ok, err := s.cache.GetCube(ctx, x); err != nil {
		s.log.Warn().Err(err).Uint64("index", x).Msg("cache lookup failed")
	} else if ok {
		s.served.Add(1)
		return c, nil
	}

	c := s.conv.ToCube(x)
	if err := s.cache.SetCube(ctx, x, c); err != nil {
		s.log.Warn().Err(err).Uint64("index", x).Msg("cache store failed")
	}
	s.served.Add(1)
	return c, nil
}

// CubeToSpiral returns the spiral index of c.
func (s *Service) CubeToSpiral(ctx context.Context, c hex.Cube) (uint64, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("cube %v: %w", c, ErrMalformedCube)
	}
	if ring := c.Length(); ring < 0 || uint64(ring) > s.maxRing {
		return 0, fmt.Errorf("cube %v: %w", c, ErrOutOfRange)
	}

	if x, ok, err := s.cache.GetIndex(ctx, c); err != nil {
		s.log.Warn().Err(err).Stringer("cube", c).Msg("cache lookup failed")
	} else if ok {
		s.served.Add(1)
		return x, nil
	}

	x, ok := s.conv.FromCube(c)
	if !ok {
		s.log.Debug().Stringer("cube", c).Msg("ring search found no index")
		return 0, fmt.Errorf("cube %v: %w", c, ErrNotFound)
	}
	if err := s.cache.SetIndex(ctx, c, x); err != nil {
		s.log.Warn().Err(err).Stringer("cube", c).Msg("cache store failed")
	}
	s.served.Add(1)
	return x, nil
}

// Ring returns the cells of ring n in spiral order.
func (s *Service) Ring(ctx context.Context, n uint64) ([]spiral.Cell, error) {
	if n > s.maxRing {
		return nil, fmt.Errorf("ring %d: %w", n, ErrOutOfRange)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cells := s.conv.Ring(n)
	s.served.Add(int64(len(cells)))
	return cells, nil
}

// BatchToCube converts every index in xs, failing on the first error.
func (s *Service) BatchToCube(ctx context.Context, xs []uint64) ([]spiral.Cell, error) {
	if len(xs) > s.maxBatch {
		return nil, fmt.Errorf("%d indices: %w", len(xs), ErrBatchTooLarge)
	}
	cells := make([]spiral.Cell, 0, len(xs))
	for _, x := range xs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := s.SpiralToCube(ctx, x)
		if err != nil {
			return nil, err
		}
		cells = append(cells, spiral.Cell{Index: x, Cube: c})
	}
	return cells, nil
}

// BatchToSpiral converts every coordinate in cubes, failing on the first error.
func (s *Service) BatchToSpiral(ctx context.Context, cubes []hex.Cube) ([]spiral.Cell, error) {
	if len(cubes) > s.maxBatch {
		return nil, fmt.Errorf("%d cubes: %w", len(cubes), ErrBatchTooLarge)
	}
	cells := make([]spiral.Cell, 0, len(cubes))
	for _, c := range cubes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x, err := s.CubeToSpiral(ctx, c)
		if err != nil {
			return nil, err
		}
		cells = append(cells, spiral.Cell{Index: x, Cube: c})
	}
	return cells, nil
}
