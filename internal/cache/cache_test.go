package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gravitas-015/hexcore/hex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoresBothDirections(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(8)
	c := hex.Cube{Q: 4, R: 0, S: -4}

	_, ok, err := m.GetCube(ctx, 45)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.SetCube(ctx, 45, c))
	require.NoError(t, m.SetIndex(ctx, c, 45))

	got, ok, err := m.GetCube(ctx, 45)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, c, got)

	x, ok, err := m.GetIndex(ctx, c)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(45), x)
}

func TestMemoryIsBounded(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)
	for x := uint64(0); x < 10; x++ {
		require.NoError(t, m.SetCube(ctx, x, hex.Origin))
		require.NoError(t, m.SetIndex(ctx, hex.NewCube(int(x), 0), x))
	}
	cubes, indices := m.Len()
	assert.Equal(t, 3, cubes)
	assert.Equal(t, 3, indices)

	// overwriting a present key never evicts
	require.NoError(t, m.SetCube(ctx, 9, hex.NewCube(1, -1)))
	got, ok, _ := m.GetCube(ctx, 9)
	assert.True(t, ok)
	assert.Equal(t, hex.NewCube(1, -1), got)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Nop{}
	require.NoError(t, c.SetCube(ctx, 1, hex.NewCube(0, -1)))
	_, ok, err := c.GetCube(ctx, 1)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestCubeEncoding(t *testing.T) {
	c := hex.Cube{Q: -519, R: -58, S: 577}
	assert.Equal(t, "-519,-58,577", encodeCube(c))

	got, err := decodeCube(encodeCube(c))
	require.NoError(t, err)
	assert.Equal(t, c, got)

	for _, bad := range []string{"", "1,2", "a,b,c", "1,1,1"} {
		_, err := decodeCube(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestRedisKeys(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	r := NewRedis(client, "hs:", time.Minute)
	assert.Equal(t, "hs:s2c:45", r.cubeKey(45))
	assert.Equal(t, "hs:c2s:4,0,-4", r.indexKey(hex.Cube{Q: 4, R: 0, S: -4}))
}
