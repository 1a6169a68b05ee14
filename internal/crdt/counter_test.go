package crdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCounter_Increment(t *testing.T) {
	g := NewGCounter("device-a")

	require.NoError(t, g.Increment(5))
	require.NoError(t, g.Increment(2))

	assert.Equal(t, uint64(7), g.Value())
	assert.Equal(t, uint64(2), g.Clock().Get("device-a"))
}

func TestGCounter_IncrementNegativeRejected(t *testing.T) {
	g := NewGCounter("device-a")

	err := g.Increment(-1)

	assert.ErrorIs(t, err, ErrNegativeAmount)
	assert.Equal(t, uint64(0), g.Value())
	assert.Empty(t, g.Clock())
}

func TestGCounter_MergeIsIdempotent(t *testing.T) {
	a := NewGCounter("device-a")
	require.NoError(t, a.Increment(5))
	b := NewGCounter("device-b")
	require.NoError(t, b.Increment(3))

	merged := a.Merge(b)
	assert.Equal(t, uint64(8), merged.Value())

	// Повторный merge не меняет результат
	again := merged.Merge(b)
	assert.Equal(t, uint64(8), again.Value())
	assert.Equal(t, uint64(8), again.Merge(again).Value())
}

func TestGCounter_MergeTakesMaxPerDevice(t *testing.T) {
	a := NewGCounter("device-a")
	require.NoError(t, a.Increment(5))

	stale := NewGCounter("device-b").Merge(a)
	require.NoError(t, a.Increment(1))

	assert.Equal(t, uint64(6), stale.Merge(a).Value())
	assert.Equal(t, uint64(6), a.Merge(stale).Value())
}

func TestPNCounter(t *testing.T) {
	p := NewPNCounter("device-a")

	require.NoError(t, p.Increment(10))
	require.NoError(t, p.Decrement(4))
	require.NoError(t, p.Add(-3))
	require.NoError(t, p.Add(2))

	assert.Equal(t, int64(5), p.Value())
	assert.ErrorIs(t, p.Increment(-1), ErrNegativeAmount)
	assert.ErrorIs(t, p.Decrement(-1), ErrNegativeAmount)
}

func TestPNCounter_Merge(t *testing.T) {
	a := NewPNCounter("device-a")
	require.NoError(t, a.Increment(10))
	b := NewPNCounter("device-b")
	require.NoError(t, b.Decrement(4))

	ab := a.Merge(b)
	ba := b.Merge(a)

	assert.Equal(t, int64(6), ab.Value())
	assert.Equal(t, int64(6), ba.Value())
	assert.Equal(t, int64(6), ab.Merge(ba).Value())
}

func TestPNCounter_CanGoNegative(t *testing.T) {
	p := NewPNCounter("device-a")
	require.NoError(t, p.Add(-7))

	assert.Equal(t, int64(-7), p.Value())
}

func TestCounters_JSONRoundTrip(t *testing.T) {
	g := NewGCounter("device-a")
	require.NoError(t, g.Increment(3))
	g = g.Merge(func() *GCounter {
		other := NewGCounter("device-b")
		require.NoError(t, other.Increment(9))
		return other
	}())

	p := NewPNCounter("device-a")
	require.NoError(t, p.Add(12))
	require.NoError(t, p.Add(-5))

	for _, v := range []Value{g, p} {
		t.Run(string(v.Kind()), func(t *testing.T) {
			data, err := Encode(v)
			require.NoError(t, err)

			decoded, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, v, decoded)
		})
	}
}
