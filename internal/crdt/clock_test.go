package crdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorClock_Increment(t *testing.T) {
	vc := NewVectorClock()

	assert.Equal(t, uint64(1), vc.Increment("device-a"))
	assert.Equal(t, uint64(2), vc.Increment("device-a"))
	assert.Equal(t, uint64(1), vc.Increment("device-b"))

	assert.Equal(t, uint64(2), vc.Get("device-a"))
	assert.Equal(t, uint64(1), vc.Get("device-b"))
	assert.Equal(t, uint64(0), vc.Get("device-c"), "missing key is zero")
}

func TestVectorClock_IncrementNil(t *testing.T) {
	var vc VectorClock

	vc.Increment("device-a")

	require.NotNil(t, vc)
	assert.Equal(t, uint64(1), vc.Get("device-a"))
}

func TestVectorClock_Compare(t *testing.T) {
	tests := []struct {
		a        VectorClock
		b        VectorClock
		name     string
		expected Relation
	}{
		{
			name:     "both empty",
			a:        VectorClock{},
			b:        VectorClock{},
			expected: Equal,
		},
		{
			name:     "identical",
			a:        VectorClock{"a": 2, "b": 1},
			b:        VectorClock{"a": 2, "b": 1},
			expected: Equal,
		},
		{
			name:     "explicit zero equals missing key",
			a:        VectorClock{"a": 1, "b": 0},
			b:        VectorClock{"a": 1},
			expected: Equal,
		},
		{
			name:     "strictly before",
			a:        VectorClock{"a": 1},
			b:        VectorClock{"a": 2},
			expected: Before,
		},
		{
			name:     "before via missing key",
			a:        VectorClock{"a": 1},
			b:        VectorClock{"a": 1, "b": 1},
			expected: Before,
		},
		{
			name:     "strictly after",
			a:        VectorClock{"a": 3, "b": 2},
			b:        VectorClock{"a": 1, "b": 2},
			expected: After,
		},
		{
			name:     "concurrent",
			a:        VectorClock{"a": 2, "b": 1},
			b:        VectorClock{"a": 1, "b": 2},
			expected: Concurrent,
		},
		{
			name:     "concurrent disjoint devices",
			a:        VectorClock{"a": 1},
			b:        VectorClock{"b": 1},
			expected: Concurrent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Compare(tt.b))
		})
	}
}

func TestVectorClock_CompareIsAntisymmetric(t *testing.T) {
	a := VectorClock{"a": 3, "b": 1}
	b := VectorClock{"a": 4, "b": 1}

	assert.Equal(t, Before, a.Compare(b))
	assert.Equal(t, After, b.Compare(a))
	assert.True(t, a.HappensBefore(b))
	assert.False(t, b.HappensBefore(a))
	assert.False(t, a.IsConcurrent(b))
}

func TestVectorClock_Merge(t *testing.T) {
	a := VectorClock{"a": 3, "b": 1}
	b := VectorClock{"b": 4, "c": 2}

	merged := a.Merge(b)

	assert.Equal(t, VectorClock{"a": 3, "b": 4, "c": 2}, merged)
	// Исходные часы не изменяются
	assert.Equal(t, VectorClock{"a": 3, "b": 1}, a)
	assert.Equal(t, VectorClock{"b": 4, "c": 2}, b)
}

func TestVectorClock_MergeDominatesInputs(t *testing.T) {
	clocks := []VectorClock{
		{},
		{"a": 1},
		{"b": 5},
		{"a": 2, "b": 3},
		{"a": 7, "c": 1},
	}

	for _, a := range clocks {
		for _, b := range clocks {
			merged := a.Merge(b)
			assert.NotEqual(t, Before, merged.Compare(a), "merge(%s,%s) vs %s", a, b, a)
			assert.NotEqual(t, Before, merged.Compare(b), "merge(%s,%s) vs %s", a, b, b)
			assert.True(t, merged.Equal(b.Merge(a)), "merge must be commutative")
		}
	}
}

func TestVectorClock_Clone(t *testing.T) {
	original := VectorClock{"a": 1}
	clone := original.Clone()

	clone.Increment("a")

	assert.Equal(t, uint64(1), original.Get("a"))
	assert.Equal(t, uint64(2), clone.Get("a"))

	var empty VectorClock
	assert.NotNil(t, empty.Clone())
}

func TestVectorClock_String(t *testing.T) {
	vc := VectorClock{"b": 2, "a": 1}
	assert.Equal(t, "{a:1, b:2}", vc.String())
}

func TestVectorClock_PortableRoundTrip(t *testing.T) {
	vc := VectorClock{"truck-1": 4, "depot-7": 9}

	restored := VectorClockFromPortable(vc.ToPortable())

	assert.Equal(t, vc, restored)
	assert.Equal(t, Equal, restored.Compare(vc))
}

func TestRelation_String(t *testing.T) {
	assert.Equal(t, "EQUAL", Equal.String())
	assert.Equal(t, "BEFORE", Before.String())
	assert.Equal(t, "AFTER", After.String())
	assert.Equal(t, "CONCURRENT", Concurrent.String())
	assert.Equal(t, "UNKNOWN", Relation(42).String())
}
