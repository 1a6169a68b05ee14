package crdt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// replicas builds three diverged replicas of one kind that share some history.
type replicas func(t *testing.T) (Value, Value, Value)

func lwwReplicas(t *testing.T) (Value, Value, Value) {
	a := NewLWWRegister("device-a")
	a.Set("idle", at(1))
	b := NewLWWRegister("device-b").Merge(a)
	b.Set("in_service", at(5))
	c := NewLWWRegister("device-c")
	c.Set("maintenance", at(5))
	return a, b, c
}

func orSetReplicas(t *testing.T) (Value, Value, Value) {
	a := NewORSet("device-a")
	a.Add("brakes")
	a.Add("filters")
	b := NewORSet("device-b").Merge(a)
	b.Remove("brakes")
	b.Add("wipers")
	c := NewORSet("device-c")
	c.Add("brakes")
	c.Add("lights")
	c.Remove("lights")
	return a, b, c
}

func gCounterReplicas(t *testing.T) (Value, Value, Value) {
	a := NewGCounter("device-a")
	require.NoError(t, a.Increment(5))
	b := NewGCounter("device-b").Merge(a)
	require.NoError(t, b.Increment(3))
	c := NewGCounter("device-c")
	require.NoError(t, c.Increment(11))
	return a, b, c
}

func pnCounterReplicas(t *testing.T) (Value, Value, Value) {
	a := NewPNCounter("device-a")
	require.NoError(t, a.Add(20))
	b := NewPNCounter("device-b").Merge(a)
	require.NoError(t, b.Add(-7))
	c := NewPNCounter("device-c")
	require.NoError(t, c.Add(-2))
	require.NoError(t, c.Add(4))
	return a, b, c
}

var allReplicas = map[Kind]replicas{
	KindLWWRegister: lwwReplicas,
	KindORSet:       orSetReplicas,
	KindGCounter:    gCounterReplicas,
	KindPNCounter:   pnCounterReplicas,
}

// assertSameState compares replicated state, ignoring which device owns the value.
func assertSameState(t *testing.T, want, got Value) {
	t.Helper()

	wantData, err := Encode(want)
	require.NoError(t, err)
	gotData, err := Encode(got)
	require.NoError(t, err)

	var w, g envelope
	require.NoError(t, json.Unmarshal(wantData, &w))
	require.NoError(t, json.Unmarshal(gotData, &g))

	assert.Equal(t, w.Type, g.Type)
	assert.Equal(t, w.Clock, g.Clock)
	assert.JSONEq(t, string(w.State), string(g.State))
}

func mustMerge(t *testing.T, a, b Value) Value {
	t.Helper()
	merged, err := Merge(a, b)
	require.NoError(t, err)
	return merged
}

func TestMerge_Commutative(t *testing.T) {
	for kind, build := range allReplicas {
		t.Run(string(kind), func(t *testing.T) {
			a, b, c := build(t)
			for _, pair := range [][2]Value{{a, b}, {b, c}, {a, c}} {
				assertSameState(t, mustMerge(t, pair[0], pair[1]), mustMerge(t, pair[1], pair[0]))
			}
		})
	}
}

func TestMerge_Associative(t *testing.T) {
	for kind, build := range allReplicas {
		t.Run(string(kind), func(t *testing.T) {
			a, b, c := build(t)
			left := mustMerge(t, mustMerge(t, a, b), c)
			right := mustMerge(t, a, mustMerge(t, b, c))
			assertSameState(t, left, right)
		})
	}
}

func TestMerge_Idempotent(t *testing.T) {
	for kind, build := range allReplicas {
		t.Run(string(kind), func(t *testing.T) {
			a, b, _ := build(t)
			assertSameState(t, a, mustMerge(t, a, a))

			ab := mustMerge(t, a, b)
			assertSameState(t, ab, mustMerge(t, ab, b))
		})
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	for kind, build := range allReplicas {
		t.Run(string(kind), func(t *testing.T) {
			a, b, _ := build(t)
			beforeA, err := Encode(a)
			require.NoError(t, err)
			beforeB, err := Encode(b)
			require.NoError(t, err)

			mustMerge(t, a, b)

			afterA, err := Encode(a)
			require.NoError(t, err)
			afterB, err := Encode(b)
			require.NoError(t, err)
			assert.JSONEq(t, string(beforeA), string(afterA))
			assert.JSONEq(t, string(beforeB), string(afterB))
		})
	}
}

func TestMerge_KindMismatch(t *testing.T) {
	_, err := Merge(NewGCounter("a"), NewPNCounter("a"))
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = Merge(NewLWWRegister("a"), nil)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestMerge_ConvergesAcrossOrders(t *testing.T) {
	a, b, c := orSetReplicas(t)

	orders := [][]Value{{a, b, c}, {c, b, a}, {b, a, c}, {c, a, b}}
	var results []Value
	for _, order := range orders {
		acc := order[0]
		for _, next := range order[1:] {
			acc = mustMerge(t, acc, next)
		}
		results = append(results, acc)
	}

	for _, r := range results[1:] {
		assertSameState(t, results[0], r)
	}
	assert.Equal(t, []string{"brakes", "filters", "wipers"}, results[0].(*ORSet).Elements())
}

func TestNew(t *testing.T) {
	for _, kind := range []Kind{KindLWWRegister, KindORSet, KindGCounter, KindPNCounter} {
		v, err := New(kind, "device-a")
		require.NoError(t, err)
		assert.Equal(t, kind, v.Kind())
		assert.Equal(t, "device-a", v.DeviceID())
	}

	_, err := New("lww_map", "device-a")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		expected error
		name     string
		data     string
	}{
		{
			name:     "invalid json",
			data:     `{not json`,
			expected: ErrMalformed,
		},
		{
			name:     "missing type",
			data:     `{"device_id":"a","clock":{}}`,
			expected: ErrMalformed,
		},
		{
			name:     "unknown type",
			data:     `{"type":"lww_map","device_id":"a","clock":{}}`,
			expected: ErrUnknownType,
		},
		{
			name:     "missing device",
			data:     `{"type":"g_counter","clock":{},"state":{"counts":{}}}`,
			expected: ErrMalformed,
		},
		{
			name:     "bad state",
			data:     `{"type":"pn_counter","device_id":"a","clock":{},"state":{"positive":"many"}}`,
			expected: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestDecode_MissingClockDefaultsToEmpty(t *testing.T) {
	v, err := Decode([]byte(`{"type":"or_set","device_id":"a","state":null}`))
	require.NoError(t, err)

	assert.NotNil(t, v.Clock())
	assert.Empty(t, v.Clock())
}
