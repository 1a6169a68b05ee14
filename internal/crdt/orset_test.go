package crdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestORSet_AddRemove(t *testing.T) {
	set := NewORSet("device-a")

	set.Add("oil-change")
	set.Add("tire-rotation")

	assert.True(t, set.Contains("oil-change"))
	assert.Equal(t, []string{"oil-change", "tire-rotation"}, set.Elements())
	assert.Equal(t, 2, set.Len())

	set.Remove("oil-change")

	assert.False(t, set.Contains("oil-change"))
	assert.Equal(t, []string{"tire-rotation"}, set.Elements())
	assert.Equal(t, uint64(3), set.Clock().Get("device-a"))
}

func TestORSet_RemoveMissingElement(t *testing.T) {
	set := NewORSet("device-a")

	set.Remove("ghost")

	assert.Equal(t, 0, set.Len())
	assert.Equal(t, uint64(1), set.Clock().Get("device-a"))
}

func TestORSet_MergeUnion(t *testing.T) {
	a := NewORSet("device-a")
	a.Add("apple")
	a.Add("banana")
	b := NewORSet("device-b")
	b.Add("orange")

	merged := a.Merge(b)

	assert.Equal(t, []string{"apple", "banana", "orange"}, merged.Elements())
	assert.Equal(t, VectorClock{"device-a": 2, "device-b": 1}, merged.Clock())
	// Входные множества не изменились
	assert.Equal(t, []string{"apple", "banana"}, a.Elements())
	assert.Equal(t, []string{"orange"}, b.Elements())
}

func TestORSet_ObservedRemovePropagates(t *testing.T) {
	a := NewORSet("device-a")
	a.Add("x")

	// b наблюдает добавление x, затем удаляет его
	b := NewORSet("device-b").Merge(a)
	b.Remove("x")

	assert.False(t, a.Merge(b).Contains("x"))
	assert.False(t, b.Merge(a).Contains("x"))
}

func TestORSet_ConcurrentUnobservedAddSurvivesRemove(t *testing.T) {
	a := NewORSet("device-a")
	a.Add("x")
	b := NewORSet("device-b").Merge(a)

	// Конкурентно: a снова добавляет x, b удаляет то, что видел
	a.Add("x")
	b.Remove("x")

	assert.True(t, a.Merge(b).Contains("x"))
	assert.True(t, b.Merge(a).Contains("x"))
}

func TestORSet_ReAddBeatsStaleReplica(t *testing.T) {
	a := NewORSet("device-a")
	a.Add("x")

	// stale видел только первое добавление
	stale := NewORSet("device-b").Merge(a)

	a.Remove("x")
	a.Add("x")

	assert.True(t, a.Merge(stale).Contains("x"))
	assert.True(t, stale.Merge(a).Contains("x"))
}

func TestORSet_MergePrunesTombstonedElements(t *testing.T) {
	a := NewORSet("device-a")
	a.Add("x")
	b := NewORSet("device-b").Merge(a)
	a.Remove("x")

	merged := b.Merge(a)

	_, present := merged.adds["x"]
	assert.False(t, present, "fully tombstoned element must be pruned")
	assert.Len(t, merged.tombstones["x"], 1)
}

func TestORSet_JSONRoundTrip(t *testing.T) {
	set := NewORSet("device-a")
	set.Add("alpha")
	set.Add("beta")
	set.Remove("alpha")
	set.Add("gamma")

	data, err := Encode(set)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	restored, ok := decoded.(*ORSet)
	require.True(t, ok)
	assert.Equal(t, set, restored)
	assert.Equal(t, []string{"beta", "gamma"}, restored.Elements())
}

func TestTag_JSON(t *testing.T) {
	data, err := Tag{ID: "t1", DeviceID: "d1"}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["t1","d1"]`, string(data))

	var tag Tag
	require.NoError(t, tag.UnmarshalJSON(data))
	assert.Equal(t, Tag{ID: "t1", DeviceID: "d1"}, tag)
}
