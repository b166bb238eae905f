package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestNode(t *testing.T, mode SearchMode) *NodeHandle {
	t.Helper()
	hdr := NewIxFileHdr(intKeyColumns())
	data := make([]byte, PageSize)
	n := NewNodeHandle(data, hdr)
	n.SearchMode = mode
	n.SetLeaf(true)
	n.SetParent(IxNoPage)
	n.SetPrevLeaf(IxLeafHeaderPage)
	n.SetNextLeaf(IxLeafHeaderPage)
	return n
}

func insertKeys(n *NodeHandle, keys []int32) {
	for i, k := range keys {
		n.Insert(intKey(k), Rid{PageNo: 0, SlotNo: int32(i)})
	}
}

// TestNode_LowerUpperBoundAgreeAcrossSearchModes checks that binary and
// linear search return identical results over the same node.
func TestNode_LowerUpperBoundAgreeAcrossSearchModes(t *testing.T) {
	keys := []int32{1, 3, 5, 7, 9, 11}
	targets := []int32{0, 1, 2, 5, 6, 11, 12}

	binary := newTestNode(t, SearchBinary)
	linear := newTestNode(t, SearchLinear)
	insertKeys(binary, keys)
	insertKeys(linear, keys)

	for _, target := range targets {
		require.Equal(t, linear.LowerBound(intKey(target)), binary.LowerBound(intKey(target)),
			"lower_bound(%d) mismatch", target)
		require.Equal(t, linear.UpperBound(intKey(target)), binary.UpperBound(intKey(target)),
			"upper_bound(%d) mismatch", target)
	}
}

func TestNode_LowerBoundExactAndMissingKeys(t *testing.T) {
	n := newTestNode(t, SearchBinary)
	insertKeys(n, []int32{10, 20, 30})

	require.Equal(t, uint32(0), n.LowerBound(intKey(5)))
	require.Equal(t, uint32(0), n.LowerBound(intKey(10)))
	require.Equal(t, uint32(1), n.LowerBound(intKey(15)))
	require.Equal(t, uint32(3), n.LowerBound(intKey(31)))
}

func TestNode_UpperBoundExactAndMissingKeys(t *testing.T) {
	n := newTestNode(t, SearchBinary)
	insertKeys(n, []int32{10, 20, 30})

	require.Equal(t, uint32(1), n.UpperBound(intKey(10)))
	require.Equal(t, uint32(0), n.UpperBound(intKey(5)))
	require.Equal(t, uint32(3), n.UpperBound(intKey(30)))
}

// TestNode_InternalLookupIsSubtreeMinimumConvention exercises the
// non-standard separator convention: InternalLookup(key) picks the last
// child whose stored key is <= key.
func TestNode_InternalLookupIsSubtreeMinimumConvention(t *testing.T) {
	n := newTestNode(t, SearchBinary)
	n.SetLeaf(false)
	// Three children whose subtrees start at 0, 10, and 20.
	n.InsertPairs(0, [][]byte{intKey(0), intKey(10), intKey(20)}, []Rid{
		{PageNo: 100}, {PageNo: 101}, {PageNo: 102},
	})

	require.Equal(t, int32(100), n.InternalLookup(intKey(0)))
	require.Equal(t, int32(100), n.InternalLookup(intKey(5)))
	require.Equal(t, int32(101), n.InternalLookup(intKey(10)))
	require.Equal(t, int32(101), n.InternalLookup(intKey(19)))
	require.Equal(t, int32(102), n.InternalLookup(intKey(20)))
	require.Equal(t, int32(102), n.InternalLookup(intKey(1000)))
}

func TestNode_InsertIsNoopOnDuplicate(t *testing.T) {
	n := newTestNode(t, SearchBinary)
	insertKeys(n, []int32{1, 2, 3})

	changed := n.Insert(intKey(2), Rid{PageNo: 9, SlotNo: 9})
	require.False(t, changed)
	require.Equal(t, uint32(3), n.NumKey())

	rid, ok := n.LeafLookup(intKey(2))
	require.True(t, ok)
	require.NotEqual(t, Rid{PageNo: 9, SlotNo: 9}, rid)
}

func TestNode_RemoveShiftsRemainingSlots(t *testing.T) {
	n := newTestNode(t, SearchBinary)
	insertKeys(n, []int32{1, 2, 3, 4})

	changed := n.Remove(intKey(2))
	require.True(t, changed)
	require.Equal(t, uint32(3), n.NumKey())

	var got []int32
	for i := uint32(0); i < n.NumKey(); i++ {
		got = append(got, decodeIntKey(n.KeyAt(i)))
	}
	require.Equal(t, []int32{1, 3, 4}, got)
}

func TestNode_FindChild(t *testing.T) {
	n := newTestNode(t, SearchBinary)
	n.SetLeaf(false)
	n.InsertPairs(0, [][]byte{intKey(0), intKey(10)}, []Rid{{PageNo: 5}, {PageNo: 6}})

	pos, ok := n.FindChild(6)
	require.True(t, ok)
	require.Equal(t, uint32(1), pos)

	_, ok = n.FindChild(999)
	require.False(t, ok)
}
