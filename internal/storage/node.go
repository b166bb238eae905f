package storage

// Node header field offsets inside a page: is_leaf(1) + parent(4) +
// num_key(4) + prev_leaf(4) + next_leaf(4).
const (
	offIsLeaf   = 0
	offParent   = 1
	offNumKey   = 5
	offPrevLeaf = 9
	offNextLeaf = 13
	offKeys     = nodeHeaderSize
)

// SearchMode selects the algorithm NodeHandle uses for lower_bound/
// upper_bound. Both must return identical results over the same node;
// linear exists mainly so tests can cross-check the binary-search fast
// path.
type SearchMode int

const (
	SearchBinary SearchMode = iota
	SearchLinear
)

// NodeHandle is a lightweight, parameterized view over a page's bytes,
// exposing the B+tree's key/value slot arrays. It holds no page pin of its
// own — callers own the PageHandle backing Data for the handle's lifetime.
type NodeHandle struct {
	Data       []byte
	Hdr        IxFileHdr
	SearchMode SearchMode
}

// NewNodeHandle wraps a page's bytes with the index file's column metadata.
func NewNodeHandle(data []byte, hdr IxFileHdr) *NodeHandle {
	return &NodeHandle{Data: data, Hdr: hdr}
}

func (n *NodeHandle) valuesOffset() uint32 {
	return offKeys + n.Hdr.MaxKey*n.Hdr.ColTotLen
}

func (n *NodeHandle) keyOffset(i uint32) uint32 {
	return offKeys + i*n.Hdr.ColTotLen
}

func (n *NodeHandle) valueOffset(i uint32) uint32 {
	return n.valuesOffset() + i*ridSize
}

func (n *NodeHandle) IsLeaf() bool      { return n.Data[offIsLeaf] == 1 }
func (n *NodeHandle) SetLeaf(v bool)    { marshalBool(n.Data, v, offIsLeaf) }
func (n *NodeHandle) Parent() int32     { return unmarshalInt32(n.Data, offParent) }
func (n *NodeHandle) SetParent(p int32) { marshalInt32(n.Data, p, offParent) }
func (n *NodeHandle) NumKey() uint32    { return unmarshalUint32(n.Data, offNumKey) }
func (n *NodeHandle) setNumKey(k uint32) {
	marshalUint32(n.Data, k, offNumKey)
}
func (n *NodeHandle) PrevLeaf() int32     { return unmarshalInt32(n.Data, offPrevLeaf) }
func (n *NodeHandle) SetPrevLeaf(p int32) { marshalInt32(n.Data, p, offPrevLeaf) }
func (n *NodeHandle) NextLeaf() int32     { return unmarshalInt32(n.Data, offNextLeaf) }
func (n *NodeHandle) SetNextLeaf(p int32) { marshalInt32(n.Data, p, offNextLeaf) }

// KeyAt returns a view of the key stored at slot i.
func (n *NodeHandle) KeyAt(i uint32) []byte {
	off := n.keyOffset(i)
	return n.Data[off : off+n.Hdr.ColTotLen]
}

func (n *NodeHandle) setKeyAt(i uint32, key []byte) {
	off := n.keyOffset(i)
	copy(n.Data[off:off+n.Hdr.ColTotLen], key)
}

// RidAt returns the value stored at slot i: a record Rid for a leaf, or a
// child page number (in PageNo) for an internal node.
func (n *NodeHandle) RidAt(i uint32) Rid {
	off := n.valueOffset(i)
	return Rid{
		PageNo: unmarshalInt32(n.Data, off),
		SlotNo: unmarshalInt32(n.Data, off+4),
	}
}

func (n *NodeHandle) setRidAt(i uint32, r Rid) {
	off := n.valueOffset(i)
	marshalInt32(n.Data, r.PageNo, off)
	marshalInt32(n.Data, r.SlotNo, off+4)
}

// ChildAt is RidAt's PageNo for an internal node, named for readability at
// call sites that descend the tree.
func (n *NodeHandle) ChildAt(i uint32) int32 {
	return n.RidAt(i).PageNo
}

func (n *NodeHandle) compare(a, b []byte) int {
	return CompareKeys(n.Hdr.Columns, a, b)
}

// LowerBound returns the slot of the first key >= target, or NumKey() if
// none.
func (n *NodeHandle) LowerBound(target []byte) uint32 {
	if n.SearchMode == SearchLinear {
		return n.lowerBoundLinear(target)
	}
	return n.lowerBoundBinary(target)
}

func (n *NodeHandle) lowerBoundLinear(target []byte) uint32 {
	num := n.NumKey()
	for i := uint32(0); i < num; i++ {
		if n.compare(n.KeyAt(i), target) >= 0 {
			return i
		}
	}
	return num
}

func (n *NodeHandle) lowerBoundBinary(target []byte) uint32 {
	lo, hi := uint32(0), n.NumKey()
	for lo < hi {
		mid := lo + (hi-lo)/2
		if n.compare(n.KeyAt(mid), target) >= 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// UpperBound returns the slot of the first key > target, or NumKey() if
// none.
func (n *NodeHandle) UpperBound(target []byte) uint32 {
	if n.SearchMode == SearchLinear {
		return n.upperBoundLinear(target)
	}
	return n.upperBoundBinary(target)
}

func (n *NodeHandle) upperBoundLinear(target []byte) uint32 {
	num := n.NumKey()
	for i := uint32(0); i < num; i++ {
		if n.compare(n.KeyAt(i), target) > 0 {
			return i
		}
	}
	return num
}

func (n *NodeHandle) upperBoundBinary(target []byte) uint32 {
	lo, hi := uint32(0), n.NumKey()
	for lo < hi {
		mid := lo + (hi-lo)/2
		if n.compare(n.KeyAt(mid), target) > 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// LeafLookup returns the first Rid stored at target, if present.
func (n *NodeHandle) LeafLookup(target []byte) (Rid, bool) {
	pos := n.LowerBound(target)
	if pos >= n.NumKey() || n.compare(n.KeyAt(pos), target) != 0 {
		return Rid{}, false
	}
	return n.RidAt(pos), true
}

// InternalLookup returns the child page number responsible for target.
// With the separator-is-subtree-minimum convention, that is the last child
// whose stored key is <= target.
func (n *NodeHandle) InternalLookup(target []byte) int32 {
	pos := n.UpperBound(target)
	if pos > 0 {
		pos--
	}
	return n.ChildAt(pos)
}

// InsertPairs shifts slots [pos, NumKey()) right by len(rids) and writes
// keys/rids starting at pos.
func (n *NodeHandle) InsertPairs(pos uint32, keys [][]byte, rids []Rid) {
	num := n.NumKey()
	count := uint32(len(rids))

	for i := num; i > pos; i-- {
		n.setKeyAt(i+count-1, n.KeyAt(i-1))
		n.setRidAt(i+count-1, n.RidAt(i-1))
	}
	for i := uint32(0); i < count; i++ {
		n.setKeyAt(pos+i, keys[i])
		n.setRidAt(pos+i, rids[i])
	}
	n.setNumKey(num + count)
}

// ErasePair removes the slot at pos, shifting later slots left.
func (n *NodeHandle) ErasePair(pos uint32) {
	num := n.NumKey()
	for i := pos; i+1 < num; i++ {
		n.setKeyAt(i, n.KeyAt(i+1))
		n.setRidAt(i, n.RidAt(i+1))
	}
	n.setNumKey(num - 1)
}

// Insert places (key, rid) in sorted position. A no-op on an exact
// duplicate key; returns whether the node's size changed.
func (n *NodeHandle) Insert(key []byte, rid Rid) bool {
	pos := n.LowerBound(key)
	if pos < n.NumKey() && n.compare(n.KeyAt(pos), key) == 0 {
		return false
	}
	n.InsertPairs(pos, [][]byte{key}, []Rid{rid})
	return true
}

// Remove deletes the first slot matching key. Returns whether the node's
// size changed.
func (n *NodeHandle) Remove(key []byte) bool {
	pos := n.LowerBound(key)
	if pos >= n.NumKey() || n.compare(n.KeyAt(pos), key) != 0 {
		return false
	}
	n.ErasePair(pos)
	return true
}

// FindChild linearly scans an internal node's children for childPageNo,
// returning its slot.
func (n *NodeHandle) FindChild(childPageNo int32) (uint32, bool) {
	num := n.NumKey()
	for i := uint32(0); i < num; i++ {
		if n.ChildAt(i) == childPageNo {
			return i, true
		}
	}
	return 0, false
}

// MaxSize is the node's capacity: non-root nodes must hold at most
// MaxSize()-1 keys after any mutation.
func (n *NodeHandle) MaxSize() uint32 { return n.Hdr.MaxKey }

// MinSize is the minimum non-root occupancy.
func (n *NodeHandle) MinSize() uint32 { return n.Hdr.MinSize() }
