package storage

import "fmt"

// nodeHeaderSize is the fixed encoding size of a B+tree node header:
// is_leaf(1) + parent(4) + num_key(4) + prev_leaf(4) + next_leaf(4).
const nodeHeaderSize = 17

// ridSize is the encoded size of a Rid (two int32 fields).
const ridSize = 8

// IxFileHdr is the index file's page-0 header: column metadata plus the
// tree's current root/leaf-chain endpoints and page count.
type IxFileHdr struct {
	NumPages     int32
	RootPage     int32
	FirstLeaf    int32
	LastLeaf     int32
	FreeListHead int32 // domain addition: head of the freed-page reuse list
	Columns      []Column
	ColTotLen    uint32
	MaxKey       uint32 // max fanout: the node's max_size
}

// NewIxFileHdr derives MaxKey/ColTotLen from cols and initializes an empty
// tree (no root, no leaves, no free pages).
func NewIxFileHdr(cols []Column) IxFileHdr {
	colTotLen := ColTotLen(cols)
	return IxFileHdr{
		NumPages:     1, // the header page itself
		RootPage:     IxNoPage,
		FirstLeaf:    IxNoPage,
		LastLeaf:     IxNoPage,
		FreeListHead: IxNoPage,
		Columns:      cols,
		ColTotLen:    colTotLen,
		MaxKey:       maxFanout(colTotLen),
	}
}

// maxFanout computes how many (key, rid) pairs fit in one node's key/value
// arrays after the fixed node header.
func maxFanout(colTotLen uint32) uint32 {
	perEntry := colTotLen + ridSize
	if perEntry == 0 {
		return 0
	}
	return uint32(PageSize-nodeHeaderSize) / perEntry
}

// MinSize is the minimum occupancy for a non-root node: every non-root
// node must hold between MinSize and MaxSize()-1 keys after any mutation.
func (h IxFileHdr) MinSize() uint32 {
	return h.MaxKey / 2
}

// Marshal encodes the header into a PageSize buffer.
func (h IxFileHdr) Marshal(buf []byte) {
	marshalInt32(buf, h.NumPages, 0)
	marshalInt32(buf, h.RootPage, 4)
	marshalInt32(buf, h.FirstLeaf, 8)
	marshalInt32(buf, h.LastLeaf, 12)
	marshalInt32(buf, h.FreeListHead, 16)
	marshalUint32(buf, uint32(len(h.Columns)), 20)

	offset := uint32(24)
	for _, c := range h.Columns {
		buf[offset] = byte(c.Kind)
		marshalUint32(buf, c.Size, offset+1)
		offset += 5
	}
}

// UnmarshalIxFileHdr decodes a header page previously written by Marshal.
func UnmarshalIxFileHdr(buf []byte) (IxFileHdr, error) {
	if len(buf) < 24 {
		return IxFileHdr{}, fmt.Errorf("ix file header: buffer too small")
	}

	h := IxFileHdr{
		NumPages:     unmarshalInt32(buf, 0),
		RootPage:     unmarshalInt32(buf, 4),
		FirstLeaf:    unmarshalInt32(buf, 8),
		LastLeaf:     unmarshalInt32(buf, 12),
		FreeListHead: unmarshalInt32(buf, 16),
	}

	numCols := unmarshalUint32(buf, 20)
	h.Columns = make([]Column, numCols)
	offset := uint32(24)
	for i := range h.Columns {
		h.Columns[i] = Column{
			Kind: ColumnKind(buf[offset]),
			Size: unmarshalUint32(buf, offset+1),
		}
		offset += 5
	}

	h.ColTotLen = ColTotLen(h.Columns)
	h.MaxKey = maxFanout(h.ColTotLen)

	return h, nil
}
