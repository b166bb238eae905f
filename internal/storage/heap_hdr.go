package storage

import "fmt"

// RmFileHdr is a heap file's page-0 header: fixed record width, total page
// count, and the derived slotted-page layout.
type RmFileHdr struct {
	RecordSize        uint32
	NumPages          int32
	NumRecordsPerPage uint32
	BitmapWords       uint32
}

// heapCapacity derives how many fixed-size records fit on one page, plus
// the number of uint64 bitmap words needed to track their occupancy, such
// that the bitmap and the record slots together fit within PageSize.
func heapCapacity(recordSize uint32) (numRecordsPerPage uint32, bitmapWords uint32) {
	if recordSize == 0 {
		return 0, 0
	}

	n := uint32(PageSize*8) / (recordSize*8 + 1)
	for n > 0 {
		words := (n + 63) / 64
		if words*8+n*recordSize <= PageSize {
			return n, words
		}
		n--
	}
	return 0, 0
}

// NewRmFileHdr derives a heap file header from the record width.
func NewRmFileHdr(recordSize uint32) RmFileHdr {
	numRecs, bitmapWords := heapCapacity(recordSize)
	return RmFileHdr{
		RecordSize:        recordSize,
		NumPages:          1, // the header page itself
		NumRecordsPerPage: numRecs,
		BitmapWords:       bitmapWords,
	}
}

// Marshal encodes the header into a PageSize buffer.
func (h RmFileHdr) Marshal(buf []byte) {
	marshalUint32(buf, h.RecordSize, 0)
	marshalInt32(buf, h.NumPages, 4)
	marshalUint32(buf, h.NumRecordsPerPage, 8)
	marshalUint32(buf, h.BitmapWords, 12)
}

// UnmarshalRmFileHdr decodes a header page previously written by Marshal.
func UnmarshalRmFileHdr(buf []byte) (RmFileHdr, error) {
	if len(buf) < 16 {
		return RmFileHdr{}, fmt.Errorf("rm file header: buffer too small")
	}
	return RmFileHdr{
		RecordSize:        unmarshalUint32(buf, 0),
		NumPages:          unmarshalInt32(buf, 4),
		NumRecordsPerPage: unmarshalUint32(buf, 8),
		BitmapWords:       unmarshalUint32(buf, 12),
	}, nil
}
