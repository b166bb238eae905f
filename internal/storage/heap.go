package storage

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/storagecore/storagecore/pkg/bitwise"
)

// RmPageHandle is a view over one heap page's bytes: a leading occupancy
// bitmap followed by num_records_per_page fixed-size record slots.
type RmPageHandle struct {
	data []byte
	hdr  RmFileHdr
}

func newRmPageHandle(data []byte, hdr RmFileHdr) *RmPageHandle {
	return &RmPageHandle{data: data, hdr: hdr}
}

func (p *RmPageHandle) recordsOffset() uint32 { return p.hdr.BitmapWords * 8 }

func (p *RmPageHandle) bitmapWordOffset(slot uint32) uint32 { return (slot / 64) * 8 }

// IsRecord reports whether slot is occupied.
func (p *RmPageHandle) IsRecord(slot uint32) bool {
	word := unmarshalUint64(p.data, p.bitmapWordOffset(slot))
	return bitwise.IsSet(word, int(slot%64))
}

func (p *RmPageHandle) setOccupied(slot uint32, occupied bool) {
	off := p.bitmapWordOffset(slot)
	word := unmarshalUint64(p.data, off)
	if occupied {
		word = bitwise.Set(word, int(slot%64))
	} else {
		word = bitwise.Unset(word, int(slot%64))
	}
	marshalUint64(p.data, word, off)
}

// RecordAt returns a view of the bytes in slot, regardless of occupancy.
func (p *RmPageHandle) RecordAt(slot uint32) []byte {
	off := p.recordsOffset() + slot*p.hdr.RecordSize
	return p.data[off : off+p.hdr.RecordSize]
}

// firstFreeSlot returns the first unoccupied slot on the page, if any.
func (p *RmPageHandle) firstFreeSlot() (uint32, bool) {
	for i := uint32(0); i < p.hdr.NumRecordsPerPage; i++ {
		if !p.IsRecord(i) {
			return i, true
		}
	}
	return 0, false
}

// RmFileHandle owns one heap file: its header and every record page,
// mediated through the shared buffer pool. A single mutex serializes
// mutations the way the index's root_latch does for the tree, since
// allocating a new page and updating num_pages must be atomic.
type RmFileHandle struct {
	mu sync.Mutex

	pool   *BufferPoolManager
	disk   DiskManager
	fd     int
	logger *zap.Logger

	hdr RmFileHdr
}

// CreateHeap initializes a brand new, empty heap file on fd with fixed
// record width recordSize.
func CreateHeap(pool *BufferPoolManager, disk DiskManager, fd int, recordSize uint32, logger *zap.Logger) (*RmFileHandle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	handle, err := pool.NewPage(fd)
	if err != nil {
		return nil, fmt.Errorf("create heap: allocate header page: %w", err)
	}
	hdr := NewRmFileHdr(recordSize)
	hdr.Marshal(handle.Data())
	handle.Unpin(true)

	disk.SetFd2PageNo(fd, 1)

	return &RmFileHandle{pool: pool, disk: disk, fd: fd, logger: logger, hdr: hdr}, nil
}

// OpenHeap reopens an existing heap file, reading its header from page 0.
func OpenHeap(pool *BufferPoolManager, disk DiskManager, fd int, logger *zap.Logger) (*RmFileHandle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	handle, err := pool.FetchPage(PageId{Fd: fd, PageNo: IxFileHdrPage})
	if err != nil {
		return nil, fmt.Errorf("open heap: fetch header page: %w", err)
	}
	hdr, err := UnmarshalRmFileHdr(handle.Data())
	handle.Unpin(false)
	if err != nil {
		return nil, fmt.Errorf("open heap: %w", err)
	}

	disk.SetFd2PageNo(fd, hdr.NumPages)

	return &RmFileHandle{pool: pool, disk: disk, fd: fd, logger: logger, hdr: hdr}, nil
}

func (rm *RmFileHandle) saveHeader() error {
	handle, err := rm.pool.FetchPage(PageId{Fd: rm.fd, PageNo: IxFileHdrPage})
	if err != nil {
		return fmt.Errorf("save heap header: %w", err)
	}
	rm.hdr.Marshal(handle.Data())
	handle.Unpin(true)
	return nil
}

func (rm *RmFileHandle) fetchPage(pageNo int32) (*PageHandle, *RmPageHandle, error) {
	handle, err := rm.pool.FetchPage(PageId{Fd: rm.fd, PageNo: pageNo})
	if err != nil {
		return nil, nil, err
	}
	return handle, newRmPageHandle(handle.Data(), rm.hdr), nil
}

// NumPages reports the heap file's total page count, including the header.
func (rm *RmFileHandle) NumPages() int32 {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.hdr.NumPages
}

// NumRecordsPerPage reports the fixed slot count per record page.
func (rm *RmFileHandle) NumRecordsPerPage() uint32 {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.hdr.NumRecordsPerPage
}

// InsertRecord writes data into the first free slot, allocating a new page
// if every existing page is full, and returns the slot's Rid.
func (rm *RmFileHandle) InsertRecord(data []byte) (Rid, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if uint32(len(data)) != rm.hdr.RecordSize {
		return Rid{}, fmt.Errorf("heap: record is %d bytes, want %d", len(data), rm.hdr.RecordSize)
	}

	for pageNo := RmFirstRecordPage; pageNo < rm.hdr.NumPages; pageNo++ {
		handle, page, err := rm.fetchPage(pageNo)
		if err != nil {
			return Rid{}, err
		}
		slot, ok := page.firstFreeSlot()
		if !ok {
			handle.Unpin(false)
			continue
		}
		page.setOccupied(slot, true)
		copy(page.RecordAt(slot), data)
		handle.Unpin(true)
		return Rid{PageNo: pageNo, SlotNo: int32(slot)}, nil
	}

	handle, err := rm.pool.NewPage(rm.fd)
	if err != nil {
		return Rid{}, fmt.Errorf("heap: allocate record page: %w", err)
	}
	pageNo := handle.ID().PageNo
	rm.hdr.NumPages++

	page := newRmPageHandle(handle.Data(), rm.hdr)
	page.setOccupied(0, true)
	copy(page.RecordAt(0), data)
	handle.Unpin(true)

	if err := rm.saveHeader(); err != nil {
		return Rid{}, err
	}
	return Rid{PageNo: pageNo, SlotNo: 0}, nil
}

// IsRecord reports whether rid refers to an occupied slot.
func (rm *RmFileHandle) IsRecord(rid Rid) (bool, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.isRecordLocked(rid)
}

func (rm *RmFileHandle) isRecordLocked(rid Rid) (bool, error) {
	if rid.PageNo < RmFirstRecordPage || rid.PageNo >= rm.hdr.NumPages {
		return false, nil
	}
	if rid.SlotNo < 0 || uint32(rid.SlotNo) >= rm.hdr.NumRecordsPerPage {
		return false, nil
	}
	handle, page, err := rm.fetchPage(rid.PageNo)
	if err != nil {
		return false, err
	}
	defer handle.Unpin(false)
	return page.IsRecord(uint32(rid.SlotNo)), nil
}

// GetRecord returns a copy of the bytes stored at rid.
func (rm *RmFileHandle) GetRecord(rid Rid) ([]byte, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	occupied, err := rm.isRecordLocked(rid)
	if err != nil {
		return nil, err
	}
	if !occupied {
		return nil, ErrRecordNotFound
	}

	handle, page, err := rm.fetchPage(rid.PageNo)
	if err != nil {
		return nil, err
	}
	defer handle.Unpin(false)

	return append([]byte(nil), page.RecordAt(uint32(rid.SlotNo))...), nil
}

// UpdateRecord overwrites the bytes stored at rid in place.
func (rm *RmFileHandle) UpdateRecord(rid Rid, data []byte) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if uint32(len(data)) != rm.hdr.RecordSize {
		return fmt.Errorf("heap: record is %d bytes, want %d", len(data), rm.hdr.RecordSize)
	}

	occupied, err := rm.isRecordLocked(rid)
	if err != nil {
		return err
	}
	if !occupied {
		return ErrRecordNotFound
	}

	handle, page, err := rm.fetchPage(rid.PageNo)
	if err != nil {
		return err
	}
	copy(page.RecordAt(uint32(rid.SlotNo)), data)
	handle.Unpin(true)
	return nil
}

// DeleteRecord marks rid's slot unoccupied. The underlying bytes are left
// untouched so a transaction abort can restore them.
func (rm *RmFileHandle) DeleteRecord(rid Rid) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	occupied, err := rm.isRecordLocked(rid)
	if err != nil {
		return err
	}
	if !occupied {
		return ErrRecordNotFound
	}

	handle, page, err := rm.fetchPage(rid.PageNo)
	if err != nil {
		return err
	}
	page.setOccupied(uint32(rid.SlotNo), false)
	handle.Unpin(true)
	return nil
}

// InsertRecordAt re-occupies rid with data, used by abort's rollback_delete
// compensation to restore a deleted record. It bypasses
// the free-slot search since the caller already knows the exact slot.
func (rm *RmFileHandle) InsertRecordAt(rid Rid, data []byte) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rid.PageNo < RmFirstRecordPage || rid.PageNo >= rm.hdr.NumPages {
		return fmt.Errorf("heap: rid %+v out of range", rid)
	}

	handle, page, err := rm.fetchPage(rid.PageNo)
	if err != nil {
		return err
	}
	page.setOccupied(uint32(rid.SlotNo), true)
	copy(page.RecordAt(uint32(rid.SlotNo)), data)
	handle.Unpin(true)
	return nil
}
