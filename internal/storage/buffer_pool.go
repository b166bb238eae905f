package storage

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// BufferPoolManager maps (fd, page_no) pairs to in-memory frames, mediating
// every disk access behind pin/unpin and dirty tracking. It owns a single
// coarse mutex, acquired at the entry of every public method, as described
// for the buffer pool's lifetime.
type BufferPoolManager struct {
	mu sync.Mutex

	disk     DiskManager
	replacer Replacer
	logger   *zap.Logger

	frames    []Frame
	freeList  []int
	pageTable map[PageId]int
}

// NewBufferPoolManagerFromConfig builds a pool sized and logged per cfg,
// over the given disk manager and replacer policy.
func NewBufferPoolManagerFromConfig(cfg Config, disk DiskManager, replacer Replacer) *BufferPoolManager {
	return NewBufferPoolManager(cfg.PoolSize, disk, replacer, cfg.Logger)
}

// NewBufferPoolManager builds a pool of the given number of frames over the
// given disk manager and replacer.
func NewBufferPoolManager(poolSize int, disk DiskManager, replacer Replacer, logger *zap.Logger) *BufferPoolManager {
	if logger == nil {
		logger = zap.NewNop()
	}

	freeList := make([]int, poolSize)
	frames := make([]Frame, poolSize)
	for i := range frames {
		frames[i].ID = InvalidPageId
		freeList[i] = poolSize - 1 - i
	}

	return &BufferPoolManager{
		disk:      disk,
		replacer:  replacer,
		logger:    logger,
		frames:    frames,
		freeList:  freeList,
		pageTable: make(map[PageId]int),
	}
}

// frameFor looks up the frame currently bound to id without touching pin
// counts or the replacer. Only PageHandle.Data uses this, and only while the
// caller still holds its pin.
func (bp *BufferPoolManager) frameFor(id PageId) *Frame {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	idx, ok := bp.pageTable[id]
	if !ok {
		return nil
	}
	return &bp.frames[idx]
}

// findVictimPage prefers the free list, falling back to the replacer.
func (bp *BufferPoolManager) findVictimPage() (int, bool) {
	if n := len(bp.freeList); n > 0 {
		idx := bp.freeList[n-1]
		bp.freeList = bp.freeList[:n-1]
		return idx, true
	}
	return bp.replacer.Victim()
}

// updatePage rebinds frame at frameIdx to newID, flushing it first if it is
// dirty and bound to a valid page. On a flush failure, the page table and
// dirty flag are left unchanged so a later flush can retry.
func (bp *BufferPoolManager) updatePage(frameIdx int, newID PageId) error {
	frame := &bp.frames[frameIdx]

	if frame.IsDirty && frame.ID != InvalidPageId {
		if err := bp.disk.WritePage(frame.ID.Fd, frame.ID.PageNo, frame.Data[:]); err != nil {
			return fmt.Errorf("buffer pool: flush victim frame before rebind: %w", err)
		}
		frame.IsDirty = false
	}

	if frame.ID != InvalidPageId {
		delete(bp.pageTable, frame.ID)
	}

	frame.Data = [PageSize]byte{}
	frame.ID = newID
	frame.PinCount = 0
	frame.IsDirty = false

	bp.pageTable[newID] = frameIdx
	return nil
}

// FetchPage returns a pinned handle on id, loading it from disk if it is not
// already cached. Returns ErrCapacityExhausted if every frame is pinned.
func (bp *BufferPoolManager) FetchPage(id PageId) (*PageHandle, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if idx, ok := bp.pageTable[id]; ok {
		frame := &bp.frames[idx]
		frame.PinCount++
		bp.replacer.Pin(idx)
		return &PageHandle{pool: bp, id: id}, nil
	}

	idx, ok := bp.findVictimPage()
	if !ok {
		return nil, ErrCapacityExhausted
	}

	if err := bp.updatePage(idx, id); err != nil {
		bp.freeList = append(bp.freeList, idx)
		return nil, err
	}

	frame := &bp.frames[idx]
	if err := bp.disk.ReadPage(id.Fd, id.PageNo, frame.Data[:]); err != nil {
		delete(bp.pageTable, id)
		frame.ID = InvalidPageId
		bp.freeList = append(bp.freeList, idx)
		return nil, fmt.Errorf("buffer pool: fetch page %+v: %w", id, err)
	}

	frame.PinCount = 1
	bp.replacer.Pin(idx)

	return &PageHandle{pool: bp, id: id}, nil
}

// NewPage allocates a fresh page on fd and returns a pinned, zeroed, dirty
// handle to it.
func (bp *BufferPoolManager) NewPage(fd int) (*PageHandle, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	idx, ok := bp.findVictimPage()
	if !ok {
		return nil, ErrCapacityExhausted
	}

	pageNo := bp.disk.AllocatePage(fd)
	id := PageId{Fd: fd, PageNo: pageNo}

	if err := bp.updatePage(idx, id); err != nil {
		bp.freeList = append(bp.freeList, idx)
		return nil, err
	}

	frame := &bp.frames[idx]
	frame.PinCount = 1
	frame.IsDirty = true
	bp.replacer.Pin(idx)

	return &PageHandle{pool: bp, id: id}, nil
}

// UnpinPage decrements id's pin count, handing the frame to the replacer's
// candidate set once it reaches zero, and OR-ing dirty into the frame's
// dirty flag. Returns false if the page is not cached or already unpinned.
func (bp *BufferPoolManager) UnpinPage(id PageId, dirty bool) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	idx, ok := bp.pageTable[id]
	if !ok {
		return false
	}
	frame := &bp.frames[idx]
	if frame.PinCount <= 0 {
		return false
	}

	frame.PinCount--
	frame.IsDirty = frame.IsDirty || dirty
	if frame.PinCount == 0 {
		bp.replacer.Unpin(idx)
	}
	return true
}

// FlushPage writes the bound frame unconditionally and clears its dirty
// flag.
func (bp *BufferPoolManager) FlushPage(id PageId) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	idx, ok := bp.pageTable[id]
	if !ok {
		return ErrPageNotCached
	}
	frame := &bp.frames[idx]
	if err := bp.disk.WritePage(id.Fd, id.PageNo, frame.Data[:]); err != nil {
		return fmt.Errorf("buffer pool: flush page %+v: %w", id, err)
	}
	frame.IsDirty = false
	return nil
}

// FlushAllPages flushes every cached page belonging to fd.
func (bp *BufferPoolManager) FlushAllPages(fd int) error {
	bp.mu.Lock()
	ids := make([]PageId, 0, len(bp.pageTable))
	for id := range bp.pageTable {
		if id.Fd == fd {
			ids = append(ids, id)
		}
	}
	bp.mu.Unlock()

	for _, id := range ids {
		if err := bp.FlushPage(id); err != nil {
			return err
		}
	}
	return nil
}

// DeletePage refuses to delete a pinned page. Deleting an uncached page
// succeeds trivially. Otherwise it writes back a dirty frame, drops the
// page table entry, and returns the frame to the free list.
func (bp *BufferPoolManager) DeletePage(id PageId) (bool, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	idx, ok := bp.pageTable[id]
	if !ok {
		return true, nil
	}
	frame := &bp.frames[idx]
	if frame.PinCount > 0 {
		return false, ErrFramePinned
	}

	if frame.IsDirty {
		if err := bp.disk.WritePage(id.Fd, id.PageNo, frame.Data[:]); err != nil {
			return false, fmt.Errorf("buffer pool: flush before delete %+v: %w", id, err)
		}
	}

	delete(bp.pageTable, id)
	bp.replacer.Pin(idx) // ensure it cannot be re-victimized mid-reset
	frame.ID = InvalidPageId
	frame.Data = [PageSize]byte{}
	frame.PinCount = 0
	frame.IsDirty = false
	bp.freeList = append(bp.freeList, idx)

	return true, nil
}
