package storage

import (
	"fmt"
	"io"
	"sync"
)

// DBFile is the minimal file handle the disk manager needs from an open
// descriptor: positional reads and writes plus Close.
type DBFile interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
}

// DiskManager reads and writes fixed-size pages to file descriptors and
// allocates fresh page numbers per file. It performs no buffering of its
// own — every call hits the underlying DBFile.
type DiskManager interface {
	ReadPage(fd int, pageNo int32, buf []byte) error
	WritePage(fd int, pageNo int32, buf []byte) error
	AllocatePage(fd int) int32
	SetFd2PageNo(fd int, n int32)
}

type fileDiskManager struct {
	mu        sync.Mutex
	files     map[int]DBFile
	nextPages map[int]int32
}

// NewDiskManager builds a DiskManager backed by the given fd -> DBFile table.
func NewDiskManager(files map[int]DBFile) DiskManager {
	return &fileDiskManager{
		files:     files,
		nextPages: make(map[int]int32),
	}
}

func (dm *fileDiskManager) file(fd int) (DBFile, error) {
	f, ok := dm.files[fd]
	if !ok {
		return nil, fmt.Errorf("disk manager: unknown fd %d", fd)
	}
	return f, nil
}

func (dm *fileDiskManager) ReadPage(fd int, pageNo int32, buf []byte) error {
	f, err := dm.file(fd)
	if err != nil {
		return err
	}
	if len(buf) != PageSize {
		return fmt.Errorf("disk manager: read buffer must be %d bytes, got %d", PageSize, len(buf))
	}
	offset := int64(pageNo) * int64(PageSize)
	_, err = f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return fmt.Errorf("disk manager: read page %d on fd %d: %w", pageNo, fd, err)
	}
	return nil
}

func (dm *fileDiskManager) WritePage(fd int, pageNo int32, buf []byte) error {
	f, err := dm.file(fd)
	if err != nil {
		return err
	}
	if len(buf) != PageSize {
		return fmt.Errorf("disk manager: write buffer must be %d bytes, got %d", PageSize, len(buf))
	}
	offset := int64(pageNo) * int64(PageSize)
	if _, err := f.WriteAt(buf, offset); err != nil {
		return fmt.Errorf("disk manager: write page %d on fd %d: %w", pageNo, fd, err)
	}
	return nil
}

// AllocatePage returns the next page number for fd and advances the
// per-fd counter. The caller is responsible for actually writing the page.
func (dm *fileDiskManager) AllocatePage(fd int) int32 {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	n := dm.nextPages[fd]
	dm.nextPages[fd] = n + 1
	return n
}

// SetFd2PageNo initializes the allocator for fd after opening a file whose
// highest existing page number is n-1.
func (dm *fileDiskManager) SetFd2PageNo(fd int, n int32) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	dm.nextPages[fd] = n
}
