package storage

import "errors"

var (
	// ErrCapacityExhausted is returned when every frame in the pool is
	// pinned and no victim can be found for a fetch/new page request.
	ErrCapacityExhausted = errors.New("buffer pool: no free frame available")

	// ErrPageNotCached is returned by FlushPage for a page id that is not
	// currently resident in the pool. (UnpinPage reports that case with
	// false; DeletePage treats it as already deleted.)
	ErrPageNotCached = errors.New("buffer pool: page not cached")

	// ErrFramePinned is returned by delete_page when the target frame
	// still has outstanding pins.
	ErrFramePinned = errors.New("buffer pool: page is pinned")

	// ErrIndexEntryNotFound is returned by get_rid when the requested slot
	// falls outside the node's key range.
	ErrIndexEntryNotFound = errors.New("index: entry not found")

	// ErrTreeEmpty is returned by descent operations on an index with no
	// root page.
	ErrTreeEmpty = errors.New("index: tree is empty")

	// ErrRecordNotFound is returned when a Rid does not point at an
	// occupied slot.
	ErrRecordNotFound = errors.New("heap: record not found")
)
