package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/storagecore/storagecore/pkg/clockreplacer"
	"github.com/storagecore/storagecore/pkg/lrucache"
)

func newTestPool(t *testing.T, poolSize int) (*BufferPoolManager, int) {
	t.Helper()
	file := newMemFile()
	disk := NewDiskManager(map[int]DBFile{1: file})
	pool := NewBufferPoolManager(poolSize, disk, clockreplacer.New(poolSize), nil)
	return pool, 1
}

// TestBufferPool_Eviction checks that, in a pool of size 3 with pages A, B,
// C pinned and only B unpinned, fetching a fourth page D evicts B; refetching
// B afterward must read back its last-written contents from disk.
func TestBufferPool_Eviction(t *testing.T) {
	pool, fd := newTestPool(t, 3)

	a, err := pool.NewPage(fd)
	require.NoError(t, err)
	b, err := pool.NewPage(fd)
	require.NoError(t, err)
	c, err := pool.NewPage(fd)
	require.NoError(t, err)

	copy(b.Data(), []byte("original-b"))
	require.True(t, b.Unpin(true))

	d, err := pool.NewPage(fd)
	require.NoError(t, err)
	require.NotEqual(t, b.ID(), d.ID())

	// Free a frame (c) so the re-fetch of b below has a victim available:
	// a, b's evictor d, and c's own frame are otherwise all pinned.
	require.True(t, c.Unpin(false))

	bAgain, err := pool.FetchPage(b.ID())
	require.NoError(t, err)
	require.Equal(t, byte('o'), bAgain.Data()[0])
	require.Equal(t, byte('b'), bAgain.Data()[9])

	require.True(t, a.Unpin(false))
	require.True(t, d.Unpin(false))
	require.True(t, bAgain.Unpin(false))
}

// TestBufferPool_CapacityExhausted checks that pinning every frame and
// requesting one more page signals exhaustion rather than panicking.
func TestBufferPool_CapacityExhausted(t *testing.T) {
	pool, fd := newTestPool(t, 2)

	_, err := pool.NewPage(fd)
	require.NoError(t, err)
	_, err = pool.NewPage(fd)
	require.NoError(t, err)

	_, err = pool.NewPage(fd)
	require.ErrorIs(t, err, ErrCapacityExhausted)
}

// TestBufferPool_FlushAllRoundTrips checks that after flush_all_pages,
// on-disk bytes equal the last written value.
func TestBufferPool_FlushAllRoundTrips(t *testing.T) {
	pool, fd := newTestPool(t, 4)

	handle, err := pool.NewPage(fd)
	require.NoError(t, err)
	copy(handle.Data(), []byte("round-trip"))
	require.True(t, handle.Unpin(true))

	require.NoError(t, pool.FlushAllPages(fd))

	require.True(t, pool.DeletePageForTest(handle.ID()))

	reread, err := pool.FetchPage(handle.ID())
	require.NoError(t, err)
	require.Equal(t, []byte("round-trip"), reread.Data()[:10])
	require.True(t, reread.Unpin(false))
}

// TestBufferPool_PinBalance checks that once every page is unpinned, every
// frame's pin count is back to zero and each frame is an eviction candidate
// in the replacer. Unpinning does not return frames to the free list; only
// DeletePage does.
func TestBufferPool_PinBalance(t *testing.T) {
	pool, fd := newTestPool(t, 2)

	a, err := pool.NewPage(fd)
	require.NoError(t, err)
	b, err := pool.NewPage(fd)
	require.NoError(t, err)
	require.True(t, a.Unpin(false))
	require.True(t, b.Unpin(false))

	for i := range pool.frames {
		require.Zero(t, pool.frames[i].PinCount)
	}
	require.Equal(t, 2, pool.replacer.Size())
	require.Equal(t, 0, len(pool.freeList))
}

// TestBufferPool_LRUReplacerIsAPluggableAlternative swaps in
// pkg/lrucache's Replacer for the clock policy and re-runs the eviction
// scenario: the pool's eviction behavior is defined entirely by the
// Replacer contract, not by which concrete policy implements it.
func TestBufferPool_LRUReplacerIsAPluggableAlternative(t *testing.T) {
	file := newMemFile()
	disk := NewDiskManager(map[int]DBFile{1: file})
	pool := NewBufferPoolManager(3, disk, lrucache.NewReplacer(3), nil)

	a, err := pool.NewPage(1)
	require.NoError(t, err)
	b, err := pool.NewPage(1)
	require.NoError(t, err)
	c, err := pool.NewPage(1)
	require.NoError(t, err)

	copy(b.Data(), []byte("lru-b"))
	require.True(t, b.Unpin(true))

	d, err := pool.NewPage(1)
	require.NoError(t, err)
	require.NotEqual(t, b.ID(), d.ID())

	require.True(t, c.Unpin(false))

	bAgain, err := pool.FetchPage(b.ID())
	require.NoError(t, err)
	require.Equal(t, []byte("lru-b"), bAgain.Data()[:5])

	require.True(t, a.Unpin(false))
	require.True(t, d.Unpin(false))
	require.True(t, bAgain.Unpin(false))
}

// DeletePageForTest exposes DeletePage without requiring callers outside
// the package to reason about its pinned-page contract in every test.
func (bp *BufferPoolManager) DeletePageForTest(id PageId) bool {
	ok, err := bp.DeletePage(id)
	if err != nil {
		return false
	}
	return ok
}
