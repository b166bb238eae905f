package storage

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// IndexHandle owns the buffer pool, disk manager, and file descriptor for
// one B+tree index file, guarded by a single root_latch mutex held for the
// duration of every logical operation.
type IndexHandle struct {
	mu sync.Mutex

	pool   *BufferPoolManager
	disk   DiskManager
	fd     int
	logger *zap.Logger

	fileHdr    IxFileHdr
	searchMode SearchMode
}

// CreateIndex initializes a brand new, empty index file on fd.
func CreateIndex(pool *BufferPoolManager, disk DiskManager, fd int, cols []Column, logger *zap.Logger) (*IndexHandle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	handle, err := pool.NewPage(fd)
	if err != nil {
		return nil, fmt.Errorf("create index: allocate header page: %w", err)
	}
	hdr := NewIxFileHdr(cols)
	hdr.Marshal(handle.Data())
	handle.Unpin(true)

	disk.SetFd2PageNo(fd, 1)

	return &IndexHandle{pool: pool, disk: disk, fd: fd, logger: logger, fileHdr: hdr}, nil
}

// OpenIndex reopens an existing index file, reading its header from page 0.
func OpenIndex(pool *BufferPoolManager, disk DiskManager, fd int, logger *zap.Logger) (*IndexHandle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	handle, err := pool.FetchPage(PageId{Fd: fd, PageNo: IxFileHdrPage})
	if err != nil {
		return nil, fmt.Errorf("open index: fetch header page: %w", err)
	}
	hdr, err := UnmarshalIxFileHdr(handle.Data())
	handle.Unpin(false)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	disk.SetFd2PageNo(fd, hdr.NumPages)

	return &IndexHandle{pool: pool, disk: disk, fd: fd, logger: logger, fileHdr: hdr}, nil
}

// SetSearchMode selects binary or linear search within node key arrays.
func (idx *IndexHandle) SetSearchMode(m SearchMode) { idx.searchMode = m }

func (idx *IndexHandle) saveHeader() error {
	handle, err := idx.pool.FetchPage(PageId{Fd: idx.fd, PageNo: IxFileHdrPage})
	if err != nil {
		return fmt.Errorf("save header: %w", err)
	}
	idx.fileHdr.Marshal(handle.Data())
	handle.Unpin(true)
	return nil
}

func (idx *IndexHandle) fetchNode(pageNo int32) (*PageHandle, *NodeHandle, error) {
	handle, err := idx.pool.FetchPage(PageId{Fd: idx.fd, PageNo: pageNo})
	if err != nil {
		return nil, nil, err
	}
	node := NewNodeHandle(handle.Data(), idx.fileHdr)
	node.SearchMode = idx.searchMode
	return handle, node, nil
}

// allocNode gives out a fresh node page, preferring a page off the freed
// list over growing the file.
func (idx *IndexHandle) allocNode(isLeaf bool) (*PageHandle, *NodeHandle, error) {
	var (
		handle *PageHandle
		err    error
	)

	if idx.fileHdr.FreeListHead != IxNoPage {
		pageNo := idx.fileHdr.FreeListHead
		handle, err = idx.pool.FetchPage(PageId{Fd: idx.fd, PageNo: pageNo})
		if err != nil {
			return nil, nil, fmt.Errorf("alloc node: reuse free page %d: %w", pageNo, err)
		}
		idx.fileHdr.FreeListHead = unmarshalInt32(handle.Data(), 0)
		idx.fileHdr.NumPages++
	} else {
		handle, err = idx.pool.NewPage(idx.fd)
		if err != nil {
			return nil, nil, fmt.Errorf("alloc node: %w", err)
		}
		idx.fileHdr.NumPages++
	}

	data := handle.Data()
	for i := range data {
		data[i] = 0
	}

	node := NewNodeHandle(data, idx.fileHdr)
	node.SearchMode = idx.searchMode
	node.SetLeaf(isLeaf)
	node.SetParent(IxNoPage)
	node.SetPrevLeaf(IxLeafHeaderPage)
	node.SetNextLeaf(IxLeafHeaderPage)

	return handle, node, nil
}

// freePage links pageNo onto the file's free list and releases its pin.
// NumPages is decremented so it keeps counting only live pages.
func (idx *IndexHandle) freePage(handle *PageHandle, pageNo int32) {
	data := handle.Data()
	for i := range data {
		data[i] = 0
	}
	marshalInt32(data, idx.fileHdr.FreeListHead, 0)
	idx.fileHdr.FreeListHead = pageNo
	idx.fileHdr.NumPages--
	handle.Unpin(true)
}

func (idx *IndexHandle) maintainChildParent(childPageNo, parentPageNo int32) error {
	handle, node, err := idx.fetchNode(childPageNo)
	if err != nil {
		return fmt.Errorf("maintain child: %w", err)
	}
	node.SetParent(parentPageNo)
	handle.Unpin(true)
	return nil
}

// findLeafPage descends from the root, unpinning each ancestor as the child
// is fetched. The caller owns the returned handle and must unpin it.
func (idx *IndexHandle) findLeafPage(key []byte) (*PageHandle, *NodeHandle, error) {
	if idx.fileHdr.RootPage == IxNoPage {
		return nil, nil, ErrTreeEmpty
	}

	handle, node, err := idx.fetchNode(idx.fileHdr.RootPage)
	if err != nil {
		return nil, nil, err
	}
	for !node.IsLeaf() {
		childNo := node.InternalLookup(key)
		handle.Unpin(false)
		handle, node, err = idx.fetchNode(childNo)
		if err != nil {
			return nil, nil, err
		}
	}
	return handle, node, nil
}

// GetValue descends to the leaf and collects every contiguous rid stored
// under key.
func (idx *IndexHandle) GetValue(key []byte) ([]Rid, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	handle, node, err := idx.findLeafPage(key)
	if errors.Is(err, ErrTreeEmpty) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer handle.Unpin(false)

	var rids []Rid
	pos := node.LowerBound(key)
	for pos < node.NumKey() && node.compare(node.KeyAt(pos), key) == 0 {
		rids = append(rids, node.RidAt(pos))
		pos++
	}
	return rids, nil
}

// InsertEntry inserts (key, rid) and returns the page number the entry
// landed on (the original leaf, or its new right sibling if a split
// occurred and key belongs there).
func (idx *IndexHandle) InsertEntry(key []byte, rid Rid) (int32, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.fileHdr.RootPage == IxNoPage {
		handle, node, err := idx.allocNode(true)
		if err != nil {
			return 0, err
		}
		node.Insert(key, rid)
		pageNo := handle.ID().PageNo
		idx.fileHdr.RootPage = pageNo
		idx.fileHdr.FirstLeaf = pageNo
		idx.fileHdr.LastLeaf = pageNo
		handle.Unpin(true)
		return pageNo, idx.saveHeader()
	}

	handle, node, err := idx.findLeafPage(key)
	if err != nil {
		return 0, err
	}

	if !node.Insert(key, rid) {
		pageNo := handle.ID().PageNo
		handle.Unpin(false)
		return pageNo, nil
	}

	if err := idx.maintainParent(handle, node); err != nil {
		handle.Unpin(true)
		return 0, err
	}

	insertionPage := handle.ID().PageNo

	if node.NumKey() >= node.MaxSize() {
		newHandle, newNode, err := idx.split(handle, node)
		if err != nil {
			handle.Unpin(true)
			return 0, err
		}
		firstNewKey := append([]byte(nil), newNode.KeyAt(0)...)
		if node.compare(key, firstNewKey) >= 0 {
			insertionPage = newHandle.ID().PageNo
		}
		if err := idx.insertIntoParent(handle, node, firstNewKey, newHandle, newNode); err != nil {
			handle.Unpin(true)
			newHandle.Unpin(true)
			return 0, err
		}
		newHandle.Unpin(true)
	}

	handle.Unpin(true)
	return insertionPage, idx.saveHeader()
}

// split moves the upper half of node's entries into a freshly allocated
// node, maintaining the leaf chain / parent-pointer bookkeeping required
// for whichever kind of node it is.
func (idx *IndexHandle) split(handle *PageHandle, node *NodeHandle) (*PageHandle, *NodeHandle, error) {
	mid := node.NumKey() / 2
	count := node.NumKey() - mid

	newHandle, newNode, err := idx.allocNode(node.IsLeaf())
	if err != nil {
		return nil, nil, fmt.Errorf("split: %w", err)
	}

	keys := make([][]byte, count)
	rids := make([]Rid, count)
	for i := uint32(0); i < count; i++ {
		keys[i] = append([]byte(nil), node.KeyAt(mid+i)...)
		rids[i] = node.RidAt(mid + i)
	}
	newNode.InsertPairs(0, keys, rids)
	node.setNumKey(mid)

	newNode.SetParent(node.Parent())

	if node.IsLeaf() {
		newNode.SetNextLeaf(node.NextLeaf())
		newNode.SetPrevLeaf(handle.ID().PageNo)
		if node.NextLeaf() != IxLeafHeaderPage {
			neighborHandle, neighborNode, err := idx.fetchNode(node.NextLeaf())
			if err != nil {
				return nil, nil, fmt.Errorf("split: relink leaf chain: %w", err)
			}
			neighborNode.SetPrevLeaf(newHandle.ID().PageNo)
			neighborHandle.Unpin(true)
		} else {
			idx.fileHdr.LastLeaf = newHandle.ID().PageNo
		}
		node.SetNextLeaf(newHandle.ID().PageNo)
	} else {
		for i := uint32(0); i < newNode.NumKey(); i++ {
			if err := idx.maintainChildParent(newNode.ChildAt(i), newHandle.ID().PageNo); err != nil {
				return nil, nil, err
			}
		}
	}

	return newHandle, newNode, nil
}

// insertIntoParent wires (sepKey -> new) into old's parent, creating a new
// root if old had none, and recursively splits the parent on overflow.
func (idx *IndexHandle) insertIntoParent(oldHandle *PageHandle, oldNode *NodeHandle, sepKey []byte, newHandle *PageHandle, newNode *NodeHandle) error {
	if oldNode.Parent() == IxNoPage {
		rootHandle, rootNode, err := idx.allocNode(false)
		if err != nil {
			return fmt.Errorf("insert into parent: new root: %w", err)
		}
		firstKeyOld := append([]byte(nil), oldNode.KeyAt(0)...)
		rootNode.InsertPairs(0,
			[][]byte{firstKeyOld, sepKey},
			[]Rid{{PageNo: oldHandle.ID().PageNo}, {PageNo: newHandle.ID().PageNo}},
		)
		idx.fileHdr.RootPage = rootHandle.ID().PageNo
		oldNode.SetParent(rootHandle.ID().PageNo)
		newNode.SetParent(rootHandle.ID().PageNo)
		rootHandle.Unpin(true)
		return nil
	}

	parentHandle, parentNode, err := idx.fetchNode(oldNode.Parent())
	if err != nil {
		return fmt.Errorf("insert into parent: fetch parent: %w", err)
	}

	pos, ok := parentNode.FindChild(oldHandle.ID().PageNo)
	if !ok {
		parentHandle.Unpin(false)
		return fmt.Errorf("insert into parent: old child not found in parent")
	}
	parentNode.InsertPairs(pos+1, [][]byte{sepKey}, []Rid{{PageNo: newHandle.ID().PageNo}})
	newNode.SetParent(parentHandle.ID().PageNo)

	if parentNode.NumKey() >= parentNode.MaxSize() {
		newParentHandle, newParentNode, err := idx.split(parentHandle, parentNode)
		if err != nil {
			parentHandle.Unpin(true)
			return err
		}
		firstNewParentKey := append([]byte(nil), newParentNode.KeyAt(0)...)
		if err := idx.insertIntoParent(parentHandle, parentNode, firstNewParentKey, newParentHandle, newParentNode); err != nil {
			parentHandle.Unpin(true)
			newParentHandle.Unpin(true)
			return err
		}
		newParentHandle.Unpin(true)
	}

	parentHandle.Unpin(true)
	return nil
}

// maintainParent rewrites ancestor separators while they still mirror
// node's old first key, stopping at the root or the first unchanged one.
func (idx *IndexHandle) maintainParent(handle *PageHandle, node *NodeHandle) error {
	if node.NumKey() == 0 {
		return nil
	}

	childPageNo := handle.ID().PageNo
	parentPageNo := node.Parent()
	firstKey := append([]byte(nil), node.KeyAt(0)...)

	for parentPageNo != IxNoPage {
		parentHandle, parentNode, err := idx.fetchNode(parentPageNo)
		if err != nil {
			return fmt.Errorf("maintain parent: %w", err)
		}

		pos, ok := parentNode.FindChild(childPageNo)
		if !ok {
			parentHandle.Unpin(false)
			return nil
		}
		if parentNode.compare(parentNode.KeyAt(pos), firstKey) == 0 {
			parentHandle.Unpin(false)
			return nil
		}
		parentNode.setKeyAt(pos, firstKey)

		if pos != 0 {
			parentHandle.Unpin(true)
			return nil
		}

		firstKey = append([]byte(nil), parentNode.KeyAt(0)...)
		childPageNo = parentPageNo
		parentPageNo = parentNode.Parent()
		parentHandle.Unpin(true)
	}
	return nil
}

// DeleteEntry removes key's entry, rebalancing as needed. Returns whether
// the key was present.
func (idx *IndexHandle) DeleteEntry(key []byte) (bool, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	handle, node, err := idx.findLeafPage(key)
	if errors.Is(err, ErrTreeEmpty) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if !node.Remove(key) {
		handle.Unpin(false)
		return false, nil
	}

	if err := idx.maintainParent(handle, node); err != nil {
		handle.Unpin(true)
		return false, err
	}

	shouldDelete, err := idx.coalesceOrRedistribute(handle, node)
	if err != nil {
		handle.Unpin(true)
		return false, err
	}

	if shouldDelete {
		idx.freePage(handle, handle.ID().PageNo)
	} else {
		handle.Unpin(true)
	}

	return true, idx.saveHeader()
}

// coalesceOrRedistribute runs the underflow rebalancing decision tree,
// returning whether node's own page must be freed by the caller.
func (idx *IndexHandle) coalesceOrRedistribute(handle *PageHandle, node *NodeHandle) (bool, error) {
	if node.Parent() == IxNoPage {
		return idx.adjustRoot(handle, node)
	}
	if node.NumKey() >= node.MinSize() {
		return false, nil
	}

	parentHandle, parentNode, err := idx.fetchNode(node.Parent())
	if err != nil {
		return false, fmt.Errorf("coalesce or redistribute: fetch parent: %w", err)
	}

	nodeIdx, ok := parentNode.FindChild(handle.ID().PageNo)
	if !ok {
		parentHandle.Unpin(false)
		return false, fmt.Errorf("coalesce or redistribute: child not found in parent")
	}

	var neighborIdx uint32
	if nodeIdx > 0 {
		neighborIdx = nodeIdx - 1
	} else {
		neighborIdx = nodeIdx + 1
	}
	neighborHandle, neighborNode, err := idx.fetchNode(parentNode.ChildAt(neighborIdx))
	if err != nil {
		parentHandle.Unpin(false)
		return false, fmt.Errorf("coalesce or redistribute: fetch neighbor: %w", err)
	}

	if node.NumKey()+neighborNode.NumKey() >= 2*node.MinSize() {
		idx.redistribute(neighborHandle, neighborNode, handle, node, nodeIdx, neighborIdx, parentNode)
		neighborHandle.Unpin(true)
		parentHandle.Unpin(true)
		return false, nil
	}

	var (
		leftHandle, rightHandle *PageHandle
		leftNode, rightNode     *NodeHandle
		rightIdxInParent        uint32
	)
	if nodeIdx == 0 {
		leftHandle, leftNode = handle, node
		rightHandle, rightNode = neighborHandle, neighborNode
		rightIdxInParent = neighborIdx
	} else {
		leftHandle, leftNode = neighborHandle, neighborNode
		rightHandle, rightNode = handle, node
		rightIdxInParent = nodeIdx
	}
	if err := idx.mergeInto(leftHandle, leftNode, rightHandle, rightNode, parentNode, rightIdxInParent); err != nil {
		parentHandle.Unpin(true)
		neighborHandle.Unpin(true)
		return false, err
	}

	deleteParent, err := idx.coalesceOrRedistribute(parentHandle, parentNode)
	if err != nil {
		parentHandle.Unpin(true)
		neighborHandle.Unpin(true)
		return false, err
	}
	if deleteParent {
		idx.freePage(parentHandle, parentHandle.ID().PageNo)
	} else {
		parentHandle.Unpin(true)
	}

	if rightHandle.ID().PageNo == handle.ID().PageNo {
		neighborHandle.Unpin(true)
		return true, nil
	}
	idx.freePage(neighborHandle, neighborHandle.ID().PageNo)
	return false, nil
}

// adjustRoot handles the two cases where the root itself must shrink.
func (idx *IndexHandle) adjustRoot(handle *PageHandle, node *NodeHandle) (bool, error) {
	if !node.IsLeaf() && node.NumKey() == 1 {
		childPageNo := node.ChildAt(0)
		childHandle, childNode, err := idx.fetchNode(childPageNo)
		if err != nil {
			return false, fmt.Errorf("adjust root: %w", err)
		}
		childNode.SetParent(IxNoPage)
		idx.fileHdr.RootPage = childPageNo
		childHandle.Unpin(true)
		return true, nil
	}
	if node.IsLeaf() && node.NumKey() == 0 {
		idx.fileHdr.RootPage = IxNoPage
		idx.fileHdr.FirstLeaf = IxNoPage
		idx.fileHdr.LastLeaf = IxNoPage
		return true, nil
	}
	return false, nil
}

// redistribute shifts one pair across the node/neighbor boundary and
// refreshes the parent separator it invalidates.
func (idx *IndexHandle) redistribute(neighborHandle *PageHandle, neighborNode *NodeHandle, handle *PageHandle, node *NodeHandle, nodeIdx, neighborIdx uint32, parentNode *NodeHandle) {
	if nodeIdx == 0 {
		firstKey := append([]byte(nil), neighborNode.KeyAt(0)...)
		firstRid := neighborNode.RidAt(0)
		neighborNode.ErasePair(0)
		node.InsertPairs(node.NumKey(), [][]byte{firstKey}, []Rid{firstRid})
		if !node.IsLeaf() {
			_ = idx.maintainChildParent(firstRid.PageNo, handle.ID().PageNo)
		}
		parentNode.setKeyAt(neighborIdx, append([]byte(nil), neighborNode.KeyAt(0)...))
		return
	}

	lastIdx := neighborNode.NumKey() - 1
	lastKey := append([]byte(nil), neighborNode.KeyAt(lastIdx)...)
	lastRid := neighborNode.RidAt(lastIdx)
	neighborNode.ErasePair(lastIdx)
	node.InsertPairs(0, [][]byte{lastKey}, []Rid{lastRid})
	if !node.IsLeaf() {
		_ = idx.maintainChildParent(lastRid.PageNo, handle.ID().PageNo)
	}
	parentNode.setKeyAt(nodeIdx, append([]byte(nil), node.KeyAt(0)...))
}

// mergeInto appends right's entries onto left, relinks the leaf chain (for
// leaves) or reparents moved children (for internal nodes), and removes
// the parent's entry for right. right's logical size is zeroed; the caller
// is responsible for freeing its page.
func (idx *IndexHandle) mergeInto(leftHandle *PageHandle, leftNode *NodeHandle, rightHandle *PageHandle, rightNode *NodeHandle, parentNode *NodeHandle, rightIdxInParent uint32) error {
	count := rightNode.NumKey()
	keys := make([][]byte, count)
	rids := make([]Rid, count)
	for i := uint32(0); i < count; i++ {
		keys[i] = append([]byte(nil), rightNode.KeyAt(i)...)
		rids[i] = rightNode.RidAt(i)
	}
	leftNode.InsertPairs(leftNode.NumKey(), keys, rids)

	if leftNode.IsLeaf() {
		leftNode.SetNextLeaf(rightNode.NextLeaf())
		if rightNode.NextLeaf() != IxLeafHeaderPage {
			nextHandle, nextNode, err := idx.fetchNode(rightNode.NextLeaf())
			if err != nil {
				return fmt.Errorf("merge: relink leaf chain: %w", err)
			}
			nextNode.SetPrevLeaf(leftHandle.ID().PageNo)
			nextHandle.Unpin(true)
		} else {
			idx.fileHdr.LastLeaf = leftHandle.ID().PageNo
		}
	} else {
		for _, r := range rids {
			if err := idx.maintainChildParent(r.PageNo, leftHandle.ID().PageNo); err != nil {
				return err
			}
		}
	}

	parentNode.ErasePair(rightIdxInParent)
	rightNode.setNumKey(0)
	return nil
}

// LeafBegin returns the cursor to the first (key, rid) pair in the tree.
func (idx *IndexHandle) LeafBegin() Iid {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.fileHdr.FirstLeaf == IxNoPage {
		return InvalidIid
	}
	return Iid{PageNo: idx.fileHdr.FirstLeaf, SlotNo: 0}
}

// LeafEnd returns the sentinel past-the-end cursor.
func (idx *IndexHandle) LeafEnd() (Iid, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.leafEndLocked()
}

func (idx *IndexHandle) leafEndLocked() (Iid, error) {
	if idx.fileHdr.LastLeaf == IxNoPage {
		return InvalidIid, nil
	}
	handle, node, err := idx.fetchNode(idx.fileHdr.LastLeaf)
	if err != nil {
		return Iid{}, err
	}
	defer handle.Unpin(false)
	return Iid{PageNo: idx.fileHdr.LastLeaf, SlotNo: int32(node.NumKey())}, nil
}

// LowerBound descends to the first key >= target, scanning forward across
// leaves if the target falls past the descended-to leaf's local range.
func (idx *IndexHandle) LowerBound(key []byte) (Iid, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.bound(key, false)
}

// UpperBound is LowerBound with a strict comparison.
func (idx *IndexHandle) UpperBound(key []byte) (Iid, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.bound(key, true)
}

func (idx *IndexHandle) bound(key []byte, strict bool) (Iid, error) {
	handle, node, err := idx.findLeafPage(key)
	if errors.Is(err, ErrTreeEmpty) {
		return InvalidIid, nil
	}
	if err != nil {
		return Iid{}, err
	}

	for {
		var pos uint32
		if strict {
			pos = node.UpperBound(key)
		} else {
			pos = node.LowerBound(key)
		}
		if pos < node.NumKey() {
			iid := Iid{PageNo: handle.ID().PageNo, SlotNo: int32(pos)}
			handle.Unpin(false)
			return iid, nil
		}
		next := node.NextLeaf()
		handle.Unpin(false)
		if next == IxLeafHeaderPage {
			return idx.leafEndLocked()
		}
		handle, node, err = idx.fetchNode(next)
		if err != nil {
			return Iid{}, err
		}
	}
}

// NextIid advances a cursor by one slot, crossing into the next leaf when
// the current one is exhausted.
func (idx *IndexHandle) NextIid(iid Iid) (Iid, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	handle, node, err := idx.fetchNode(iid.PageNo)
	if err != nil {
		return Iid{}, err
	}

	if uint32(iid.SlotNo)+1 < node.NumKey() {
		handle.Unpin(false)
		return Iid{PageNo: iid.PageNo, SlotNo: iid.SlotNo + 1}, nil
	}
	next := node.NextLeaf()
	handle.Unpin(false)
	if next == IxLeafHeaderPage {
		return idx.leafEndLocked()
	}
	return Iid{PageNo: next, SlotNo: 0}, nil
}

// GetRid resolves a cursor to the Rid it points at.
func (idx *IndexHandle) GetRid(iid Iid) (Rid, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	handle, node, err := idx.fetchNode(iid.PageNo)
	if err != nil {
		return Rid{}, err
	}
	defer handle.Unpin(false)

	if iid.SlotNo < 0 || uint32(iid.SlotNo) >= node.NumKey() {
		return Rid{}, ErrIndexEntryNotFound
	}
	return node.RidAt(uint32(iid.SlotNo)), nil
}

// Columns exposes the index's column metadata, e.g. for building search keys.
func (idx *IndexHandle) Columns() []Column {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.fileHdr.Columns
}

// RootPage reports the current root page number, or IxNoPage if empty.
func (idx *IndexHandle) RootPage() int32 {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.fileHdr.RootPage
}

// NumPages reports the live page count.
func (idx *IndexHandle) NumPages() int32 {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.fileHdr.NumPages
}
