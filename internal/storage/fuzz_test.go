package storage

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/storagecore/storagecore/pkg/clockreplacer"
)

// dataGen produces fake-but-realistic fixed-width rows for storage stress
// tests.
type dataGen struct {
	*gofakeit.Faker
}

func newDataGen(seed uint64) *dataGen {
	return &dataGen{Faker: gofakeit.New(int64(seed))}
}

const emailColSize = 64

func emailKeyColumns() []Column {
	return []Column{{Kind: Varchar, Size: emailColSize}}
}

func (g *dataGen) emailKey() []byte {
	buf := make([]byte, emailColSize)
	copy(buf, g.Email())
	return buf
}

// TestIndex_RandomEmailsRoundTrip inserts a batch of fake-generated,
// deduplicated email keys and checks every one is retrievable and the chain
// enumerates in sorted order.
func TestIndex_RandomEmailsRoundTrip(t *testing.T) {
	gen := newDataGen(42)

	file := newMemFile()
	disk := NewDiskManager(map[int]DBFile{1: file})
	pool := NewBufferPoolManager(256, disk, clockreplacer.New(256), nil)
	idx, err := CreateIndex(pool, disk, 1, emailKeyColumns(), nil)
	require.NoError(t, err)

	seen := map[string]Rid{}
	for len(seen) < 200 {
		key := gen.emailKey()
		if _, dup := seen[string(key)]; dup {
			continue
		}
		rid := Rid{PageNo: 0, SlotNo: int32(len(seen))}
		_, err := idx.InsertEntry(key, rid)
		require.NoError(t, err)
		seen[string(key)] = rid
	}

	for key, rid := range seen {
		got, err := idx.GetValue([]byte(key))
		require.NoError(t, err)
		require.Equal(t, []Rid{rid}, got)
	}

	iid := idx.LeafBegin()
	end, err := idx.LeafEnd()
	require.NoError(t, err)

	var prev []byte
	count := 0
	for iid != end {
		handle, leaf, err := idx.fetchNode(iid.PageNo)
		require.NoError(t, err)
		key := append([]byte(nil), leaf.KeyAt(uint32(iid.SlotNo))...)
		handle.Unpin(false)

		if prev != nil {
			require.LessOrEqual(t, CompareKeys(emailKeyColumns(), prev, key), 0)
		}
		prev = key
		count++

		iid, err = idx.NextIid(iid)
		require.NoError(t, err)
	}
	require.Equal(t, len(seen), count)
}

// TestHeap_RandomRecordsSurviveDeleteAndScan fuzzes insert/delete against a
// heap and cross-checks the final occupied set via a forward scan.
func TestHeap_RandomRecordsSurviveDeleteAndScan(t *testing.T) {
	gen := newDataGen(7)

	heap := newTestHeap(t, 64, emailColSize)

	live := map[Rid][]byte{}
	for i := 0; i < 150; i++ {
		data := make([]byte, emailColSize)
		copy(data, gen.Email())

		rid, err := heap.InsertRecord(data)
		require.NoError(t, err)
		live[rid] = data

		if i%5 == 0 && i > 0 {
			for victim := range live {
				require.NoError(t, heap.DeleteRecord(victim))
				delete(live, victim)
				break
			}
		}
	}

	scan, err := NewScan(heap)
	require.NoError(t, err)

	found := map[Rid][]byte{}
	for !scan.IsEnd() {
		rec, err := scan.Record()
		require.NoError(t, err)
		found[scan.Rid()] = append([]byte(nil), rec...)
		require.NoError(t, scan.Next())
	}

	require.Equal(t, live, found)
}
