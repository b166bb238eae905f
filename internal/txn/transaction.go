package txn

import (
	"sync"

	"github.com/storagecore/storagecore/internal/storage"
)

// Kind identifies which heap mutation a WriteSetEntry compensates for.
type Kind int

const (
	KindInsert Kind = iota
	KindDelete
	KindUpdate
)

func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "INSERT"
	case KindDelete:
		return "DELETE"
	case KindUpdate:
		return "UPDATE"
	default:
		return "UNKNOWN"
	}
}

// WriteSetEntry is one compensation record: enough to undo a single heap
// mutation. PriorRecord is nil for INSERT (there is nothing to restore,
// only the new rid to remove).
type WriteSetEntry struct {
	Kind        Kind
	Table       string
	Rid         storage.Rid
	PriorRecord []byte
}

// State is a transaction's position in its lifecycle. GROWING/SHRINKING
// name the two-phase-locking phases; nothing in this package sets them.
// The Coordinator moves a transaction from DEFAULT straight to COMMITTED
// or ABORTED.
type State int

const (
	StateDefault State = iota
	StateGrowing
	StateShrinking
	StateCommitted
	StateAborted
)

// ID is a transaction's identity: a monotonically increasing value handed
// out by the Coordinator.
type ID int64

// Transaction accumulates a LIFO write set and a lock set over its
// lifetime. Isolation level is fixed to SERIALIZABLE by this core.
type Transaction struct {
	mu sync.Mutex

	id    ID
	state State

	writeSet []WriteSetEntry
	lockSet  []string
}

func newTransaction(id ID) *Transaction {
	return &Transaction{id: id, state: StateDefault}
}

// ID returns the transaction's identity.
func (t *Transaction) ID() ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

// State returns the transaction's current lifecycle state.
func (t *Transaction) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Transaction) setState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s
}

// AppendWrite records a compensation entry. Executors call this after every
// successful heap mutation, in the order the mutations occurred — the
// coordinator consumes the set in reverse (LIFO) on abort.
func (t *Transaction) AppendWrite(entry WriteSetEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeSet = append(t.writeSet, entry)
}

// AcquireLock records a lock id the transaction holds, so the coordinator
// can release it at commit/abort. Executors call this after successfully
// acquiring the lock from the lock manager; the coordinator never acquires
// locks itself.
func (t *Transaction) AcquireLock(lockID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lockSet = append(t.lockSet, lockID)
}

// popWrite removes and returns the most recently appended write-set entry.
func (t *Transaction) popWrite() (WriteSetEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.writeSet) == 0 {
		return WriteSetEntry{}, false
	}
	last := len(t.writeSet) - 1
	entry := t.writeSet[last]
	t.writeSet = t.writeSet[:last]
	return entry, true
}

// drainLocks returns a snapshot of the current lock set and clears it.
func (t *Transaction) drainLocks() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	locks := t.lockSet
	t.lockSet = nil
	return locks
}

// clearWrites discards the write set without applying any compensation,
// used by commit.
func (t *Transaction) clearWrites() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeSet = nil
}
