package txn

import "github.com/storagecore/storagecore/internal/storage"

// LockManager is consumed by the coordinator only at commit/abort, to
// release every lock a transaction accumulated while running.
type LockManager interface {
	Unlock(txn *Transaction, lockID string) error
}

// SystemManager is consumed by abort only, to undo heap mutations in LIFO
// order. Each method mirrors one write-set entry kind.
type SystemManager interface {
	RollbackInsert(table string, rid storage.Rid) error
	RollbackDelete(table string, rid storage.Rid, priorRecord []byte) error
	RollbackUpdate(table string, rid storage.Rid, priorRecord []byte) error
}

// LogManager is an optional collaborator: when present, commit and abort
// append a record of the outcome and flush it before returning.
type LogManager interface {
	Append(record []byte) error
	Flush() error
}
