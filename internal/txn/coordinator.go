package txn

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Coordinator begins, commits, and aborts transactions and owns the global
// transaction table, guarded by its own mutex (the source this core is
// modeled on left that table unprotected; here every lookup and mutation
// goes through coordMu).
type Coordinator struct {
	coordMu sync.Mutex
	nextID  ID
	table   map[ID]*Transaction

	lockManager   LockManager
	systemManager SystemManager
	logManager    LogManager // optional: nil disables log append/flush

	logger *zap.Logger
}

// NewCoordinator builds a Coordinator. logManager may be nil.
func NewCoordinator(lockManager LockManager, systemManager SystemManager, logManager LogManager, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		nextID:        1,
		table:         make(map[ID]*Transaction),
		lockManager:   lockManager,
		systemManager: systemManager,
		logManager:    logManager,
		logger:        logger,
	}
}

// Begin allocates a fresh transaction, registers it in the global table,
// and returns it. The allocated object is what gets registered — there is
// no separate outer variable for it to diverge from.
func (c *Coordinator) Begin() *Transaction {
	c.coordMu.Lock()
	defer c.coordMu.Unlock()

	txn := newTransaction(c.nextID)
	c.nextID++
	c.table[txn.id] = txn

	c.logger.Debug("begin transaction", zap.Int64("txn_id", int64(txn.id)))
	return txn
}

// Lookup returns the transaction registered under id, if still active.
func (c *Coordinator) Lookup(id ID) (*Transaction, bool) {
	c.coordMu.Lock()
	defer c.coordMu.Unlock()
	txn, ok := c.table[id]
	return txn, ok
}

func (c *Coordinator) unregister(txn *Transaction) {
	c.coordMu.Lock()
	defer c.coordMu.Unlock()
	delete(c.table, txn.id)
}

func (c *Coordinator) releaseLocks(txn *Transaction) error {
	for _, lockID := range txn.drainLocks() {
		if err := c.lockManager.Unlock(txn, lockID); err != nil {
			return fmt.Errorf("release lock %q for txn %d: %w", lockID, txn.id, err)
		}
	}
	return nil
}

func (c *Coordinator) appendLog(record []byte) error {
	if c.logManager == nil {
		return nil
	}
	if err := c.logManager.Append(record); err != nil {
		return fmt.Errorf("append log record: %w", err)
	}
	return c.logManager.Flush()
}

// Commit drops the write set without undoing anything, releases every lock,
// marks the transaction COMMITTED, and — when a log manager is configured —
// appends and flushes a commit record. Returns the first error encountered;
// the source this is modeled on silently swallowed these.
func (c *Coordinator) Commit(txn *Transaction) error {
	txn.clearWrites()

	if err := c.releaseLocks(txn); err != nil {
		return err
	}

	txn.setState(StateCommitted)
	c.unregister(txn)

	c.logger.Debug("commit transaction", zap.Int64("txn_id", int64(txn.id)))
	return c.appendLog([]byte(fmt.Sprintf("COMMIT %d", txn.id)))
}

// Abort pops write-set entries in LIFO order, applying the system manager's
// compensation for each, then releases locks and marks the transaction
// ABORTED. Returns the first error encountered instead of abandoning the
// rest of the rollback silently.
func (c *Coordinator) Abort(txn *Transaction) error {
	for {
		entry, ok := txn.popWrite()
		if !ok {
			break
		}
		if err := c.rollbackOne(entry); err != nil {
			return fmt.Errorf("abort txn %d: %w", txn.id, err)
		}
	}

	if err := c.releaseLocks(txn); err != nil {
		return err
	}

	txn.setState(StateAborted)
	c.unregister(txn)

	c.logger.Debug("abort transaction", zap.Int64("txn_id", int64(txn.id)))
	return c.appendLog([]byte(fmt.Sprintf("ABORT %d", txn.id)))
}

func (c *Coordinator) rollbackOne(entry WriteSetEntry) error {
	switch entry.Kind {
	case KindInsert:
		return c.systemManager.RollbackInsert(entry.Table, entry.Rid)
	case KindDelete:
		return c.systemManager.RollbackDelete(entry.Table, entry.Rid, entry.PriorRecord)
	case KindUpdate:
		return c.systemManager.RollbackUpdate(entry.Table, entry.Rid, entry.PriorRecord)
	default:
		return fmt.Errorf("unknown write-set entry kind %v", entry.Kind)
	}
}
