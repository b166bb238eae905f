package storage

// Replacer maintains the set of currently unpinned frames and a replacement
// order over them. The buffer pool is the only caller; it never inspects a
// replacer's internals, only this contract.
type Replacer interface {
	// Pin removes frameID from the candidate set, if present.
	Pin(frameID int)
	// Unpin adds frameID to the candidate set. Idempotent.
	Unpin(frameID int)
	// Victim picks and removes a candidate frame under the replacer's
	// policy, reporting false if the candidate set is empty.
	Victim() (frameID int, ok bool)
	// Size reports the number of frames currently eligible for eviction.
	Size() int
}
