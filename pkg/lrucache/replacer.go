package lrucache

import "strconv"

// Replacer adapts the package's general-purpose LRU cache into a frame-id
// eviction policy: Unpin marks a frame as most-recently-used and eligible
// for eviction, Pin withdraws it from eligibility, and Victim evicts the
// least-recently-used eligible frame. It satisfies the same Pin/Unpin/
// Victim/Size contract as pkg/clockreplacer's clock policy, so a caller can
// swap one for the other without code changes on its side.
type Replacer struct {
	cache *cacheImpl
}

// NewReplacer builds an LRU-policy Replacer with room for capacity frames.
func NewReplacer(capacity int) *Replacer {
	return &Replacer{cache: New(capacity)}
}

func frameKey(frameID int) string { return strconv.Itoa(frameID) }

// Pin withdraws frameID from the eviction candidate set, if present.
func (r *Replacer) Pin(frameID int) {
	r.cache.Delete(frameKey(frameID))
}

// Unpin marks frameID as the most-recently-used eviction candidate.
func (r *Replacer) Unpin(frameID int) {
	r.cache.Put(frameKey(frameID), frameID)
}

// Victim evicts and returns the least-recently-used candidate frame.
func (r *Replacer) Victim() (int, bool) {
	key, ok := r.cache.PopLRU()
	if !ok {
		return 0, false
	}
	frameID, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return frameID, true
}

// Size reports the number of frames currently eligible for eviction.
func (r *Replacer) Size() int {
	return r.cache.Len()
}
