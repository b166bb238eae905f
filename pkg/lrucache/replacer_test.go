package lrucache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplacer_VictimIsLeastRecentlyUnpinned(t *testing.T) {
	r := NewReplacer(8)

	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(3)
	require.Equal(t, 3, r.Size())

	victim, ok := r.Victim()
	require.True(t, ok)
	require.Equal(t, 1, victim)
	require.Equal(t, 2, r.Size())
}

func TestReplacer_PinWithdrawsCandidate(t *testing.T) {
	r := NewReplacer(8)
	r.Unpin(1)
	r.Unpin(2)

	r.Pin(1)
	require.Equal(t, 1, r.Size())

	victim, ok := r.Victim()
	require.True(t, ok)
	require.Equal(t, 2, victim)
}

func TestReplacer_VictimOnEmptyReportsFalse(t *testing.T) {
	r := NewReplacer(4)
	_, ok := r.Victim()
	require.False(t, ok)
}

func TestReplacer_UnpinIsIdempotent(t *testing.T) {
	r := NewReplacer(4)
	r.Unpin(5)
	r.Unpin(5)
	require.Equal(t, 1, r.Size())
}
