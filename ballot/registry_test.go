package ballot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// go test -v -run=TestGrantRight
func TestGrantRight(t *testing.T) {
	tl := newTestLedger(t)

	_, err := tl.GrantRight(chairperson, addrs[0])
	require.Nil(t, err)
	_, err = tl.GrantRight(chairperson, addrs[1])
	require.Nil(t, err)

	for _, addr := range addrs[:2] {
		v := tl.voter(t, addr)
		require.Equal(t, uint64(1), v.Weight)
		require.False(t, v.Voted)
		require.Nil(t, v.Delegate)
	}

	voters, err := tl.Voters()
	require.Nil(t, err)
	require.Len(t, voters, 2)
}

// go test -v -run=TestGrantRightRejects
func TestGrantRightRejects(t *testing.T) {
	tl := newTestLedger(t)

	tl.requireNoTrace(t, ErrUnauthorized, func() (*Receipt, error) {
		return tl.GrantRight(addrs[0], addrs[1])
	})
	require.Equal(t, uint64(0), tl.voter(t, addrs[1]).Weight)

	_, err := tl.GrantRight(chairperson, addrs[0])
	require.Nil(t, err)
	tl.requireNoTrace(t, ErrAlreadyEnfranchised, func() (*Receipt, error) {
		return tl.GrantRight(chairperson, addrs[0])
	})

	_, err = tl.Vote(addrs[0], 0)
	require.Nil(t, err)
	tl.requireNoTrace(t, ErrAlreadyVoted, func() (*Receipt, error) {
		return tl.GrantRight(chairperson, addrs[0])
	})

	// delegating marks the delegator as voted, even without weight
	_, err = tl.Delegate(addrs[2], addrs[3])
	require.Nil(t, err)
	tl.requireNoTrace(t, ErrAlreadyVoted, func() (*Receipt, error) {
		return tl.GrantRight(chairperson, addrs[2])
	})

	tl.requireNoTrace(t, ErrNoTargets, func() (*Receipt, error) {
		return tl.GrantRights(chairperson)
	})
}

// go test -v -run=TestGrantRightsBatch
func TestGrantRightsBatch(t *testing.T) {
	tl := newTestLedger(t)

	r, err := tl.GrantRights(chairperson, addrs[0], addrs[1], addrs[2])
	require.Nil(t, err)
	require.Equal(t, uint32(1), r.Height)
	for _, addr := range addrs[:3] {
		require.Equal(t, uint64(1), tl.voter(t, addr).Weight)
	}

	// addrs[2] is already enfranchised, so addrs[3] must not be granted either
	tl.requireNoTrace(t, ErrAlreadyEnfranchised, func() (*Receipt, error) {
		return tl.GrantRights(chairperson, addrs[3], addrs[2])
	})
	require.Equal(t, uint64(0), tl.voter(t, addrs[3]).Weight)

	tl.requireNoTrace(t, ErrAlreadyEnfranchised, func() (*Receipt, error) {
		return tl.GrantRights(chairperson, addrs[3], addrs[3])
	})
}
