package ballot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// go test -v -run=TestVote
func TestVote(t *testing.T) {
	tl := newTestLedger(t)

	tl.requireNoTrace(t, ErrNoRight, func() (*Receipt, error) {
		return tl.Vote(addrs[0], 0)
	})

	_, err := tl.GrantRight(chairperson, addrs[0])
	require.Nil(t, err)

	tl.requireNoTrace(t, ErrInvalidProposal, func() (*Receipt, error) {
		return tl.Vote(addrs[0], 3)
	})

	_, err = tl.Vote(addrs[0], 0)
	require.Nil(t, err)
	v := tl.voter(t, addrs[0])
	require.True(t, v.Voted)
	require.Equal(t, uint32(0), v.Vote)
	require.Equal(t, uint64(1), tl.voteCount(t, 0))

	tl.requireNoTrace(t, ErrAlreadyVoted, func() (*Receipt, error) {
		return tl.Vote(addrs[0], 1)
	})
	require.Equal(t, uint32(0), tl.voter(t, addrs[0]).Vote)
}

// go test -v -run=TestWinningProposal
func TestWinningProposal(t *testing.T) {
	tl := newTestLedger(t)

	_, err := tl.GrantRights(chairperson, addrs[0], addrs[1], addrs[2])
	require.Nil(t, err)
	_, err = tl.Vote(addrs[0], 0)
	require.Nil(t, err)
	_, err = tl.Vote(addrs[1], 2)
	require.Nil(t, err)
	_, err = tl.Vote(addrs[2], 2)
	require.Nil(t, err)

	winner, err := tl.WinningProposal()
	require.Nil(t, err)
	require.Equal(t, uint32(2), winner)

	name, err := tl.WinnerName()
	require.Nil(t, err)
	require.Equal(t, "third", name.String())
}

// go test -v -run=TestWinningProposalTie
func TestWinningProposalTie(t *testing.T) {
	tl := newTestLedger(t)

	winner, err := tl.WinningProposal()
	require.Nil(t, err)
	require.Equal(t, uint32(0), winner)

	_, err = tl.GrantRights(chairperson, addrs[0], addrs[1])
	require.Nil(t, err)
	_, err = tl.Vote(addrs[0], 2)
	require.Nil(t, err)
	_, err = tl.Vote(addrs[1], 1)
	require.Nil(t, err)

	winner, err = tl.WinningProposal()
	require.Nil(t, err)
	require.Equal(t, uint32(1), winner)

	name, err := tl.WinnerName()
	require.Nil(t, err)
	require.Equal(t, "second", name.String())
}

// go test -v -run=TestStandings
func TestStandings(t *testing.T) {
	tl := newTestLedger(t)

	_, err := tl.GrantRights(chairperson, addrs[0], addrs[1], addrs[2])
	require.Nil(t, err)
	_, err = tl.Delegate(addrs[0], addrs[1])
	require.Nil(t, err)
	_, err = tl.Vote(addrs[1], 2)
	require.Nil(t, err)
	_, err = tl.Vote(addrs[2], 0)
	require.Nil(t, err)

	standings, err := tl.Standings()
	require.Nil(t, err)
	require.Len(t, standings, 3)

	require.Equal(t, uint32(2), standings[0].Index)
	require.Equal(t, uint64(2), standings[0].VoteCount)
	require.Equal(t, "third", standings[0].Name.String())
	require.Equal(t, uint32(0), standings[1].Index)
	require.Equal(t, uint32(1), standings[2].Index)

	winner, err := tl.WinningProposal()
	require.Nil(t, err)
	require.Equal(t, winner, standings[0].Index)
}

// go test -v -run=TestWeightConservation
func TestWeightConservation(t *testing.T) {
	tl := newTestLedger(t)

	_, err := tl.GrantRights(chairperson, addrs...)
	require.Nil(t, err)
	_, err = tl.Delegate(addrs[0], addrs[1])
	require.Nil(t, err)
	_, err = tl.Delegate(addrs[1], addrs[2])
	require.Nil(t, err)
	_, err = tl.Vote(addrs[2], 1)
	require.Nil(t, err)
	_, err = tl.Vote(addrs[3], 0)
	require.Nil(t, err)

	proposals, err := tl.Proposals()
	require.Nil(t, err)
	var total uint64
	for _, p := range proposals {
		total += p.VoteCount
	}
	require.Equal(t, uint64(len(addrs)), total)
	require.Equal(t, uint64(3), tl.voteCount(t, 1))
}
