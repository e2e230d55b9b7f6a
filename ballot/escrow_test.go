package ballot

import (
	"testing"
	"time"

	"github.com/nknorg/ballot/common"
	"github.com/nknorg/ballot/event"
	"github.com/stretchr/testify/require"
)

// go test -v -run=TestBribeRoundTrip
func TestBribeRoundTrip(t *testing.T) {
	tl := newTestLedger(t)

	taken := make(chan *Event, 2)
	available := make(chan *Event, 2)
	tl.queue.Subscribe(event.BribeTaken, func(v interface{}) { taken <- v.(*Event) })
	tl.queue.Subscribe(event.WithdrawalAvailable, func(v interface{}) { available <- v.(*Event) })

	briber, bribee := addrs[0], addrs[1]
	value := MaxBribe / 2

	_, err := tl.GrantRight(chairperson, bribee)
	require.Nil(t, err)

	r, err := tl.Bribe(briber, bribee, 1, value)
	require.Nil(t, err)
	require.Empty(t, r.Events)
	require.Equal(t, oneUnit-value, tl.balance(t, briber))
	require.Equal(t, value, tl.balance(t, tl.EscrowAddress()))

	b, err := tl.GetBribe(bribee)
	require.Nil(t, err)
	require.Equal(t, briber, b.Briber)
	require.Equal(t, value, b.Amount)
	require.Equal(t, uint32(1), b.Proposal)

	r, err = tl.Vote(bribee, 1)
	require.Nil(t, err)
	require.Equal(t, []Event{
		{Type: event.BribeTaken, Bribee: bribee, Proposal: 1},
		{Type: event.WithdrawalAvailable, Bribee: bribee, Proposal: 1, Amount: value},
	}, r.Events)

	for _, ch := range []chan *Event{taken, available} {
		select {
		case e := <-ch:
			require.Equal(t, bribee, e.Bribee)
		case <-time.After(time.Second):
			t.Fatal("event not published")
		}
	}

	pending, err := tl.PendingWithdrawal(bribee)
	require.Nil(t, err)
	require.Equal(t, value, pending)
	b, err = tl.GetBribe(bribee)
	require.Nil(t, err)
	require.True(t, b.Empty())

	r, err = tl.Withdraw(bribee)
	require.Nil(t, err)
	require.Equal(t, value, r.Transferred)
	require.Equal(t, oneUnit+value, tl.balance(t, bribee))
	require.Equal(t, common.Fixed64(0), tl.balance(t, tl.EscrowAddress()))

	pending, err = tl.PendingWithdrawal(bribee)
	require.Nil(t, err)
	require.Equal(t, common.Fixed64(0), pending)

	tl.requireNoTrace(t, ErrNoPendingWithdrawal, func() (*Receipt, error) {
		return tl.Withdraw(bribee)
	})

	select {
	case e := <-taken:
		t.Fatalf("BribeTaken published twice: %v", e)
	case e := <-available:
		t.Fatalf("WithdrawalAvailable published twice: %v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

// go test -v -run=TestBribeRejects
func TestBribeRejects(t *testing.T) {
	tl := newTestLedger(t)

	_, err := tl.GrantRights(chairperson, addrs[1], addrs[2])
	require.Nil(t, err)

	tl.requireNoTrace(t, ErrZeroBribe, func() (*Receipt, error) {
		return tl.Bribe(addrs[0], addrs[1], 1, 0)
	})
	tl.requireNoTrace(t, ErrZeroBribe, func() (*Receipt, error) {
		return tl.Bribe(addrs[0], addrs[1], 1, -1)
	})
	tl.requireNoTrace(t, ErrBribeTooHigh, func() (*Receipt, error) {
		return tl.Bribe(addrs[0], addrs[1], 1, MaxBribe+1)
	})
	tl.requireNoTrace(t, ErrInvalidProposal, func() (*Receipt, error) {
		return tl.Bribe(addrs[0], addrs[1], 4, MaxBribe)
	})
	tl.requireNoTrace(t, ErrBribeeIneligible, func() (*Receipt, error) {
		return tl.Bribe(addrs[0], addrs[3], 1, MaxBribe/2)
	})

	_, err = tl.Vote(addrs[1], 0)
	require.Nil(t, err)
	tl.requireNoTrace(t, ErrBribeeAlreadyVoted, func() (*Receipt, error) {
		return tl.Bribe(addrs[0], addrs[1], 1, MaxBribe/2)
	})

	// chairperson has no allocation
	tl.requireNoTrace(t, ErrInsufficientBalance, func() (*Receipt, error) {
		return tl.Bribe(chairperson, addrs[2], 1, MaxBribe)
	})

	require.Equal(t, common.Fixed64(0), tl.balance(t, tl.EscrowAddress()))
	require.Equal(t, oneUnit, tl.balance(t, addrs[0]))
}

// go test -v -run=TestBribeMismatchIsForfeited
func TestBribeMismatchIsForfeited(t *testing.T) {
	tl := newTestLedger(t)

	_, err := tl.GrantRight(chairperson, addrs[1])
	require.Nil(t, err)
	_, err = tl.Bribe(addrs[0], addrs[1], 2, MaxBribe)
	require.Nil(t, err)

	r, err := tl.Vote(addrs[1], 0)
	require.Nil(t, err)
	require.Empty(t, r.Events)

	b, err := tl.GetBribe(addrs[1])
	require.Nil(t, err)
	require.Equal(t, MaxBribe, b.Amount)
	require.Equal(t, uint32(2), b.Proposal)

	pending, err := tl.PendingWithdrawal(addrs[1])
	require.Nil(t, err)
	require.Equal(t, common.Fixed64(0), pending)
	require.Equal(t, MaxBribe, tl.balance(t, tl.EscrowAddress()))

	tl.requireNoTrace(t, ErrNoPendingWithdrawal, func() (*Receipt, error) {
		return tl.Withdraw(addrs[1])
	})
}

// go test -v -run=TestBribeReplaced
func TestBribeReplaced(t *testing.T) {
	tl := newTestLedger(t)

	_, err := tl.GrantRight(chairperson, addrs[2])
	require.Nil(t, err)
	_, err = tl.Bribe(addrs[0], addrs[2], 0, MaxBribe)
	require.Nil(t, err)
	_, err = tl.Bribe(addrs[1], addrs[2], 1, MaxBribe/4)
	require.Nil(t, err)

	b, err := tl.GetBribe(addrs[2])
	require.Nil(t, err)
	require.Equal(t, addrs[1], b.Briber)
	require.Equal(t, uint32(1), b.Proposal)

	_, err = tl.Vote(addrs[2], 1)
	require.Nil(t, err)

	pending, err := tl.PendingWithdrawal(addrs[2])
	require.Nil(t, err)
	require.Equal(t, MaxBribe/4, pending)

	_, err = tl.Withdraw(addrs[2])
	require.Nil(t, err)
	// the replaced bribe stays in escrow
	require.Equal(t, MaxBribe, tl.balance(t, tl.EscrowAddress()))
}

// go test -v -run=TestWithdrawTransfersExactAmount
func TestWithdrawTransfersExactAmount(t *testing.T) {
	tl := newTestLedger(t)

	_, err := tl.GrantRight(chairperson, addrs[1])
	require.Nil(t, err)
	_, err = tl.Bribe(addrs[0], addrs[1], 0, MaxBribe)
	require.Nil(t, err)
	_, err = tl.Vote(addrs[1], 0)
	require.Nil(t, err)

	r, err := tl.Withdraw(addrs[1])
	require.Nil(t, err)
	require.Equal(t, MaxBribe, r.Transferred)
	require.Equal(t, oneUnit+MaxBribe, tl.balance(t, addrs[1]))
	require.Equal(t, oneUnit-MaxBribe, tl.balance(t, addrs[0]))
}

// go test -v -run=TestEscrowAccountCannotTakePart
func TestEscrowAccountCannotTakePart(t *testing.T) {
	tl := newTestLedger(t)
	escrow := tl.EscrowAddress()
	victim, confederate := addrs[1], addrs[2]

	_, err := tl.GrantRights(chairperson, victim, confederate)
	require.Nil(t, err)
	_, err = tl.Bribe(addrs[0], victim, 1, MaxBribe)
	require.Nil(t, err)

	tl.requireNoTrace(t, ErrEscrowCaller, func() (*Receipt, error) {
		return tl.Bribe(escrow, confederate, 0, MaxBribe)
	})
	tl.requireNoTrace(t, ErrEscrowCaller, func() (*Receipt, error) {
		return tl.Withdraw(escrow)
	})
	tl.requireNoTrace(t, ErrEscrowCaller, func() (*Receipt, error) {
		return tl.Vote(escrow, 0)
	})
	tl.requireNoTrace(t, ErrEscrowCaller, func() (*Receipt, error) {
		return tl.Delegate(escrow, confederate)
	})
	tl.requireNoTrace(t, ErrEscrowCaller, func() (*Receipt, error) {
		return tl.Delegate(addrs[3], escrow)
	})
	tl.requireNoTrace(t, ErrEscrowCaller, func() (*Receipt, error) {
		return tl.GrantRights(chairperson, addrs[3], escrow)
	})
	require.Equal(t, uint64(0), tl.voter(t, addrs[3]).Weight)

	_, err = tl.Vote(victim, 1)
	require.Nil(t, err)
	_, err = tl.Withdraw(victim)
	require.Nil(t, err)
	require.Equal(t, oneUnit+MaxBribe, tl.balance(t, victim))
	require.Equal(t, common.Fixed64(0), tl.balance(t, escrow))
}
