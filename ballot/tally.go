package ballot

import (
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/nknorg/ballot/common"
	"github.com/nknorg/ballot/store"
)

// Vote casts caller's whole weight for the proposal at index and settles a
// matching bribe, if any.
func (l *Ledger) Vote(caller common.Uint160, index uint32) (*Receipt, error) {
	op := &Operation{
		Type:     OpVote,
		Caller:   caller,
		Proposal: proposalIndex(index),
	}
	return l.apply(op, func(sdb *store.StateDB, receipt *Receipt) error {
		proposal, err := sdb.GetProposal(index)
		if err != nil {
			return err
		}
		if proposal == nil {
			return ErrInvalidProposal
		}

		voter, err := sdb.GetVoter(caller)
		if err != nil {
			return err
		}
		if voter.Weight == 0 {
			return ErrNoRight
		}
		if voter.Voted {
			return ErrAlreadyVoted
		}

		voter.Voted = true
		voter.Vote = index
		sdb.SetVoter(caller, voter)

		proposal.VoteCount += voter.Weight
		if err := sdb.SetProposal(index, proposal); err != nil {
			return err
		}

		return settleBribe(sdb, caller, index, receipt)
	})
}

func (l *Ledger) Proposal(index uint32) (*store.Proposal, error) {
	var proposal *store.Proposal
	err := l.view(func(sdb *store.StateDB) error {
		var err error
		proposal, err = sdb.GetProposal(index)
		if err == nil && proposal == nil {
			err = ErrInvalidProposal
		}
		return err
	})
	return proposal, err
}

func (l *Ledger) Proposals() ([]*store.Proposal, error) {
	var proposals []*store.Proposal
	err := l.view(func(sdb *store.StateDB) error {
		var err error
		proposals, err = sdb.GetProposals()
		return err
	})
	return proposals, err
}

// WinningProposal returns the index of the proposal with the most votes. Ties
// go to the lowest index.
func (l *Ledger) WinningProposal() (uint32, error) {
	proposals, err := l.Proposals()
	if err != nil {
		return 0, err
	}
	return winningProposal(proposals), nil
}

func winningProposal(proposals []*store.Proposal) uint32 {
	var winner uint32
	var winningVoteCount uint64
	for i, p := range proposals {
		if p.VoteCount > winningVoteCount {
			winningVoteCount = p.VoteCount
			winner = uint32(i)
		}
	}
	return winner
}

func (l *Ledger) WinnerName() (store.ProposalName, error) {
	proposals, err := l.Proposals()
	if err != nil {
		return store.ProposalName{}, err
	}
	if len(proposals) == 0 {
		return store.ProposalName{}, ErrNoProposals
	}
	return proposals[winningProposal(proposals)].Name, nil
}

func byVoteCount(a, b interface{}) int {
	sa, sb := a.(Standing), b.(Standing)
	switch {
	case sa.VoteCount > sb.VoteCount:
		return -1
	case sa.VoteCount < sb.VoteCount:
		return 1
	case sa.Index < sb.Index:
		return -1
	case sa.Index > sb.Index:
		return 1
	}
	return 0
}

// Standings returns all proposals from most to fewest votes, ties by index,
// so the first entry is always the winning proposal.
func (l *Ledger) Standings() ([]Standing, error) {
	proposals, err := l.Proposals()
	if err != nil {
		return nil, err
	}

	list := arraylist.New()
	for i, p := range proposals {
		list.Add(Standing{Index: uint32(i), Name: p.Name, VoteCount: p.VoteCount})
	}
	list.Sort(byVoteCount)

	standings := make([]Standing, 0, list.Size())
	it := list.Iterator()
	for it.Next() {
		standings = append(standings, it.Value().(Standing))
	}
	return standings, nil
}
