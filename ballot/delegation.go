package ballot

import (
	"fmt"

	"github.com/nknorg/ballot/common"
	"github.com/nknorg/ballot/store"
)

// Delegate hands caller's weight to the end of to's delegation chain. If that
// voter has already voted the weight is added to its proposal right away,
// otherwise it is added to the voter's weight. Either way caller counts as
// voted afterwards.
func (l *Ledger) Delegate(caller, to common.Uint160) (*Receipt, error) {
	op := &Operation{
		Type:    OpDelegate,
		Caller:  caller,
		Targets: []common.Uint160{to},
	}
	return l.apply(op, func(sdb *store.StateDB, receipt *Receipt) error {
		sender, err := sdb.GetVoter(caller)
		if err != nil {
			return err
		}
		if sender.Voted {
			return ErrAlreadyVoted
		}
		if to == caller {
			return ErrSelfDelegation
		}
		if to == l.escrow {
			return ErrEscrowCaller
		}

		delegateAddr, delegate, err := resolveDelegate(sdb, caller, to)
		if err != nil {
			return err
		}

		sender.Voted = true
		sender.Delegate = &delegateAddr

		if delegate.Voted {
			proposal, err := sdb.GetProposal(delegate.Vote)
			if err != nil {
				return err
			}
			if proposal == nil {
				return fmt.Errorf("delegate %v voted for missing proposal %d", delegateAddr, delegate.Vote)
			}
			proposal.VoteCount += sender.Weight
			if err := sdb.SetProposal(delegate.Vote, proposal); err != nil {
				return err
			}
			sender.Vote = delegate.Vote
		} else {
			delegate.Weight += sender.Weight
			sdb.SetVoter(delegateAddr, delegate)
		}

		sdb.SetVoter(caller, sender)
		return nil
	})
}

// resolveDelegate follows delegate pointers starting at to and returns the
// first voter that has not delegated. Reaching caller, or any address twice,
// is a loop.
func resolveDelegate(sdb *store.StateDB, caller, to common.Uint160) (common.Uint160, *store.Voter, error) {
	visited := map[common.Uint160]struct{}{caller: {}}
	current := to
	for {
		if _, ok := visited[current]; ok {
			return common.EmptyUint160, nil, ErrDelegationLoop
		}
		visited[current] = struct{}{}

		voter, err := sdb.GetVoter(current)
		if err != nil {
			return common.EmptyUint160, nil, err
		}
		if voter.Delegate == nil {
			return current, voter, nil
		}
		current = *voter.Delegate
	}
}
