package ballot

import (
	"fmt"

	"github.com/nknorg/ballot/common"
	"github.com/nknorg/ballot/event"
	"github.com/nknorg/ballot/store"
	"github.com/nknorg/ballot/util/log"
)

// Bribe escrows value from caller for bribee. It is credited to bribee's
// pending withdrawal once bribee votes for the proposal at index.
func (l *Ledger) Bribe(caller, bribee common.Uint160, index uint32, value common.Fixed64) (*Receipt, error) {
	op := &Operation{
		Type:     OpBribe,
		Caller:   caller,
		Targets:  []common.Uint160{bribee},
		Proposal: proposalIndex(index),
		Value:    value,
	}
	return l.apply(op, func(sdb *store.StateDB, receipt *Receipt) error {
		if value <= 0 {
			return ErrZeroBribe
		}
		if value > MaxBribe {
			return ErrBribeTooHigh
		}

		proposal, err := sdb.GetProposal(index)
		if err != nil {
			return err
		}
		if proposal == nil {
			return ErrInvalidProposal
		}

		voter, err := sdb.GetVoter(bribee)
		if err != nil {
			return err
		}
		if voter.Weight == 0 {
			return ErrBribeeIneligible
		}
		if voter.Voted {
			return ErrBribeeAlreadyVoted
		}

		if err := sdb.Transfer(caller, l.escrow, value); err != nil {
			return err
		}

		old, err := sdb.GetBribe(bribee)
		if err != nil {
			return err
		}
		if !old.Empty() {
			log.Warningf("Bribe of %v from %v to %v replaced, value stays in escrow", old.Amount, old.Briber, bribee)
		}

		sdb.SetBribe(bribee, &store.Bribe{
			Briber:   caller,
			Amount:   value,
			Proposal: index,
		})
		return nil
	})
}

// settleBribe credits the bribe recorded for voter if it asked for index. A
// bribe for another proposal is left in place and never paid.
func settleBribe(sdb *store.StateDB, voter common.Uint160, index uint32, receipt *Receipt) error {
	bribe, err := sdb.GetBribe(voter)
	if err != nil {
		return err
	}
	if bribe.Empty() || bribe.Proposal != index {
		return nil
	}

	pending, err := sdb.GetPendingWithdrawal(voter)
	if err != nil {
		return err
	}
	sdb.SetPendingWithdrawal(voter, pending+bribe.Amount)
	sdb.DeleteBribe(voter)

	receipt.Events = append(receipt.Events,
		Event{Type: event.BribeTaken, Bribee: voter, Proposal: index},
		Event{Type: event.WithdrawalAvailable, Bribee: voter, Proposal: index, Amount: bribe.Amount},
	)
	return nil
}

// Withdraw pays out caller's pending withdrawal from the escrow account. The
// pending balance is cleared before the transfer.
func (l *Ledger) Withdraw(caller common.Uint160) (*Receipt, error) {
	op := &Operation{
		Type:   OpWithdraw,
		Caller: caller,
	}
	return l.apply(op, func(sdb *store.StateDB, receipt *Receipt) error {
		amount, err := sdb.GetPendingWithdrawal(caller)
		if err != nil {
			return err
		}
		if amount == 0 {
			return ErrNoPendingWithdrawal
		}

		sdb.SetPendingWithdrawal(caller, 0)

		if err := sdb.Transfer(l.escrow, caller, amount); err != nil {
			return fmt.Errorf("pay out %v from escrow: %w", amount, err)
		}
		receipt.Transferred = amount
		return nil
	})
}

func (l *Ledger) GetBribe(bribee common.Uint160) (*store.Bribe, error) {
	var bribe *store.Bribe
	err := l.view(func(sdb *store.StateDB) error {
		var err error
		bribe, err = sdb.GetBribe(bribee)
		return err
	})
	return bribe, err
}

func (l *Ledger) PendingWithdrawal(addr common.Uint160) (common.Fixed64, error) {
	var amount common.Fixed64
	err := l.view(func(sdb *store.StateDB) error {
		var err error
		amount, err = sdb.GetPendingWithdrawal(addr)
		return err
	})
	return amount, err
}
