package ballot

import (
	"github.com/nknorg/ballot/common"
	"github.com/nknorg/ballot/store"
)

// GrantRight gives target a vote of weight 1. Only the chairperson may call
// it, and only for an address that has neither voted nor been granted yet.
func (l *Ledger) GrantRight(caller, target common.Uint160) (*Receipt, error) {
	return l.GrantRights(caller, target)
}

// GrantRights is GrantRight for several targets at once. Any failing target
// rejects the whole batch.
func (l *Ledger) GrantRights(caller common.Uint160, targets ...common.Uint160) (*Receipt, error) {
	op := &Operation{
		Type:    OpGrantRight,
		Caller:  caller,
		Targets: targets,
	}
	return l.apply(op, func(sdb *store.StateDB, receipt *Receipt) error {
		if caller != l.chairperson {
			return ErrUnauthorized
		}
		if len(targets) == 0 {
			return ErrNoTargets
		}
		for _, target := range targets {
			if target == l.escrow {
				return ErrEscrowCaller
			}
			if err := grantRight(sdb, target); err != nil {
				return err
			}
		}
		return nil
	})
}

func grantRight(sdb *store.StateDB, target common.Uint160) error {
	voter, err := sdb.GetVoter(target)
	if err != nil {
		return err
	}
	if voter.Voted {
		return ErrAlreadyVoted
	}
	if voter.Weight != 0 {
		return ErrAlreadyEnfranchised
	}

	voter.Weight = 1
	sdb.SetVoter(target, voter)
	return nil
}

func (l *Ledger) Voter(addr common.Uint160) (*store.Voter, error) {
	var voter *store.Voter
	err := l.view(func(sdb *store.StateDB) error {
		var err error
		voter, err = sdb.GetVoter(addr)
		return err
	})
	return voter, err
}

// Voters lists every address with a non default voter record.
func (l *Ledger) Voters() ([]store.VoterEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.GetVoters()
}
