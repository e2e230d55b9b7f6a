package ballot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/nknorg/ballot/common"
	"github.com/nknorg/ballot/config"
	"github.com/nknorg/ballot/event"
	"github.com/nknorg/ballot/store"
	"github.com/nknorg/ballot/util/log"
)

// Ledger applies ballot operations one at a time. Each operation runs against
// a fresh state overlay that is either committed as a single batch or
// dropped, so a rejected operation leaves no trace.
type Ledger struct {
	mu          sync.Mutex
	store       *store.ChainStore
	queue       *event.EventQueue
	chairperson common.Uint160
	escrow      common.Uint160
}

// EscrowAddress derives the account holding escrowed bribes from the
// construction parameters.
func EscrowAddress(chairperson common.Uint160, names []store.ProposalName) (common.Uint160, error) {
	buff := bytes.NewBuffer(chairperson.ToArray())
	for _, name := range names {
		buff.Write(name[:])
	}
	return common.ToCodeHash(buff.Bytes())
}

func parseProposalNames(names []string) ([]store.ProposalName, error) {
	if len(names) == 0 {
		return nil, ErrNoProposals
	}
	proposalNames := make([]store.ProposalName, 0, len(names))
	for _, s := range names {
		name, ok := store.NewProposalName(s)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrProposalNameTooLong, s)
		}
		proposalNames = append(proposalNames, name)
	}
	return proposalNames, nil
}

// Deploy initializes an empty store with a new ballot owned by chairperson
// and credits the genesis allocations.
func Deploy(cs *store.ChainStore, chairperson common.Uint160, names []string, allocations map[common.Uint160]common.Fixed64) (*Ledger, error) {
	initialized, err := cs.IsInitialized()
	if err != nil {
		return nil, err
	}
	if initialized {
		return nil, ErrAlreadyDeployed
	}

	proposalNames, err := parseProposalNames(names)
	if err != nil {
		return nil, err
	}

	escrow, err := EscrowAddress(chairperson, proposalNames)
	if err != nil {
		return nil, err
	}

	sdb := cs.NewStateDB()
	sdb.SetVersion(config.DBVersion)
	sdb.SetChairperson(chairperson)
	sdb.SetEscrow(escrow)
	for i, name := range proposalNames {
		if err := sdb.SetProposal(uint32(i), &store.Proposal{Name: name}); err != nil {
			return nil, err
		}
	}
	for addr, value := range allocations {
		if value < 0 {
			return nil, fmt.Errorf("negative allocation %v for %v", value, addr)
		}
		if err := sdb.UpdateBalance(addr, value, store.Addition); err != nil {
			return nil, err
		}
	}
	if err := sdb.Finalize(true); err != nil {
		return nil, fmt.Errorf("write genesis state: %w", err)
	}

	if err := cs.Load(); err != nil {
		return nil, err
	}

	log.Infof("Ballot deployed by %v with %d proposals, escrow account %v", chairperson, len(proposalNames), escrow)

	return &Ledger{
		store:       cs,
		queue:       event.Queue,
		chairperson: chairperson,
		escrow:      escrow,
	}, nil
}

// Open reopens a ballot previously written by Deploy.
func Open(cs *store.ChainStore) (*Ledger, error) {
	if err := cs.Load(); err != nil {
		if errors.Is(err, store.ErrNotInitialized) {
			return nil, ErrNotDeployed
		}
		return nil, err
	}

	sdb := cs.NewStateDB()
	chairperson, err := sdb.GetChairperson()
	if err != nil {
		return nil, err
	}
	escrow, err := sdb.GetEscrow()
	if err != nil {
		return nil, err
	}

	log.Infof("Ballot opened at height %d, chairperson %v", cs.GetHeight(), chairperson)

	return &Ledger{
		store:       cs,
		queue:       event.Queue,
		chairperson: chairperson,
		escrow:      escrow,
	}, nil
}

// SetEventQueue replaces the queue events are published on, event.Queue by
// default.
func (l *Ledger) SetEventQueue(queue *event.EventQueue) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queue = queue
}

func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Close()
}

func (l *Ledger) apply(op *Operation, fn func(sdb *store.StateDB, receipt *Receipt) error) (*Receipt, error) {
	l.mu.Lock()
	receipt, err := l.applyLocked(op, fn)
	queue := l.queue
	l.mu.Unlock()

	if err != nil {
		return nil, err
	}

	for i := range receipt.Events {
		e := receipt.Events[i]
		queue.Notify(e.Type, &e)
	}
	queue.Notify(event.OperationApplied, receipt)

	return receipt, nil
}

func (l *Ledger) applyLocked(op *Operation, fn func(sdb *store.StateDB, receipt *Receipt) error) (*Receipt, error) {
	if op.Caller == l.escrow {
		log.Warningf("%s from escrow account %v rejected", op.Type, op.Caller)
		return nil, ErrEscrowCaller
	}

	sdb := l.store.NewStateDB()
	receipt := &Receipt{Operation: op}

	if err := fn(sdb, receipt); err != nil {
		if ferr := sdb.Finalize(false); ferr != nil {
			log.Errorf("Discard state overlay error: %v", ferr)
		}
		log.Debugf("%s from %v rejected: %v", op.Type, op.Caller, err)
		return nil, err
	}

	_, err := sdb.AppendOperation(func(height uint32) ([]byte, error) {
		receipt.Height = height
		return json.Marshal(receipt)
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s receipt: %w", op.Type, err)
	}

	if err := sdb.Finalize(true); err != nil {
		return nil, fmt.Errorf("commit %s: %w", op.Type, err)
	}

	log.Debugf("%s from %v committed at height %d", op.Type, op.Caller, receipt.Height)

	return receipt, nil
}

// view runs fn against the committed state.
func (l *Ledger) view(fn func(sdb *store.StateDB) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.store.NewStateDB())
}

func (l *Ledger) Chairperson() common.Uint160 {
	return l.chairperson
}

func (l *Ledger) EscrowAddress() common.Uint160 {
	return l.escrow
}

func (l *Ledger) Height() uint32 {
	return l.store.GetHeight()
}

// Operation returns the receipt committed at height.
func (l *Ledger) Operation(height uint32) (*Receipt, error) {
	data, err := l.store.GetOperation(height)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrOperationNotFound
	}

	receipt := &Receipt{}
	if err := json.Unmarshal(data, receipt); err != nil {
		return nil, fmt.Errorf("decode receipt at height %d: %w", height, err)
	}
	return receipt, nil
}

func (l *Ledger) Balance(addr common.Uint160) (common.Fixed64, error) {
	var balance common.Fixed64
	err := l.view(func(sdb *store.StateDB) error {
		var err error
		balance, err = sdb.GetBalance(addr)
		return err
	})
	return balance, err
}
