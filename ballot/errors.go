package ballot

import (
	"errors"

	"github.com/nknorg/ballot/store"
)

var (
	ErrUnauthorized        = errors.New("only chairperson can give right to vote")
	ErrAlreadyVoted        = errors.New("the voter already voted")
	ErrAlreadyEnfranchised = errors.New("the voter already has the right to vote")
	ErrBribeeAlreadyVoted  = errors.New("the bribee already voted")
	ErrSelfDelegation      = errors.New("self-delegation is disallowed")
	ErrDelegationLoop      = errors.New("found loop in delegation")
	ErrNoRight             = errors.New("has no right to vote")
	ErrBribeeIneligible    = errors.New("the bribee has no right to vote")
	ErrInvalidProposal     = errors.New("this proposal doesn't exist")
	ErrZeroBribe           = errors.New("can't bribe without money")
	ErrBribeTooHigh        = errors.New("maximum bribe is " + MaxBribe.String())
	ErrNoPendingWithdrawal = errors.New("you don't have any pending withdrawals")
	ErrInsufficientBalance = store.ErrInsufficientBalance
	ErrNoTargets           = errors.New("no voter to give right to")
	ErrEscrowCaller        = errors.New("the escrow account can not take part in the ballot")

	ErrNoProposals         = errors.New("proposal list should not be blank")
	ErrProposalNameTooLong = errors.New("proposal name is longer than 32 bytes")
	ErrNotDeployed         = errors.New("ballot is not deployed")
	ErrAlreadyDeployed     = errors.New("ballot is already deployed")
	ErrOperationNotFound   = errors.New("operation not found")
)
