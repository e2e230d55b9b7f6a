package ballot

import (
	"github.com/nknorg/ballot/common"
	"github.com/nknorg/ballot/event"
	"github.com/nknorg/ballot/store"
)

// MaxBribe is the largest value a single bribe may carry.
const MaxBribe common.Fixed64 = common.StorageFactor / 100

type OpType string

const (
	OpGrantRight OpType = "grantright"
	OpDelegate   OpType = "delegate"
	OpVote       OpType = "vote"
	OpBribe      OpType = "bribe"
	OpWithdraw   OpType = "withdraw"
)

// Operation is a state changing call as it is recorded in the operation log.
// Targets holds the voters to enfranchise for grantright, the delegate for
// delegate and the bribee for bribe.
type Operation struct {
	Type     OpType           `json:"type"`
	Caller   common.Uint160   `json:"caller"`
	Targets  []common.Uint160 `json:"targets,omitempty"`
	Proposal *uint32          `json:"proposal,omitempty"`
	Value    common.Fixed64   `json:"value,omitempty"`
}

// Event is emitted by a committed operation. WithdrawalAvailable carries the
// settled proposal as well as the amount.
type Event struct {
	Type     event.EventType `json:"type"`
	Bribee   common.Uint160  `json:"bribee"`
	Proposal uint32          `json:"proposal"`
	Amount   common.Fixed64  `json:"amount,omitempty"`
}

type Receipt struct {
	Height      uint32         `json:"height"`
	Operation   *Operation     `json:"operation"`
	Events      []Event        `json:"events,omitempty"`
	Transferred common.Fixed64 `json:"transferred,omitempty"`
}

type Standing struct {
	Index     uint32             `json:"index"`
	Name      store.ProposalName `json:"name"`
	VoteCount uint64             `json:"voteCount"`
}

func proposalIndex(index uint32) *uint32 {
	return &index
}
